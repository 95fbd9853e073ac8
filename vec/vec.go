// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package vec implements fixed-size vectors and the tent (linear)
// interpolation kernels used by the flip and backflip packages
package vec

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
)

// Vec2 is a 2D vector
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector
type Vec3 struct {
	X, Y, Z float64
}

// Add returns a+b
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Sub returns a-b
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Scale returns a*s
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

// Dot returns a.b
func (a Vec2) Dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }

// Length returns |a|
func (a Vec2) Length() float64 { return la.VecNorm([]float64{a.X, a.Y}) }

// Normalize returns a/|a|, or the zero vector if |a| is (near) zero
func (a Vec2) Normalize() Vec2 {
	n := a.Length()
	if n < 1e-12 {
		return Vec2{}
	}
	return a.Scale(1 / n)
}

// Get returns the component at index idx (0=X, 1=Y)
func (a Vec2) Get(idx int) float64 {
	if idx == 0 {
		return a.X
	}
	return a.Y
}

// With returns a copy of a with component idx set to v
func (a Vec2) With(idx int, v float64) Vec2 {
	if idx == 0 {
		a.X = v
	} else {
		a.Y = v
	}
	return a
}

// Add returns a+b
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a-b
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale returns a*s
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

// Dot returns a.b
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns a×b
func (a Vec3) Cross(b Vec3) Vec3 {
	var w [3]float64
	utl.Cross3d(w[:], []float64{a.X, a.Y, a.Z}, []float64{b.X, b.Y, b.Z})
	return Vec3{w[0], w[1], w[2]}
}

// Length returns |a|, via gosl/la.VecNorm.
func (a Vec3) Length() float64 { return la.VecNorm([]float64{a.X, a.Y, a.Z}) }

// Normalize returns a/|a|, or the zero vector if |a| is (near) zero
func (a Vec3) Normalize() Vec3 {
	n := a.Length()
	if n < 1e-12 {
		return Vec3{}
	}
	return a.Scale(1 / n)
}

// Get returns the component at index idx (0=X, 1=Y, 2=Z)
func (a Vec3) Get(idx int) float64 {
	switch idx {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// With returns a copy of a with component idx set to v
func (a Vec3) With(idx int, v float64) Vec3 {
	switch idx {
	case 0:
		a.X = v
	case 1:
		a.Y = v
	default:
		a.Z = v
	}
	return a
}

// Lerp linearly interpolates between a and b at parameter t in [0,1]
func Lerp(a, b, t float64) float64 { return a + t*(b-a) }

// Clamp01 clamps x to [0,1]
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp restricts x to [lo,hi]
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// LinearKernel2 is the 2D tent kernel K(r) = prod_d max(0, 1-|r_d|/dx).
func LinearKernel2(r Vec2, dx float64) float64 {
	return linear1(r.X, dx) * linear1(r.Y, dx)
}

// LinearKernel3 is the 3D tent kernel, used by the particle splat and
// the BackwardFlip reconstruction
func LinearKernel3(r Vec3, dx float64) float64 {
	return linear1(r.X, dx) * linear1(r.Y, dx) * linear1(r.Z, dx)
}

func linear1(d, dx float64) float64 {
	v := 1 - math.Abs(d)/dx
	if v < 0 {
		return 0
	}
	return v
}
