// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// gradientKernel3 is the negated gradient, with respect to r, of the
// separable tent kernel vec.LinearKernel3; for r = node - particle this
// is the kernel's gradient with respect to the particle position. Zero
// outside the kernel's unit support.
func gradientKernel3(r vec.Vec3, dx float64) vec.Vec3 {
	x := math.Abs(r.X) / dx
	y := math.Abs(r.Y) / dx
	z := math.Abs(r.Z) / dx
	if x > 1 || y > 1 || z > 1 {
		return vec.Vec3{}
	}
	u := math.Copysign((1-y)*(1-z), r.X)
	v := math.Copysign((1-x)*(1-z), r.Y)
	w := math.Copysign((1-x)*(1-y), r.Z)
	return vec.Vec3{X: u, Y: v, Z: w}.Scale(1 / dx)
}

// centralGradientFn central-differences a world-space scalar callback
// at p with a quarter-cell step and returns its unit normal.
func centralGradientFn(f func(vec.Vec3) float64, p vec.Vec3, dx float64) vec.Vec3 {
	h := 0.25 * dx
	g := vec.Vec3{
		X: f(p.Add(vec.Vec3{X: h})) - f(p.Sub(vec.Vec3{X: h})),
		Y: f(p.Add(vec.Vec3{Y: h})) - f(p.Sub(vec.Vec3{Y: h})),
		Z: f(p.Add(vec.Vec3{Z: h})) - f(p.Sub(vec.Vec3{Z: h})),
	}
	return g.Normalize()
}

// gridFluidGradient central-differences a grid.SparseArray level set
// at world position p via trilinear sampling.
func gridFluidGradient(fluid *grid.SparseArray, p vec.Vec3, dx float64) vec.Vec3 {
	fi, fj, fk := grid.WorldToIndex3(p, dx)
	const h = 0.5
	g := vec.Vec3{
		X: fluid.SampleTrilinear(fi+h, fj, fk) - fluid.SampleTrilinear(fi-h, fj, fk),
		Y: fluid.SampleTrilinear(fi, fj+h, fk) - fluid.SampleTrilinear(fi, fj-h, fk),
		Z: fluid.SampleTrilinear(fi, fj, fk+h) - fluid.SampleTrilinear(fi, fj, fk-h),
	}
	return g.Normalize()
}

// boxSDF is the Chebyshev (max-norm) signed distance of p to the axis-
// aligned box [lo,hi], negative inside; used by Seed's domain-bounds
// eviction test.
func boxSDF(p, lo, hi vec.Vec3) float64 {
	dx := math.Max(lo.X-p.X, p.X-hi.X)
	dy := math.Max(lo.Y-p.Y, p.Y-hi.Y)
	dz := math.Max(lo.Z-p.Z, p.Z-hi.Z)
	return math.Max(dx, math.Max(dy, dz))
}
