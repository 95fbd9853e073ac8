// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"math"

	"github.com/ryichando/shiokaze/vec"
)

// HydrostaticRest is a unit cube, fluid half-filled below y=0.5,
// solid walls on all six sides, at rest.
func HydrostaticRest() Description {
	return Description{
		Name: "hydrostatic-rest",
		Fluid: func(p vec.Vec3) float64 {
			return p.Y - 0.5
		},
		Solid: boxInterior(vec.Vec3{}, vec.Vec3{X: 1, Y: 1, Z: 1}),
	}
}

// DamBreak2D is a 2x1 domain with a fluid block occupying x<0.4,
// walled on all sides; the classic dam-break benchmark, expressed in
// 3D with a unit Z extent.
func DamBreak2D() Description {
	return Description{
		Name: "dam-break-2d",
		Fluid: func(p vec.Vec3) float64 {
			return p.X - 0.4
		},
		Solid: boxInterior(vec.Vec3{}, vec.Vec3{X: 2, Y: 1, Z: 1}),
	}
}

// SingleVortex is a sphere of radius 0.15 centered at (0.5,0.75,0.5)
// in the unit box (a plain sphere: no Zalesak slot is cut into it),
// with the prescribed single-vortex field as its Velocity callback.
// The Solver samples Velocity only once, as the initial face velocity;
// later steps are driven by the Solver's own advection and projection.
func SingleVortex() Description {
	const radius = 0.15
	center := vec.Vec3{X: 0.5, Y: 0.75, Z: 0.5}
	return Description{
		Name: "single-vortex",
		Fluid: func(p vec.Vec3) float64 {
			return p.Sub(center).Length() - radius
		},
		Velocity: func(p vec.Vec3) vec.Vec3 {
			u := math.Sin(math.Pi*p.X) * math.Sin(math.Pi*p.X) * math.Sin(2*math.Pi*p.Y)
			v := -math.Sin(2*math.Pi*p.X) * math.Sin(math.Pi*p.Y) * math.Sin(math.Pi*p.Y)
			return vec.Vec3{X: u, Y: v, Z: 0}
		},
		Solid: boxInterior(vec.Vec3{}, vec.Vec3{X: 1, Y: 1, Z: 1}),
	}
}

// boxInterior returns a solid level-set callback that is positive
// (free space) strictly inside [lo,hi] and negative outside, the
// six-sided solid-wall enclosure shared by every built-in scene.
func boxInterior(lo, hi vec.Vec3) func(p vec.Vec3) float64 {
	return func(p vec.Vec3) float64 {
		d := math.Min(
			math.Min(p.X-lo.X, hi.X-p.X),
			math.Min(math.Min(p.Y-lo.Y, hi.Y-p.Y), math.Min(p.Z-lo.Z, hi.Z-p.Z)),
		)
		return d
	}
}

// ByName looks up a built-in scene by its registered name.
func ByName(name string) (Description, bool) {
	switch name {
	case "hydrostatic-rest":
		return HydrostaticRest(), true
	case "dam-break-2d":
		return DamBreak2D(), true
	case "single-vortex":
		return SingleVortex(), true
	default:
		return Description{}, false
	}
}
