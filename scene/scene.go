// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package scene implements the solver's external-interface surface:
// the four optional initial-condition callbacks, the named-scene
// selector, and the per-step source hook, plus a registry of built-in
// scenes.
package scene

import "github.com/ryichando/shiokaze/vec"

// Description is a named scene: the four optional initial-condition
// callbacks (missing callbacks take the defaults noted inline) plus
// the Name used to select it.
type Description struct {
	Name string

	// Velocity returns the initial velocity at a world-space point;
	// nil defaults to the zero vector.
	Velocity func(p vec.Vec3) vec.Vec3
	// Solid returns the signed distance to the solid boundary
	// (positive in free space); nil defaults to the large positive
	// constant 1e9 everywhere (no solid).
	Solid func(p vec.Vec3) float64
	// Fluid returns the initial fluid level set (negative inside
	// fluid); nil defaults to the large positive constant 1e9
	// everywhere (no fluid).
	Fluid func(p vec.Vec3) float64
	// Density returns the initial scalar density at a point, used by
	// smoke-like buoyancy scenes; nil defaults to 0.
	Density func(p vec.Vec3) float64
}

const noSolid = 1e9

// VelocityAt evaluates Velocity, defaulting to zero.
func (d Description) VelocityAt(p vec.Vec3) vec.Vec3 {
	if d.Velocity == nil {
		return vec.Vec3{}
	}
	return d.Velocity(p)
}

// SolidAt evaluates Solid, defaulting to "everywhere free space".
func (d Description) SolidAt(p vec.Vec3) float64 {
	if d.Solid == nil {
		return noSolid
	}
	return d.Solid(p)
}

// FluidAt evaluates Fluid, defaulting to "everywhere air".
func (d Description) FluidAt(p vec.Vec3) float64 {
	if d.Fluid == nil {
		return noSolid
	}
	return d.Fluid(p)
}

// DensityAt evaluates Density, defaulting to zero.
func (d Description) DensityAt(p vec.Vec3) float64 {
	if d.Density == nil {
		return 0
	}
	return d.Density(p)
}

// StepSource is the per-step source hook: Add injects velocity and
// density sources each step at face and cell locations respectively.
// Add may be nil (no sources).
type StepSource struct {
	Add func(p vec.Vec3, u *vec.Vec3, d *float64, time, dt float64)

	// DustParticles converts injected density to new particles at a
	// rate of 1/r_sample^dim per bucket unit instead of raising the
	// grid density field directly.
	DustParticles bool
	RSample       int

	bucket float64
}

// Apply evaluates the source hook at (p,time,dt), returning the
// velocity and density deltas to inject at that point. When
// DustParticles is enabled, the density delta is instead accumulated
// into an internal bucket and converted to whole dust particles,
// returned as the second result.
func (s *StepSource) Apply(p vec.Vec3, time, dt float64) (du vec.Vec3, dd float64, newParticles int) {
	if s.Add == nil {
		return vec.Vec3{}, 0, 0
	}
	var u vec.Vec3
	var d float64
	s.Add(p, &u, &d, time, dt)
	if !s.DustParticles {
		return u, d, 0
	}
	rate := 1.0
	if s.RSample > 0 {
		rate = 1.0
		for i := 0; i < 3; i++ {
			rate /= float64(s.RSample)
		}
	}
	s.bucket += d * rate
	for s.bucket >= 1 {
		s.bucket--
		newParticles++
	}
	return u, 0, newParticles
}
