// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/vec"
)

func Test_description_defaults(tst *testing.T) {

	chk.PrintTitle("scene description defaults")

	var d Description
	chk.Scalar(tst, "default velocity.X", 1e-15, d.VelocityAt(vec.Vec3{X: 1, Y: 2, Z: 3}).X, 0)
	if d.SolidAt(vec.Vec3{}) <= 0 {
		tst.Fatalf("expected the default solid field to mean everywhere free space")
	}
	if d.FluidAt(vec.Vec3{}) <= 0 {
		tst.Fatalf("expected the default fluid field to mean everywhere air")
	}
	chk.Scalar(tst, "default density", 1e-15, d.DensityAt(vec.Vec3{}), 0)
}

func Test_byname_builtin_scenes(tst *testing.T) {

	chk.PrintTitle("scene ByName built-in lookup")

	for _, name := range []string{"hydrostatic-rest", "dam-break-2d", "single-vortex"} {
		d, ok := ByName(name)
		if !ok {
			tst.Fatalf("expected %q to be a known built-in scene", name)
		}
		if d.Name != name {
			tst.Errorf("expected scene.Name == %q, got %q", name, d.Name)
		}
	}
	if _, ok := ByName("nonexistent"); ok {
		tst.Fatalf("expected an unknown scene name to return ok=false")
	}
}

// Test_hydrostatic_rest_geometry checks the scene geometry: fluid
// below y=0.5, solid walls enclosing the unit cube.
func Test_hydrostatic_rest_geometry(tst *testing.T) {

	chk.PrintTitle("hydrostatic rest scene geometry")

	d := HydrostaticRest()
	if d.FluidAt(vec.Vec3{X: 0.5, Y: 0.1, Z: 0.5}) >= 0 {
		tst.Errorf("expected a point below y=0.5 to be inside the fluid (negative)")
	}
	if d.FluidAt(vec.Vec3{X: 0.5, Y: 0.9, Z: 0.5}) <= 0 {
		tst.Errorf("expected a point above y=0.5 to be outside the fluid (positive)")
	}
	if d.SolidAt(vec.Vec3{X: 0.5, Y: 0.5, Z: 0.5}) <= 0 {
		tst.Errorf("expected the cube's center to be free space")
	}
	if d.SolidAt(vec.Vec3{X: -0.1, Y: 0.5, Z: 0.5}) >= 0 {
		tst.Errorf("expected a point outside the unit cube to be solid (non-positive)")
	}
}

// Test_step_source_apply checks the per-step source hook, including
// the nil-Add no-op and the dust-particle bucket conversion.
func Test_step_source_apply(tst *testing.T) {

	chk.PrintTitle("scene StepSource.Apply")

	var nilSource StepSource
	du, dd, n := nilSource.Apply(vec.Vec3{}, 0, 0.01)
	chk.Scalar(tst, "nil source du.X", 1e-15, du.X, 0)
	chk.Scalar(tst, "nil source dd", 1e-15, dd, 0)
	if n != 0 {
		tst.Fatalf("expected zero new particles from a nil source")
	}

	plain := StepSource{Add: func(p vec.Vec3, u *vec.Vec3, d *float64, time, dt float64) {
		u.X = 1.0
		*d = 0.5
	}}
	du, dd, n = plain.Apply(vec.Vec3{}, 0, 0.01)
	chk.Scalar(tst, "plain source du.X", 1e-15, du.X, 1.0)
	chk.Scalar(tst, "plain source dd", 1e-15, dd, 0.5)
	if n != 0 {
		tst.Fatalf("expected no dust particles when DustParticles is disabled")
	}

	dust := StepSource{
		Add: func(p vec.Vec3, u *vec.Vec3, d *float64, time, dt float64) {
			*d = 1.0
		},
		DustParticles: true,
		RSample:       1,
	}
	total := 0
	for i := 0; i < 3; i++ {
		_, ddVal, newN := dust.Apply(vec.Vec3{}, float64(i), 0.01)
		if ddVal != 0 {
			tst.Fatalf("expected zero grid-density delta when DustParticles is enabled")
		}
		total += newN
	}
	if total != 3 {
		tst.Fatalf("expected 3 dust particles accumulated at rate 1/1^3 over 3 calls of d=1, got %d", total)
	}
}
