// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/advect"
	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
)

// Test_tracker_advect_zero_velocity checks that Tracker.Advect, given a
// zero velocity field over an already-exact planar signed distance
// field, reproduces the same field (advection is a no-op and
// redistancing an already-correct distance changes nothing, within
// the fast-march's local solve tolerance).
func Test_tracker_advect_zero_velocity(tst *testing.T) {

	chk.PrintTitle("tracker advect with zero velocity is a no-op")

	shape := grid.Shape3{W: 10, H: 1, D: 1}
	dx := 0.1
	w := 3

	fluid := grid.NewLevelSetArray(shape, float64(w), dx)
	trueVal := func(i int) float64 { return (float64(i) - 4.5) * dx }
	for i := 0; i < shape.W; i++ {
		fluid.Set(i, 0, 0, trueVal(i))
	}

	velocity := grid.NewMACArray(shape, dx)

	driver := parallel.NewDriver()
	driver.SetForceSingleThread(true)

	tr := &Tracker{Dx: dx, Narrowband: w, AdvectOpt: advect.Options{Scheme: advect.Bilinear, UseMacCormack: true, TrimNarrowband: w}, Driver: driver}
	out := tr.Advect(fluid, velocity, 0.01)

	band := dx * float64(w)
	for i := 0; i < shape.W; i++ {
		tv := trueVal(i)
		if tv > band || tv < -band {
			continue
		}
		if !out.Active(i, 0, 0) {
			tst.Errorf("cell %d: expected to remain active inside the band", i)
			continue
		}
		chk.Scalar(tst, "zero-velocity advect+redistance", 1e-6, out.Get(i, 0, 0), tv)
	}
}

// Test_tracker_rebuild_trims_to_mask checks Rebuild's mark/trim pair:
// cells outside the marked narrowband are deactivated.
func Test_tracker_rebuild_trims_to_mask(tst *testing.T) {

	chk.PrintTitle("tracker rebuild trims narrowband")

	shape := grid.Shape3{W: 5, H: 1, D: 1}
	dx := 0.2

	fluid := grid.NewLevelSetArray(shape, 1, dx)
	for i := 0; i < shape.W; i++ {
		if i <= 1 {
			fluid.Set(i, 0, 0, 1.0)
		} else {
			fluid.Set(i, 0, 0, -1.0)
		}
	}

	tr := &Tracker{Dx: dx, Narrowband: 1}
	tr.Rebuild(fluid)

	if !fluid.Active(1, 0, 0) || !fluid.Active(2, 0, 0) {
		tst.Fatalf("expected the sign-change pair to remain active after Rebuild")
	}
	if fluid.Active(0, 0, 0) || fluid.Active(4, 0, 0) {
		tst.Fatalf("expected cells far from the interface to be trimmed by Rebuild")
	}
}
