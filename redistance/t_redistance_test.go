// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redistance

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
)

// Test_redistance_planar_interface checks the signed-distance
// invariant: starting from an already-exact planar
// signed distance field, Redistance should reproduce the same values
// within the narrow band (up to the fast-march's local solve
// tolerance) and deactivate cells outside it.
func Test_redistance_planar_interface(tst *testing.T) {

	chk.PrintTitle("redistance reproduces a planar signed distance")

	shape := grid.Shape3{W: 10, H: 1, D: 1}
	dx := 0.1
	w := 3

	phi := grid.NewLevelSetArray(shape, float64(w), dx)
	trueVal := func(i int) float64 { return (float64(i) - 4.5) * dx }
	for i := 0; i < shape.W; i++ {
		phi.Set(i, 0, 0, trueVal(i))
	}

	driver := parallel.NewDriver()
	driver.SetForceSingleThread(true)

	out := Redistance(phi, dx, w, driver)

	band := dx * float64(w)
	for i := 0; i < shape.W; i++ {
		tv := trueVal(i)
		if math.Abs(tv) > band {
			if out.Active(i, 0, 0) {
				tst.Errorf("cell %d: expected deactivation outside the %v band, true value %v", i, band, tv)
			}
			continue
		}
		if !out.Active(i, 0, 0) {
			tst.Errorf("cell %d: expected to remain active inside the band", i)
			continue
		}
		chk.Scalar(tst, "redistanced planar value", 1e-6, out.Get(i, 0, 0), tv)
	}
}

// Test_redistance_monotone_from_zero_crossing checks that distances grow
// monotonically away from the known zero crossing, for a field that
// starts off only roughly signed (not already an exact distance).
func Test_redistance_monotone_from_zero_crossing(tst *testing.T) {

	chk.PrintTitle("redistance monotonicity away from interface")

	shape := grid.Shape3{W: 12, H: 1, D: 1}
	dx := 0.1
	w := 4

	phi := grid.NewLevelSetArray(shape, float64(w), dx)
	for i := 0; i < shape.W; i++ {
		if i <= 5 {
			phi.Set(i, 0, 0, 1.0) // crude positive/negative sign field
		} else {
			phi.Set(i, 0, 0, -1.0)
		}
	}

	driver := parallel.NewDriver()
	driver.SetForceSingleThread(true)

	out := Redistance(phi, dx, w, driver)

	prev := math.Inf(1)
	for i := 6; i < shape.W; i++ {
		if !out.Active(i, 0, 0) {
			continue
		}
		v := out.Get(i, 0, 0)
		if v > prev {
			tst.Errorf("cell %d: distance %v not monotone non-increasing moving away from the interface (prev %v)", i, v, prev)
		}
		prev = v
	}
}
