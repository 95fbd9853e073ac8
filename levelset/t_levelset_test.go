// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levelset

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/grid"
)

func fullLevelSet(shape grid.Shape3, w, dx float64, fn func(i, j, k int) float64) *grid.SparseArray {
	a := grid.NewLevelSetArray(shape, w, dx)
	for i := 0; i < shape.W; i++ {
		for j := 0; j < shape.H; j++ {
			for k := 0; k < shape.D; k++ {
				a.Set(i, j, k, fn(i, j, k))
			}
		}
	}
	return a
}

// Test_combine_max_rule checks Combine's defining formula,
// max(fluid,-(solid+dx)), at a cell deep inside the solid (so the solid
// term dominates).
func Test_combine_max_rule(tst *testing.T) {

	chk.PrintTitle("combine_levelset max rule")

	shape := grid.Shape3{W: 4, H: 4, D: 4}
	dx := 0.25

	solid := fullLevelSet(shape, 3, dx, func(i, j, k int) float64 { return -1.0 }) // deep solid everywhere
	fluid := fullLevelSet(shape, 3, dx, func(i, j, k int) float64 { return -0.1 }) // fluid interior

	combined := Combine(solid, fluid, 3, dx)
	// expect max(-0.1, -(-1.0+0.25)) = max(-0.1, 0.75) = 0.75
	chk.Scalar(tst, "combine deep-solid cell", 1e-12, combined.Get(0, 0, 0), 0.75)
}

// Test_mark_trim_narrowband checks that MarkNarrowband keeps only cells
// whose value changes sign across a face neighbor (plus their w-1
// dilation), and that TrimNarrowband removes anything not in a given
// mask.
func Test_mark_trim_narrowband(tst *testing.T) {

	chk.PrintTitle("mark/trim narrowband")

	shape := grid.Shape3{W: 5, H: 1, D: 1}
	dx := 0.2
	// sign change only between i=1 (positive) and i=2 (negative)
	ls := fullLevelSet(shape, 3, dx, func(i, j, k int) float64 {
		if i <= 1 {
			return 1.0
		}
		return -1.0
	})

	MarkNarrowband(ls, 1, dx)
	if !ls.Active(1, 0, 0) || !ls.Active(2, 0, 0) {
		tst.Fatalf("expected the sign-change pair (1,0,0)/(2,0,0) to remain active")
	}
	if ls.Active(0, 0, 0) || ls.Active(4, 0, 0) {
		tst.Fatalf("expected cells far from the sign change to be deactivated by MarkNarrowband(w=1)")
	}

	mask := grid.NewSparseArray(shape)
	mask.Set(1, 0, 0, 0)
	other := fullLevelSet(shape, 3, dx, func(i, j, k int) float64 { return 1.0 })
	TrimNarrowband(other, mask)
	if !other.Active(1, 0, 0) {
		tst.Fatalf("expected (1,0,0) to survive TrimNarrowband (present in mask)")
	}
	if other.Active(0, 0, 0) || other.Active(2, 0, 0) {
		tst.Fatalf("expected cells outside mask to be deactivated by TrimNarrowband")
	}
}

// Test_cell_volume_extremes checks CellVolume's all-fluid / all-air
// short circuits and a simple half-cut case.
func Test_cell_volume_extremes(tst *testing.T) {

	chk.PrintTitle("CellVolume extremes")

	allFluid := [8]float64{-1, -1, -1, -1, -1, -1, -1, -1}
	chk.Scalar(tst, "all-fluid cube", 1e-15, CellVolume(allFluid), 1)

	allAir := [8]float64{1, 1, 1, 1, 1, 1, 1, 1}
	chk.Scalar(tst, "all-air cube", 1e-15, CellVolume(allAir), 0)

	// Bottom face (corners 0-3) fluid, top face (4-7) air: the zero
	// isosurface runs exactly through the cube's mid-height plane, so
	// the fluid volume fraction should be 0.5.
	halfCut := [8]float64{-1, -1, -1, -1, 1, 1, 1, 1}
	v := CellVolume(halfCut)
	if v < 0.49 || v > 0.51 {
		tst.Errorf("expected half-cut cube volume near 0.5, got %v", v)
	}
}
