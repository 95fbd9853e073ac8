// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package levelset implements level-set maintenance: combination with
// solids, narrow-band extrapolation, mark/trim of the narrow band, and
// cell volume by a 6-tetrahedron split of the cube (no marching-cubes
// case table is used).
package levelset

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// Combine produces a fluid level set that is max(fluid,-(solid+dx)) on
// the fluid grid, then re-marks it as a level set and flood fills the
// sign.
func Combine(solid, fluid *grid.SparseArray, w, dx float64) *grid.SparseArray {
	shape := fluid.Shape()
	combined := grid.NewLevelSetArray(shape, w, dx)
	combined.ActivateAs(fluid, [3]int{})
	combined.ActivateAs(solid, [3]int{})
	for i := 0; i < shape.W; i++ {
		for j := 0; j < shape.H; j++ {
			for k := 0; k < shape.D; k++ {
				if !combined.Active(i, j, k) {
					continue
				}
				v := math.Max(fluid.Get(i, j, k), -dx-solid.Get(i, j, k))
				combined.Set(i, j, k, v)
			}
		}
	}
	combined.FloodFill(-dx, dx)
	return combined
}

// ExtrapolateOptions controls Extrapolate's behavior
type ExtrapolateOptions struct {
	// SolidWallExtrapolation enables gradient-directed extrapolation
	// toward the solid; when false only the raw solid distance is used.
	SolidWallExtrapolation bool
	// HorizontalFallback enables the horizontal secondary sample when
	// the solid normal is steep relative to horizontal.
	HorizontalFallback bool
	// ExtrapolationToward is how many cell widths into the solid side
	// to extrapolate.
	ExtrapolationToward float64
	// Threshold is the upper solid-value bound for extrapolation (cells
	// with solid >= Threshold are left untouched).
	Threshold float64
}

// DefaultExtrapolateOptions enables both extrapolation toggles with
// two cells of reach.
func DefaultExtrapolateOptions() ExtrapolateOptions {
	return ExtrapolateOptions{
		SolidWallExtrapolation: true,
		HorizontalFallback:     true,
		ExtrapolationToward:    2,
		Threshold:              0,
	}
}

// limitY is sin(45deg): the normal.Y threshold below which the solid
// surface is considered steep enough to need a horizontal secondary
// sample.
var limitY = math.Sin(math.Pi / 4)

// Extrapolate pushes level-set values from the fluid side toward the
// solid along the solid gradient. fluid must already be
// combined with solid (see Combine). The combined input is mutated in
// place and also returned for convenience.
func Extrapolate(solid, fluid *grid.SparseArray, dx float64, opt ExtrapolateOptions) *grid.SparseArray {
	oldFluid := grid.NewSparseArray(fluid.Shape())
	fluid.ParallelActives(func(i, j, k int, v float64) { oldFluid.Set(i, j, k, v) })

	fluid.ParallelActives(func(i, j, k int, _ float64) {
		solidVal := solid.Get(i, j, k)
		if !(solidVal < opt.Threshold && solidVal > -opt.ExtrapolationToward*dx) {
			return
		}
		if !opt.SolidWallExtrapolation {
			fluid.Set(i, j, k, solidVal)
			return
		}
		gx, gy, gz := solid.CentralGradient(i, j, k)
		normal := vec.Vec3{X: gx, Y: gy, Z: gz}.Normalize()
		if normal == (vec.Vec3{}) {
			fluid.Set(i, j, k, 0)
			return
		}
		step := -solidVal / dx
		value := oldFluid.SampleTrilinear(
			float64(i)+step*normal.X,
			float64(j)+step*normal.Y,
			float64(k)+step*normal.Z,
		)
		if opt.HorizontalFallback && normal.Y < limitY {
			horiz := vec.Vec3{X: normal.X, Y: 0, Z: normal.Z}.Normalize()
			if horiz != (vec.Vec3{}) {
				hv := oldFluid.SampleTrilinear(
					float64(i)+step*horiz.X,
					float64(j)+step*horiz.Y,
					float64(k)+step*horiz.Z,
				)
				if hv < value {
					value = hv
				}
			}
		}
		fluid.Set(i, j, k, value)
	})
	fluid.FloodFill(-dx, dx)
	return fluid
}

// MarkNarrowband activates exactly those cells whose value changes sign
// across any face neighbor, then dilates by w-1.
func MarkNarrowband(levelset *grid.SparseArray, w int, dx float64) {
	shape := levelset.Shape()
	old := grid.NewSparseArray(shape)
	levelset.ParallelActives(func(i, j, k int, v float64) { old.Set(i, j, k, v) })

	var offDeactivate [][3]int
	levelset.ParallelActives(func(i, j, k int, phi float64) {
		onFront := false
		for _, off := range [][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}} {
			ni, nj, nk := i+off[0], j+off[1], k+off[2]
			if !shape.Inside(ni, nj, nk) || !old.Active(ni, nj, nk) {
				continue
			}
			if phi*old.Get(ni, nj, nk) < 0 {
				onFront = true
				break
			}
		}
		if !onFront {
			offDeactivate = append(offDeactivate, [3]int{i, j, k})
		}
	})
	for _, idx := range offDeactivate {
		levelset.SetOff(idx[0], idx[1], idx[2])
	}

	for count := 0; count < w-1; count++ {
		levelset.Dilate(func(i, j, k int, _ float64) (float64, bool) {
			for _, off := range [][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}} {
				ni, nj, nk := i+off[0], j+off[1], k+off[2]
				if !shape.Inside(ni, nj, nk) || !levelset.Active(ni, nj, nk) {
					continue
				}
				v := levelset.Get(ni, nj, nk)
				if v < 0 {
					return -dx, true
				}
				return dx, true
			}
			return 0, false
		})
	}
}

// TrimNarrowband deactivates anything not marked by a prior
// MarkNarrowband call, i.e. intersects mask's active set into levelset.
func TrimNarrowband(levelset, mask *grid.SparseArray) {
	var toOff [][3]int
	levelset.ParallelActives(func(i, j, k int, _ float64) {
		if !mask.Active(i, j, k) {
			toOff = append(toOff, [3]int{i, j, k})
		}
	})
	for _, idx := range toOff {
		levelset.SetOff(idx[0], idx[1], idx[2])
	}
}
