// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package advect

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
)

// Options bundles the advection scheme and MacCormack knobs.
type Options struct {
	Scheme         Scheme
	UseMacCormack  bool
	TrimNarrowband int // cells of surface proximity that fall back to pure semi-Lagrangian
}

// AdvectScalarMacCormack advects a cell-centered scalar field with
// either plain semi-Lagrangian or MacCormack correction:
// forward-advect to q0, backward-advect q0 to q1,
// q_out=q0+0.5*(q_in-q1), then clamp to the forward trace's local
// min/max; within trim_narrowband*dx of the fluid surface the
// correction is skipped entirely and q0 is used as-is (the narrow-band
// trim fallback, preventing MacCormack overshoot near ballistic
// features).
func AdvectScalarMacCormack(qIn *grid.SparseArray, velocity *grid.MACArray, fluid *grid.SparseArray, dx, dt float64, opt Options, driver *parallel.Driver) *grid.SparseArray {
	if !opt.UseMacCormack {
		return AdvectScalar(qIn, velocity, dx, dt, opt.Scheme, driver)
	}
	q0 := AdvectScalar(qIn, velocity, dx, dt, opt.Scheme, driver)
	q1 := AdvectScalar(q0, velocity, dx, -dt, opt.Scheme, driver)

	shape := qIn.Shape()
	out := grid.NewSparseArray(shape)
	out.ActivateAs(qIn, [3]int{})
	trimBand := dx * float64(opt.TrimNarrowband)

	qIn.ParallelActives(func(i, j, k int, qinVal float64) {
		if math.Abs(fluid.Get(i, j, k)) < trimBand {
			out.Set(i, j, k, q0.Get(i, j, k))
			return
		}
		minV, maxV := forwardTraceMinMax(qIn, velocity, dx, dt, i, j, k)
		q0v := q0.Get(i, j, k)
		corrected := q0v + 0.5*(qinVal-q1.Get(i, j, k))
		if corrected < minV {
			corrected = minV
		} else if corrected > maxV {
			corrected = maxV
		}
		out.Set(i, j, k, corrected)
	})
	return out
}

// forwardTraceMinMax returns the min/max of qIn over the 8-corner
// stencil surrounding the forward back-trace position of cell
// (i,j,k), used as the MacCormack clamp range.
func forwardTraceMinMax(qIn *grid.SparseArray, velocity *grid.MACArray, dx, dt float64, i, j, k int) (float64, float64) {
	p := cellVelocity(velocity, i, j, k).Scale(dt / dx)
	fi := float64(i) - p.X
	fj := float64(j) - p.Y
	fk := float64(k) - p.Z
	return qIn.MinMaxStencil(fi, fj, fk)
}

// AdvectVectorMacCormack is AdvectScalarMacCormack's MAC-face analogue.
func AdvectVectorMacCormack(vIn *grid.MACArray, velocity *grid.MACArray, fluid *grid.SparseArray, dx, dt float64, opt Options, driver *parallel.Driver) *grid.MACArray {
	if !opt.UseMacCormack {
		return AdvectVector(vIn, velocity, dx, dt, opt.Scheme, driver)
	}
	v0 := AdvectVector(vIn, velocity, dx, dt, opt.Scheme, driver)
	v1 := AdvectVector(v0, velocity, dx, -dt, opt.Scheme, driver)

	out := grid.NewMACArray(vIn.Cell, vIn.Dx)
	trimBand := dx * float64(opt.TrimNarrowband)
	for dim := 0; dim < 3; dim++ {
		d := dim
		out.Faces[d].ActivateAs(vIn.Faces[d], [3]int{})
		vIn.Faces[d].ParallelActives(func(i, j, k int, vinVal float64) {
			ci, cj, ck := i, j, k
			switch d {
			case 0:
				ci = grid.Clampi(i, 0, vIn.Cell.W-1)
			case 1:
				cj = grid.Clampi(j, 0, vIn.Cell.H-1)
			case 2:
				ck = grid.Clampi(k, 0, vIn.Cell.D-1)
			}
			if math.Abs(fluid.Get(ci, cj, ck)) < trimBand {
				out.Faces[d].Set(i, j, k, v0.Faces[d].Get(i, j, k))
				return
			}
			fp := faceVelocity(velocity, d, i, j, k).Scale(dt / dx)
			fi := float64(i) - fp.X
			fj := float64(j) - fp.Y
			fk := float64(k) - fp.Z
			minV, maxV := vIn.Faces[d].MinMaxStencil(fi, fj, fk)
			v0v := v0.Faces[d].Get(i, j, k)
			corrected := v0v + 0.5*(vinVal-v1.Faces[d].Get(i, j, k))
			if corrected < minV {
				corrected = minV
			} else if corrected > maxV {
				corrected = maxV
			}
			out.Faces[d].Set(i, j, k, corrected)
		})
	}
	return out
}
