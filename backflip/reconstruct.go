// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backflip

import (
	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// Reconstruct converts tracer reconstruction velocities back to MAC
// faces by weighted (tent-kernel) averaging, optionally subtracting
// injectDiff*(u_current_grid - u_tracer_initial) to shed residual grid
// error. currentGrid is the grid velocity field this step; injectDiff
// of 0 disables the correction.
func Reconstruct(tracers []Tracer, results []Result, shape grid.Shape3, dx float64, currentGrid *grid.MACArray, injectDiff float64) *grid.MACArray {
	out := grid.NewMACArray(shape, dx)
	weight := grid.NewMACArray(shape, dx)
	for dim := 0; dim < 3; dim++ {
		d := dim
		faceShape := shape.Face(d)
		for n, tr := range tracers {
			if !results[n].Live {
				continue
			}
			value := results[n].Urec.Get(d)
			if injectDiff != 0 {
				initial := tr.U0.Get(d)
				current := sampleMAC(currentGrid, tr.P, dx).Get(d)
				value -= injectDiff * (current - initial)
			}
			splatToFaces(out.Faces[d], weight.Faces[d], faceShape, tr.P, value, dx, d)
		}
	}
	for dim := 0; dim < 3; dim++ {
		d := dim
		out.Faces[d].ParallelActives(func(i, j, k int, v float64) {
			w := weight.Faces[d].Get(i, j, k)
			if w != 0 {
				out.Faces[d].Set(i, j, k, v/w)
			}
		})
	}
	return out
}

// splatToFaces distributes one tracer's scalar face-component value
// onto the 8 surrounding faces of direction dim using the tent kernel,
// the same grid<->particle splat shape flip.Engine.Splat uses for
// momentum, reused here for tracer reconstruction.
func splatToFaces(values, weights *grid.SparseArray, faceShape grid.Shape3, p vec.Vec3, value, dx float64, dim int) {
	fi, fj, fk := facePos(p, dx, dim)
	i0 := grid.Clampi(int(fi), 0, faceShape.W-1)
	j0 := grid.Clampi(int(fj), 0, faceShape.H-1)
	k0 := grid.Clampi(int(fk), 0, faceShape.D-1)
	for di := 0; di <= 1; di++ {
		for dj := 0; dj <= 1; dj++ {
			for dk := 0; dk <= 1; dk++ {
				i := grid.Clampi(i0+di, 0, faceShape.W-1)
				j := grid.Clampi(j0+dj, 0, faceShape.H-1)
				k := grid.Clampi(k0+dk, 0, faceShape.D-1)
				r := vec.Vec3{X: fi - float64(i), Y: fj - float64(j), Z: fk - float64(k)}
				w := vec.LinearKernel3(r, 1)
				if w <= 0 {
					continue
				}
				values.Set(i, j, k, values.Get(i, j, k)+w*value)
				weights.Set(i, j, k, weights.Get(i, j, k)+w)
			}
		}
	}
}

// facePos returns the fractional face-index coordinates of world
// position p for direction dim, the inverse of grid.FacePos3.
func facePos(p vec.Vec3, dx float64, dim int) (fi, fj, fk float64) {
	fi, fj, fk = p.X/dx, p.Y/dx, p.Z/dx
	switch dim {
	case 0:
		fj -= 0.5
		fk -= 0.5
	case 1:
		fi -= 0.5
		fk -= 0.5
	case 2:
		fi -= 0.5
		fj -= 0.5
	}
	return
}
