// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// spatialHash buckets particle indices by the grid cell containing
// them, rebuilt after every position-mutating pass.
type spatialHash struct {
	shape   grid.Shape3
	dx      float64
	buckets map[int][]int
}

func newSpatialHash(shape grid.Shape3, dx float64) *spatialHash {
	return &spatialHash{shape: shape, dx: dx, buckets: make(map[int][]int)}
}

// cellOf returns the (clamped) grid cell containing world position p.
func (h *spatialHash) cellOf(p vec.Vec3) (i, j, k int) {
	i = grid.Clampi(int(math.Floor(p.X/h.dx)), 0, h.shape.W-1)
	j = grid.Clampi(int(math.Floor(p.Y/h.dx)), 0, h.shape.H-1)
	k = grid.Clampi(int(math.Floor(p.Z/h.dx)), 0, h.shape.D-1)
	return
}

// rebuild recomputes every bucket from the current particle positions.
func (h *spatialHash) rebuild(particles []Particle) {
	h.buckets = make(map[int][]int, len(particles))
	for n := range particles {
		i, j, k := h.cellOf(particles[n].P)
		idx := h.shape.Index(i, j, k)
		h.buckets[idx] = append(h.buckets[idx], n)
	}
}

// pointsInCell returns the particle indices bucketed exactly at cell
// (i,j,k).
func (h *spatialHash) pointsInCell(i, j, k int) []int {
	if !h.shape.Inside(i, j, k) {
		return nil
	}
	return h.buckets[h.shape.Index(i, j, k)]
}

// neighbors returns the particle indices bucketed anywhere in the
// 3x3x3 block of cells centered at (i,j,k): every kernel (tent-support
// radius dx) particle that could influence cell or face (i,j,k) lies
// within this one-ring block regardless of which side of the cell a
// face sits on.
func (h *spatialHash) neighbors(i, j, k int) []int {
	var result []int
	for dk := -1; dk <= 1; dk++ {
		for dj := -1; dj <= 1; dj++ {
			for di := -1; di <= 1; di++ {
				ni, nj, nk := i+di, j+dj, k+dk
				if !h.shape.Inside(ni, nj, nk) {
					continue
				}
				result = append(result, h.buckets[h.shape.Index(ni, nj, nk)]...)
			}
		}
	}
	return result
}
