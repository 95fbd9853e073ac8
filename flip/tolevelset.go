// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// ToLevelSet rebuilds the fluid level set from the current particle
// set: erode the level set slightly wherever it is far from solid,
// rasterize the particles as a union-of-spheres signed distance (the
// minimum, over nearby particles, of |x-p_k|-r_k), and blend the
// particle reconstruction with the grid-advected level set using each
// cell's averaged sizing value.
func (e *Engine) ToLevelSet(solid func(p vec.Vec3) float64, fluid *grid.SparseArray) {
	if len(e.particles) == 0 {
		return
	}
	save := grid.NewSparseArray(e.shape)
	fluid.ParallelActives(func(i, j, k int, v float64) { save.Set(i, j, k, v) })

	fluid.ParallelActives(func(i, j, k int, v float64) {
		if solid(grid.CellCenter3(i, j, k, e.dx)) > e.dx {
			fluid.Set(i, j, k, v+e.Param.Erosion*e.dx)
		}
	})

	mask := grid.NewSparseArray(e.shape)
	for n := range e.particles {
		i, j, k := e.hash.cellOf(e.particles[n].P)
		mask.Set(i, j, k, 0)
	}
	mask.DilateN(2, func(i, j, k int, _ float64) (float64, bool) { return 0, true })
	fluid.ActivateAs(mask, [3]int{})

	particleLS := grid.NewSparseArray(e.shape)
	mask.ParallelActives(func(i, j, k int, _ float64) {
		pos := grid.CellCenter3(i, j, k, e.dx)
		best := 1.0
		for _, pn := range e.hash.neighbors(i, j, k) {
			p := &e.particles[pn]
			d := pos.Sub(p.P).Length() - p.R
			if d < best {
				best = d
			}
		}
		particleLS.Set(i, j, k, best)
	})

	var actives [][3]int
	fluid.ParallelActives(func(i, j, k int, _ float64) { actives = append(actives, [3]int{i, j, k}) })
	results := make([]float64, len(actives))
	e.driver.ForEachSimple(len(actives), func(n int) {
		idx := actives[n]
		i, j, k := idx[0], idx[1], idx[2]
		var sizingSum, sizingWeight float64
		for _, pn := range e.hash.pointsInCell(i, j, k) {
			p := &e.particles[pn]
			sizingSum += p.Mass * p.SizingValue
			sizingWeight += p.Mass
		}
		if sizingWeight != 0 {
			sizingSum /= sizingWeight
		}
		value := sizingSum*math.Min(fluid.Get(i, j, k), particleLS.Get(i, j, k)) + (1-sizingSum)*save.Get(i, j, k)
		results[n] = value
	})
	for n, idx := range actives {
		fluid.Set(idx[0], idx[1], idx[2], results[n])
	}
}
