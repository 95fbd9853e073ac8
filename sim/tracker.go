// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sim implements the top-level orchestration: the surface
// tracker that advects and redistances the fluid level set, and the
// Solver that wires a scene.Description and config.Options into the
// per-step simulation pipeline. Neither type performs new physics;
// both are thin glue over the grid/levelset/advect/redistance/flip/
// project/backflip packages.
package sim

import (
	"github.com/ryichando/shiokaze/advect"
	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/levelset"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/redistance"
)

// Tracker advects the fluid level set, redistances it, and dilates
// the narrow band.
type Tracker struct {
	Dx         float64
	Narrowband int
	AdvectOpt  advect.Options
	Driver     *parallel.Driver
}

// Advect moves fluid forward by dt under velocity, redistances it out
// to Narrowband cells, and returns the result. fluid itself is the
// reference for the MacCormack narrow-band trim; a solid, if present,
// must already be combined into fluid by levelset.Combine beforehand.
func (t *Tracker) Advect(fluid *grid.SparseArray, velocity *grid.MACArray, dt float64) *grid.SparseArray {
	advected := advect.AdvectScalarMacCormack(fluid, velocity, fluid, t.Dx, dt, t.AdvectOpt, t.Driver)
	return redistance.Redistance(advected, t.Dx, t.Narrowband, t.Driver)
}

// Rebuild re-marks and trims the narrow band of a level set that was
// just redistanced or rebuilt from particles.
func (t *Tracker) Rebuild(fluid *grid.SparseArray) {
	mask := grid.NewSparseArray(fluid.Shape())
	fluid.ParallelActives(func(i, j, k int, v float64) { mask.Set(i, j, k, v) })
	levelset.MarkNarrowband(mask, t.Narrowband, t.Dx)
	levelset.TrimNarrowband(fluid, mask)
}
