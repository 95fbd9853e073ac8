// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"github.com/cpmech/gosl/rnd"
	"github.com/google/uuid"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// subCellJitterFraction scales the per-axis random offset applied to
// each sub-cell seeding site, as a fraction of the sub-cell half-width
// (0.25*dx), so that repeated reseeding under a stationary surface
// does not lock particles onto the same relative sub-cell offset step
// after step.
const subCellJitterFraction = 0.15

func init() {
	rnd.Init(1234)
}

// jitter3 returns a random per-axis offset in [-amp,amp].
func jitter3(amp float64) vec.Vec3 {
	if amp <= 0 {
		return vec.Vec3{}
	}
	return vec.Vec3{X: rnd.Float64(-amp, amp), Y: rnd.Float64(-amp, amp), Z: rnd.Float64(-amp, amp)}
}

// Seed is the particle reseeding pass: it computes a
// narrow band around the fluid surface (the whole domain for a
// smoke-like simulation with no negative fluid values anywhere),
// removes particles that have fallen out of the band, are too dense
// for their cell, have aged past MinimalLiveCount while disqualified,
// sit inside solid, or have left the domain, then tops up
// under-populated band cells up to MinParticlesPerCell. The sizing
// function is a uniform 1.0 over the narrow band; every band cell is
// an equally valid reseed target.
func (e *Engine) Seed(fluid *grid.SparseArray, solid func(p vec.Vec3) float64, velocity *grid.MACArray) int {
	narrowband, smoke := e.computeNarrowband(fluid, solid)
	sizing := grid.NewSparseArray(e.shape)
	narrowband.ParallelActives(func(i, j, k int, _ float64) { sizing.Set(i, j, k, 1.0) })

	for n := range e.particles {
		p := &e.particles[n]
		ci, cj, ck := e.hash.cellOf(p.P)
		if sizing.Active(ci, cj, ck) {
			v := sizing.Get(ci, cj, ck)
			if v > p.SizingValue {
				p.SizingValue = v
			}
		}
	}

	removeFlag := make([]bool, len(e.particles))
	bucket := make(map[int]int)
	lo := vec.Vec3{}
	hi := vec.Vec3{X: e.dx * float64(e.shape.W), Y: e.dx * float64(e.shape.H), Z: e.dx * float64(e.shape.D)}
	for n := range e.particles {
		p := &e.particles[n]
		i, j, k := e.hash.cellOf(p.P)
		cellIdx := e.shape.Index(i, j, k)
		if !p.Bullet {
			disqualified := !narrowband.Active(i, j, k) || sizing.Get(i, j, k) == 0 ||
				bucket[cellIdx] >= e.Param.MaxParticlesPerCell || p.SizingValue < 0
			if disqualified && p.LiveCount > e.Param.MinimalLiveCount {
				removeFlag[n] = true
			}
		}
		if !removeFlag[n] && solid(p.P) < -p.R {
			removeFlag[n] = true
		}
		if boxSDF(p.P, lo, hi) > -p.R {
			removeFlag[n] = true
		}
		if !removeFlag[n] {
			bucket[cellIdx]++
		}
	}
	for n := range e.particles {
		e.particles[n].LiveCount++
	}

	var reseeded []Particle
	narrowband.ParallelActives(func(i, j, k int, _ float64) {
		sizingValue := sizing.Get(i, j, k)
		if sizingValue == 0 {
			return
		}
		cellIdx := e.shape.Index(i, j, k)
		numAdded := 0
		attempt := func(p vec.Vec3) {
			if bucket[cellIdx]+numAdded >= e.Param.MinParticlesPerCell {
				return
			}
			if !smoke && e.interpolateFluid(fluid, p) >= -DefaultRadiusFactor*e.dx {
				return
			}
			r := DefaultRadiusFactor * e.dx
			for _, pn := range e.hash.pointsInCell(i, j, k) {
				if e.particles[pn].P.Sub(p).Length() <= 2*r {
					return
				}
			}
			if solid(p) <= r {
				return
			}
			np := Particle{
				ID:          uuid.New(),
				P:           p,
				Mass:        DefaultMass,
				U:           interpolateMAC(velocity, p, e.dx),
				R:           r,
				SizingValue: sizingValue,
			}
			if e.Param.APIC {
				e.updateVelocityDerivative(&np, velocity)
			}
			e.fitParticle(func(p vec.Vec3) float64 { return e.interpolateFluid(fluid, p) }, &np, e.fluidGradientFn(fluid, np.P))
			reseeded = append(reseeded, np)
			numAdded++
		}
		if !smoke && fluid.Get(i, j, k) < -1.25*e.dx {
			attempt(grid.CellCenter3(i, j, k, e.dx))
		} else {
			base := grid.NodePos3(i, j, k, e.dx)
			for ii := 0; ii < 2; ii++ {
				for jj := 0; jj < 2; jj++ {
					for kk := 0; kk < 2; kk++ {
						p := base.Add(vec.Vec3{X: 0.25 * e.dx, Y: 0.25 * e.dx, Z: 0.25 * e.dx}).
							Add(vec.Vec3{X: 0.5 * e.dx * float64(ii), Y: 0.5 * e.dx * float64(jj), Z: 0.5 * e.dx * float64(kk)}).
							Add(jitter3(0.25 * e.dx * subCellJitterFraction))
						attempt(p)
					}
				}
			}
		}
	})

	old := e.particles
	e.particles = append([]Particle{}, reseeded...)
	for i, p := range old {
		if !removeFlag[i] {
			e.particles = append(e.particles, p)
		}
	}
	e.sortParticles()
	return len(reseeded)
}

// computeNarrowband returns the set of cells eligible for reseeding
// and whether this step is a smoke-like simulation (no fluid interior
// anywhere, so every cell participates).
func (e *Engine) computeNarrowband(fluid *grid.SparseArray, solid func(p vec.Vec3) float64) (*grid.SparseArray, bool) {
	mask := grid.NewSparseArray(e.shape)
	smoke := true
	fluid.ParallelActives(func(i, j, k int, v float64) {
		if v < 0 {
			smoke = false
		}
		if v > 0 && solid(grid.CellCenter3(i, j, k, e.dx)) > 0 {
			mask.Set(i, j, k, 0)
		}
	})
	if smoke {
		for k := 0; k < e.shape.D; k++ {
			for j := 0; j < e.shape.H; j++ {
				for i := 0; i < e.shape.W; i++ {
					mask.Set(i, j, k, 0)
				}
			}
		}
		return mask, true
	}
	mask = grid.NewSparseArray(e.shape)
	fluid.ParallelActives(func(i, j, k int, v float64) {
		if v < 0 && solid(grid.CellCenter3(i, j, k, e.dx)) > 0.125*e.dx {
			mask.Set(i, j, k, 0)
		}
	})
	mask.DilateN(e.Param.Narrowband, func(i, j, k int, _ float64) (float64, bool) { return 0, true })
	fluid.ParallelActives(func(i, j, k int, v float64) {
		if v > e.dx && mask.Active(i, j, k) {
			mask.SetOff(i, j, k)
		}
	})
	return mask, false
}

// interpolateFluid trilinearly samples a cell-centered level set at
// world position p.
func (e *Engine) interpolateFluid(fluid *grid.SparseArray, p vec.Vec3) float64 {
	fi, fj, fk := grid.WorldToIndex3(p, e.dx)
	return fluid.SampleTrilinear(fi, fj, fk)
}

func (e *Engine) fluidGradientFn(fluid *grid.SparseArray, p vec.Vec3) vec.Vec3 {
	return gridFluidGradient(fluid, p, e.dx)
}
