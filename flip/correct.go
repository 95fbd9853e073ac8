// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// Correct applies one pass of pairwise, gradient-projected position
// correction (a cheap SPH-style pressure-like repulsion) to spread
// particles toward a uniform spacing. Overlapping
// particles push each other apart proportionally to Param.CorrectStiff
// and their mass ratio; any component of the resulting displacement
// that would move a particle outward along the fluid gradient (toward
// the air) is projected out so volume cannot grow from correction alone.
func (e *Engine) Correct(fluid *grid.SparseArray) {
	n := len(e.particles)
	if n == 0 {
		return
	}
	displacements := make([]vec.Vec3, n)
	e.driver.ForEachSimple(n, func(i int) {
		pi := &e.particles[i]
		ci, cj, ck := e.hash.cellOf(pi.P)
		var disp vec.Vec3
		for _, j := range e.hash.neighbors(ci, cj, ck) {
			if j == i {
				continue
			}
			pj := &e.particles[j]
			d := pi.P.Sub(pj.P)
			dist2 := d.Dot(d)
			target := pi.R + pj.R
			if dist2 < target*target {
				diff := target - math.Sqrt(dist2)
				scale := e.Param.CorrectStiff * diff * pj.Mass / (pi.Mass + pj.Mass)
				disp = disp.Add(d.Normalize().Scale(scale))
			}
		}
		displacements[i] = disp
	})
	e.driver.ForEachSimple(n, func(i int) {
		d := displacements[i]
		if d.Dot(d) == 0 {
			return
		}
		newPos := e.particles[i].P.Add(d)
		normal := gridFluidGradient(fluid, newPos, e.dx)
		dot := d.Dot(normal)
		if dot > 0 {
			displacements[i] = d.Sub(normal.Scale(dot))
		}
	})
	e.driver.ForEachSimple(n, func(i int) {
		e.particles[i].P = e.particles[i].P.Add(displacements[i])
	})
	e.sortParticles()
}

// fitParticle nudges a freshly seeded particle that starts out within
// Param.FitParticleDist*r of the zero isosurface of fluid: three damped
// steps along the gradient move it toward the level fluid = -r.
func (e *Engine) fitParticle(fluid func(p vec.Vec3) float64, p *Particle, gradient vec.Vec3) {
	if math.Abs(fluid(p.P)) < e.Param.FitParticleDist*p.R {
		for n := 0; n < 3; n++ {
			p.P = p.P.Sub(gradient.Scale(0.5 * (fluid(p.P) + p.R)))
		}
	}
}
