// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// Splat rasterizes particle mass and momentum onto the MAC faces:
// mass=sum_k K(p_k-face)*m_k, momentum=sum_k K*m_k*u_k[dim], plus the
// APIC affine correction term when Param.APIC is set.
func (e *Engine) Splat() (momentum, mass *grid.MACArray) {
	momentum = grid.NewMACArray(e.shape, e.dx)
	mass = grid.NewMACArray(e.shape, e.dx)
	if len(e.particles) == 0 {
		return
	}

	cellMask := grid.NewSparseArray(e.shape)
	for n := range e.particles {
		i, j, k := e.hash.cellOf(e.particles[n].P)
		cellMask.Set(i, j, k, 0)
	}
	always := func(i, j, k int, _ float64) (float64, bool) { return 0, true }
	for dim := 0; dim < 3; dim++ {
		hi := [3]int{}
		hi[dim] = 1
		momentum.Faces[dim].ActivateAs(cellMask, [3]int{})
		momentum.Faces[dim].ActivateAs(cellMask, hi)
		momentum.Faces[dim].Dilate(always)
		mass.Faces[dim].ActivateAs(momentum.Faces[dim], [3]int{})
	}

	type massMom struct{ mass, mom float64 }
	for dim := 0; dim < 3; dim++ {
		d := dim
		var actives [][3]int
		momentum.Faces[d].ParallelActives(func(i, j, k int, _ float64) {
			actives = append(actives, [3]int{i, j, k})
		})
		results := make([]massMom, len(actives))
		e.driver.ForEachSimple(len(actives), func(n int) {
			idx := actives[n]
			i, j, k := idx[0], idx[1], idx[2]
			pos := grid.FacePos3(d, i, j, k, e.dx)
			ci, cj, ck := e.cellIndexForFace(d, i, j, k)
			var mom, m float64
			for _, pn := range e.hash.neighbors(ci, cj, ck) {
				p := &e.particles[pn]
				w := vec.LinearKernel3(p.P.Sub(pos), e.dx)
				if w != 0 {
					mom += w * p.Mass * p.U.Get(d)
					m += w * p.Mass
				}
			}
			results[n] = massMom{m, mom}
		})
		for n, idx := range actives {
			i, j, k := idx[0], idx[1], idx[2]
			if results[n].mass == 0 {
				momentum.Faces[d].SetOff(i, j, k)
				mass.Faces[d].SetOff(i, j, k)
				continue
			}
			momentum.Faces[d].Set(i, j, k, results[n].mom)
			mass.Faces[d].Set(i, j, k, results[n].mass)
		}
	}

	if e.Param.APIC {
		e.applyVelocityDerivative(momentum)
	}
	return
}

// cellIndexForFace returns a cell index near face (dim,i,j,k) suitable
// for seeding a one-ring neighbor search; the 3x3x3 search block used
// by every caller covers both cells the face separates regardless of
// which side is picked here.
func (e *Engine) cellIndexForFace(dim, i, j, k int) (ci, cj, ck int) {
	ci, cj, ck = i, j, k
	switch dim {
	case 0:
		ci = grid.Clampi(i, 0, e.shape.W-1)
	case 1:
		cj = grid.Clampi(j, 0, e.shape.H-1)
	case 2:
		ck = grid.Clampi(k, 0, e.shape.D-1)
	}
	return grid.Clampi(ci, 0, e.shape.W-1), grid.Clampi(cj, 0, e.shape.H-1), grid.Clampi(ck, 0, e.shape.D-1)
}

// applyVelocityDerivative adds the APIC affine correction term
// sum_k K*m_k*(C_k[dim].(face-p_k)) to a splatted momentum field.
func (e *Engine) applyVelocityDerivative(momentum *grid.MACArray) {
	for dim := 0; dim < 3; dim++ {
		d := dim
		var actives [][3]int
		momentum.Faces[d].ParallelActives(func(i, j, k int, _ float64) {
			actives = append(actives, [3]int{i, j, k})
		})
		deltas := make([]float64, len(actives))
		e.driver.ForEachSimple(len(actives), func(n int) {
			idx := actives[n]
			i, j, k := idx[0], idx[1], idx[2]
			pos := grid.FacePos3(d, i, j, k, e.dx)
			ci, cj, ck := e.cellIndexForFace(d, i, j, k)
			var mom float64
			for _, pn := range e.hash.neighbors(ci, cj, ck) {
				p := &e.particles[pn]
				r := pos.Sub(p.P)
				w := vec.LinearKernel3(r, e.dx)
				if w != 0 {
					mom += w * p.Mass * p.C[d].Dot(r)
				}
			}
			deltas[n] = mom
		})
		for n, idx := range actives {
			i, j, k := idx[0], idx[1], idx[2]
			momentum.Faces[d].Set(i, j, k, momentum.Faces[d].Get(i, j, k)+deltas[n])
		}
	}
}

// updateVelocityDerivative recomputes a particle's APIC affine matrix
// from the 2^3 face-velocity corners surrounding it.
func (e *Engine) updateVelocityDerivative(p *Particle, velocity *grid.MACArray) {
	for dim := 0; dim < 3; dim++ {
		d := dim
		var offset vec.Vec3
		if d != 0 {
			offset.X = 0.5
		}
		if d != 1 {
			offset.Y = 0.5
		}
		if d != 2 {
			offset.Z = 0.5
		}
		faceShape := velocity.Faces[d].Shape()
		i0 := int(math.Floor(p.P.X/e.dx - offset.X))
		j0 := int(math.Floor(p.P.Y/e.dx - offset.Y))
		k0 := int(math.Floor(p.P.Z/e.dx - offset.Z))
		var c vec.Vec3
		for di := 0; di <= 1; di++ {
			for dj := 0; dj <= 1; dj++ {
				for dk := 0; dk <= 1; dk++ {
					ci := grid.Clampi(i0+di, 0, faceShape.W-1)
					cj := grid.Clampi(j0+dj, 0, faceShape.H-1)
					ck := grid.Clampi(k0+dk, 0, faceShape.D-1)
					pos := vec.Vec3{
						X: e.dx * (float64(i0+di) + offset.X),
						Y: e.dx * (float64(j0+dj) + offset.Y),
						Z: e.dx * (float64(k0+dk) + offset.Z),
					}
					dw := gradientKernel3(pos.Sub(p.P), e.dx)
					v := velocity.Faces[d].Get(ci, cj, ck)
					c = c.Add(dw.Scale(v))
				}
			}
		}
		p.C[d] = c
	}
}
