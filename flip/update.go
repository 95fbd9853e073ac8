// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/vec"
)

// Update transfers the post-projection grid velocity back onto the
// particles: bullets just pick up gravity; APIC particles take the
// grid velocity outright and
// refresh their affine matrix; plain FLIP/PIC particles blend the
// FLIP delta-velocity estimate with the new grid velocity by
// the PICFLIP ratio (via picflip, the caller-supplied blend factor,
// since PICFLIP belongs to the scene configuration rather than the
// particle engine's own Parameters).
func (e *Engine) Update(prevVelocity, newVelocity *grid.MACArray, dt float64, gravity vec.Vec3, picflip float64) {
	if len(e.particles) == 0 {
		return
	}
	e.driver.ForEachSimple(len(e.particles), func(n int) {
		p := &e.particles[n]
		if p.Bullet {
			p.U = p.U.Add(gravity.Scale(dt))
			return
		}
		if e.Param.APIC {
			p.U = interpolateMAC(newVelocity, p.P, e.dx)
			e.updateVelocityDerivative(p, newVelocity)
		} else {
			newG := interpolateMAC(newVelocity, p.P, e.dx)
			oldG := interpolateMAC(prevVelocity, p.P, e.dx)
			flipVel := p.U.Add(newG.Sub(oldG))
			p.U = flipVel.Scale(picflip).Add(newG.Scale(1 - picflip))
		}
	})
}

// interpolateMAC trilinearly samples a MAC vector field at world
// position p, accounting for each component's half-cell offset along
// its non-normal axes.
func interpolateMAC(v *grid.MACArray, p vec.Vec3, dx float64) vec.Vec3 {
	sample := func(d int) float64 {
		fi, fj, fk := p.X/dx, p.Y/dx, p.Z/dx
		if d != 0 {
			fi -= 0.5
		}
		if d != 1 {
			fj -= 0.5
		}
		if d != 2 {
			fk -= 0.5
		}
		return v.Faces[d].SampleTrilinear(fi, fj, fk)
	}
	return vec.Vec3{X: sample(0), Y: sample(1), Z: sample(2)}
}
