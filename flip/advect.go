// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"math"

	"github.com/ryichando/shiokaze/vec"
)

// Advect integrates every particle's position one step: bullet
// particles integrate ballistically (p += dt*u); regular particles use
// RK1/2/4 sampling of the scene's velocity field (Param.RKOrder),
// falling back to ballistic integration when the sampled velocity is
// exactly zero. Sizing value decays linearly, and collision is run as
// the final pass.
func (e *Engine) Advect(solid func(p vec.Vec3) float64, velocity func(p vec.Vec3) vec.Vec3, dt float64) {
	if len(e.particles) > 0 {
		e.driver.ForEachSimple(len(e.particles), func(n int) {
			p := &e.particles[n]
			if p.Bullet {
				p.P = p.P.Add(p.U.Scale(dt))
			} else {
				u1 := velocity(p.P)
				if u1.Dot(u1) != 0 {
					switch e.Param.RKOrder {
					case 4:
						u2 := velocity(p.P.Add(u1.Scale(0.5 * dt)))
						u3 := velocity(p.P.Add(u2.Scale(0.5 * dt)))
						u4 := velocity(p.P.Add(u3.Scale(dt)))
						sum := u1.Add(u2.Scale(2)).Add(u3.Scale(2)).Add(u4)
						p.P = p.P.Add(sum.Scale(dt / 6))
					case 1:
						p.P = p.P.Add(u1.Scale(dt))
					default: // RKOrder==2, and the fallback for any other value
						u2 := velocity(p.P.Add(u1.Scale(dt)))
						p.P = p.P.Add(u1.Add(u2).Scale(0.5 * dt))
					}
				} else {
					p.P = p.P.Add(p.U.Scale(dt))
				}
			}
			p.SizingValue -= e.Param.DecayRate * dt
		})
		e.sortParticles()
	}
	e.Collision(solid)
}

// MarkBullet promotes particles inside fluid>0 (outside the liquid) to
// ballistic "bullet" state and demotes those that have re-entered the
// fluid, then evicts bullets that have exceeded BulletMaximalTime.
// It returns the live bullet count.
func (e *Engine) MarkBullet(time float64, fluid func(p vec.Vec3) float64, velocity func(p vec.Vec3) vec.Vec3) int {
	if len(e.particles) == 0 {
		return 0
	}
	e.driver.ForEachSimple(len(e.particles), func(n int) {
		p := &e.particles[n]
		newBullet := false
		if fluid(p.P) > 0.0 {
			newBullet = true
			p.C = [3]vec.Vec3{}
		}
		if newBullet != p.Bullet {
			p.Bullet = newBullet
			if newBullet {
				p.BulletTime = time
			} else {
				p.BulletTime = 0
				p.Mass = DefaultMass
				p.R = DefaultRadiusFactor * e.dx
				p.U = velocity(p.P)
			}
		}
	})
	e.RemoveBullet(time)
	count := 0
	for n := range e.particles {
		if e.particles[n].Bullet {
			count++
		}
	}
	return count
}

// RemoveBullet evicts bullets whose time as a bullet has exceeded
// Param.BulletMaximalTime, and linearly shrinks the mass/radius of the
// survivors as they approach that limit.
func (e *Engine) RemoveBullet(time float64) int {
	if e.Param.BulletMaximalTime == 0 || len(e.particles) == 0 {
		return 0
	}
	removeFlag := make([]bool, len(e.particles))
	e.driver.ForEachSimple(len(e.particles), func(n int) {
		p := &e.particles[n]
		if !p.Bullet {
			return
		}
		if time-p.BulletTime > e.Param.BulletMaximalTime {
			removeFlag[n] = true
			return
		}
		scale := math.Max(0.01, 1.0-math.Max(0.0, time-p.BulletTime)/e.Param.BulletMaximalTime)
		p.R = DefaultRadiusFactor * e.dx * scale
		p.Mass = scale * DefaultMass
	})
	old := e.particles
	kept := old[:0]
	removed := 0
	for i := range old {
		if removeFlag[i] {
			removed++
			continue
		}
		kept = append(kept, old[i])
	}
	e.particles = kept
	if removed > 0 {
		e.sortParticles()
	}
	return removed
}

// Collision pushes particles out of the solid and clamps them within
// the domain bounds, so that every particle ends up inside the domain
// and outside solid by at least r.
func (e *Engine) Collision(solid func(p vec.Vec3) float64) {
	if len(e.particles) > 0 {
		hi := vec.Vec3{X: e.dx * float64(e.shape.W), Y: e.dx * float64(e.shape.H), Z: e.dx * float64(e.shape.D)}
		e.driver.ForEachSimple(len(e.particles), func(n int) {
			p := &e.particles[n]
			phi := solid(p.P) - p.R
			if phi < 0 {
				gradient := centralGradientFn(solid, p.P, e.dx)
				p.P = p.P.Sub(gradient.Scale(phi))
				dot := gradient.Dot(p.U)
				if dot < 0 {
					p.U = p.U.Sub(gradient.Scale(dot))
				}
			}
			p.P.X = vec.Clamp(p.P.X, p.R, hi.X-p.R)
			p.P.Y = vec.Clamp(p.P.Y, p.R, hi.Y-p.R)
			p.P.Z = vec.Clamp(p.P.Z, p.R, hi.Z-p.R)
		})
	}
	e.sortParticles()
}
