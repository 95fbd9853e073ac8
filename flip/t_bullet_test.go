// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/vec"
)

// seedSingleParticle builds an engine with exactly one live particle,
// placed directly (rather than through Seed's narrowband heuristics)
// so this test can isolate the bullet lifecycle in
// MarkBullet/RemoveBullet.
func seedSingleParticle(tst *testing.T) *Engine {
	shape := grid.Shape3{W: 4, H: 4, D: 4}
	dx := 0.25
	driver := parallel.NewDriver()
	driver.SetForceSingleThread(true)

	param := DefaultParameters()
	param.BulletMaximalTime = 0.5

	e := NewEngine(shape, dx, param, driver)
	e.particles = []Particle{{
		P:    grid.CellCenter3(1, 1, 1, dx),
		U:    vec.Vec3{X: 0, Y: 2.0, Z: 0},
		Mass: DefaultMass,
		R:    DefaultRadiusFactor * dx,
	}}
	e.sortParticles()
	if e.NumParticles() != 1 {
		tst.Fatalf("expected exactly one particle, got %d", e.NumParticles())
	}
	return e
}

// Test_bullet_lifecycle: a single
// particle that has left the fluid is promoted to bullet within the
// first step, its radius/mass decay linearly while alive, and it is
// removed once its age exceeds BulletMaximalTime.
func Test_bullet_lifecycle(tst *testing.T) {

	chk.PrintTitle("FLIP bullet lifecycle")

	e := seedSingleParticle(tst)
	zeroVel := func(p vec.Vec3) vec.Vec3 { return vec.Vec3{} }
	aboveSurface := func(p vec.Vec3) float64 { return 1.0 } // always "outside the liquid"

	count := e.MarkBullet(0.0, aboveSurface, zeroVel)
	if count != 1 {
		tst.Fatalf("expected the particle to be promoted to bullet on step 1, got count=%d", count)
	}
	if !e.Particles()[0].Bullet {
		tst.Fatalf("expected particle.Bullet == true after promotion")
	}
	if e.Particles()[0].BulletTime != 0.0 {
		tst.Fatalf("expected BulletTime to be set to the promotion time")
	}

	dt := 0.01
	steps := int(math.Ceil(e.Param.BulletMaximalTime/dt)) + 2
	removedAt := -1
	for step := 1; step <= steps; step++ {
		t := float64(step) * dt
		if e.NumParticles() == 0 {
			removedAt = step
			break
		}
		before := e.Particles()[0]
		e.RemoveBullet(t)
		if e.NumParticles() > 0 {
			after := e.Particles()[0]
			if after.R > before.R+1e-15 {
				tst.Fatalf("step %d: bullet radius increased (%v -> %v), expected monotonic decay", step, before.R, after.R)
			}
			if after.Mass > before.Mass+1e-15 {
				tst.Fatalf("step %d: bullet mass increased (%v -> %v), expected monotonic decay", step, before.Mass, after.Mass)
			}
		}
	}
	if removedAt == -1 {
		tst.Fatalf("expected the bullet to be removed within %d steps (BulletMaximalTime/dt), but it survived", steps)
	}
	expectedStep := int(math.Ceil(e.Param.BulletMaximalTime / dt))
	if removedAt < expectedStep-1 || removedAt > expectedStep+2 {
		tst.Errorf("bullet removed at step %d, expected near BulletMaximalTime/dt=%d", removedAt, expectedStep)
	}
}
