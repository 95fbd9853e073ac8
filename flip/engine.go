// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flip

import (
	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/vec"
)

// Engine owns a simulation's particle set and the per-cell spatial
// hash used to answer neighbor queries.
type Engine struct {
	Param Parameters

	shape  grid.Shape3
	dx     float64
	driver *parallel.Driver

	particles []Particle
	hash      *spatialHash
}

// NewEngine returns an empty engine over the given cell shape.
func NewEngine(shape grid.Shape3, dx float64, param Parameters, driver *parallel.Driver) *Engine {
	return &Engine{
		Param:  param,
		shape:  shape,
		dx:     dx,
		driver: driver,
		hash:   newSpatialHash(shape, dx),
	}
}

// Particles returns the engine's live particle set. Callers must not
// retain the slice across a call that mutates particle count (Seed,
// RemoveBullet, Remove).
func (e *Engine) Particles() []Particle { return e.particles }

// NumParticles returns the number of live particles.
func (e *Engine) NumParticles() int { return len(e.particles) }

// sortParticles rebuilds the spatial hash from current positions;
// called after every pass that moves, adds, or removes particles.
func (e *Engine) sortParticles() { e.hash.rebuild(e.particles) }

// Remove deletes every particle for which test returns true.
func (e *Engine) Remove(test func(p vec.Vec3) bool) int {
	kept := e.particles[:0]
	removed := 0
	for _, p := range e.particles {
		if test(p.P) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	e.particles = kept
	if removed > 0 {
		e.sortParticles()
	}
	return removed
}
