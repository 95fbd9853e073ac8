// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backflip

import (
	"github.com/google/uuid"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/vec"
)

// Tracer is one Hachisuka forward tracer: a point seeded
// densely on an r_sample^dim sub-cell lattice that is advanced forward
// every step and accumulates the pressure-gradient term it passes
// through, so Backtrace can later integrate a characteristic back
// through the deque starting from a point already close to its
// eventual source.
type Tracer struct {
	// ID is a stable debug identity assigned on (re)seeding, used only
	// for logging/diagnostics when tracing one tracer's path across a
	// reseed boundary; it carries no simulation meaning.
	ID          uuid.UUID
	P           vec.Vec3
	GIntegrated float64
	U0          vec.Vec3 // velocity sampled at P when this tracer was (re)seeded
	Cell        [3]int
}

// Tracers owns the forward-tracer lattice and its reseed cadence.
type Tracers struct {
	Shape   grid.Shape3
	Dx      float64
	RSample int

	points          []Tracer
	stepsSinceReset int
}

// NewTracers allocates an empty tracer set over the given cell shape.
func NewTracers(shape grid.Shape3, dx float64, rSample int) *Tracers {
	return &Tracers{Shape: shape, Dx: dx, RSample: rSample}
}

// Seed lays a dense r_sample^3 lattice across every cell: one tracer
// per sub-cell lattice site at dx*(cell + (s+0.5)/r_sample) for s in
// [0,r_sample) along each axis.
func (t *Tracers) Seed(velocity0 func(p vec.Vec3) vec.Vec3) {
	t.points = t.points[:0]
	r := t.RSample
	if r < 1 {
		r = 1
	}
	for i := 0; i < t.Shape.W; i++ {
		for j := 0; j < t.Shape.H; j++ {
			for k := 0; k < t.Shape.D; k++ {
				for si := 0; si < r; si++ {
					for sj := 0; sj < r; sj++ {
						for sk := 0; sk < r; sk++ {
							p := vec.Vec3{
								X: t.Dx * (float64(i) + (float64(si)+0.5)/float64(r)),
								Y: t.Dx * (float64(j) + (float64(sj)+0.5)/float64(r)),
								Z: t.Dx * (float64(k) + (float64(sk)+0.5)/float64(r)),
							}
							t.points = append(t.points, Tracer{ID: uuid.New(), P: p, U0: velocity0(p), Cell: [3]int{i, j, k}})
						}
					}
				}
			}
		}
	}
	t.stepsSinceReset = 0
}

// Points returns the current tracer set.
func (t *Tracers) Points() []Tracer { return t.points }

// Advance moves every tracer forward one step with a two-stage
// midpoint (v0 at the current step, v1 at the next), accumulating the
// per-cell pressure-gradient term g at the midpoint:
// p <- p + 1/2*dt*(v0(p)+v1(p+dt*v0)), g_integrated += g(mid).
// velocity0/velocity1 sample a MAC velocity field at a world-space
// point; gAt samples a scalar field (the pressure-gradient magnitude
// along the tracer's own direction of travel) at a world-space point.
// driver dispatches the per-tracer loop.
func (t *Tracers) Advance(velocity0, velocity1 func(p vec.Vec3) vec.Vec3, gAt func(p vec.Vec3) float64, dt float64, maxVelLayers int, reseed func(p vec.Vec3) vec.Vec3, driver *parallel.Driver) {
	driver.ForEachSimple(len(t.points), func(n int) {
		tr := &t.points[n]
		v0 := velocity0(tr.P)
		mid := tr.P.Add(v0.Scale(dt))
		v1 := velocity1(mid)
		step := v0.Add(v1).Scale(0.5 * dt)
		midpoint := tr.P.Add(step.Scale(0.5))
		tr.P = tr.P.Add(step)
		tr.GIntegrated += gAt(midpoint)
		i, j, k := grid.WorldToIndex3(tr.P, t.Dx)
		tr.Cell = [3]int{grid.Clampi(int(i+0.5), 0, t.Shape.W-1), grid.Clampi(int(j+0.5), 0, t.Shape.H-1), grid.Clampi(int(k+0.5), 0, t.Shape.D-1)}
	})
	t.stepsSinceReset++
	if maxVelLayers > 0 && t.stepsSinceReset >= maxVelLayers && reseed != nil {
		t.Seed(reseed)
	}
}
