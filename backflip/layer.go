// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package backflip implements the BackwardFlip velocity-memory layer:
// a bounded deque of per-step (velocity, reconstructed velocity,
// pressure-gradient, density) snapshots, a Hachisuka forward-tracer
// integrator, and a backtrace reconstruction pass that integrates a
// characteristic long into the past to recover anti-dissipative
// velocity detail lost to grid advection.
package backflip

import "github.com/ryichando/shiokaze/grid"

// Layer is one registered step's snapshot.
type Layer struct {
	U0, U1   *grid.MACArray // velocity before/after this step's projection
	Urecon   *grid.MACArray // anti-dissipative reconstruction target
	G        *grid.MACArray // pressure gradient times dt
	D0, D1   *grid.SparseArray
	Dadded   *grid.SparseArray
	Dt       float64
	Time     float64
}

// Deque is the bounded, newest-at-front ring buffer of layers.
// MaxLayers bounds the full-state depth; MaxVelLayers additionally caps
// how many of those layers retain non-velocity state (G/D0/D1/Dadded
// are dropped from layers beyond that depth).
type Deque struct {
	MaxLayers    int
	MaxVelLayers int
	Accumulative bool

	layers []*Layer
}

// NewDeque returns an empty deque.
func NewDeque(maxLayers, maxVelLayers int) *Deque {
	return &Deque{MaxLayers: maxLayers, MaxVelLayers: maxVelLayers}
}

// Len returns the number of currently retained layers.
func (d *Deque) Len() int { return len(d.layers) }

// Front returns the newest layer, or nil if the deque is empty.
func (d *Deque) Front() *Layer {
	if len(d.layers) == 0 {
		return nil
	}
	return d.layers[0]
}

// At returns the k-th layer back from the front (0 = newest), or nil
// if k is out of range.
func (d *Deque) At(k int) *Layer {
	if k < 0 || k >= len(d.layers) {
		return nil
	}
	return d.layers[k]
}

// Register pushes a new layer to the front, popping the oldest once
// MaxLayers is exceeded. When Accumulative, the new layer's G and
// Dadded are summed with the previous front's.
func (d *Deque) Register(l *Layer) {
	if d.Accumulative && len(d.layers) > 0 {
		front := d.layers[0]
		l.G = sumMAC(l.G, front.G)
		l.Dadded = sumScalar(l.Dadded, front.Dadded)
	}
	d.layers = append([]*Layer{l}, d.layers...)
	if len(d.layers) > d.MaxLayers {
		d.layers = d.layers[:d.MaxLayers]
	}
	d.pruneVelocityOnly()
}

// pruneVelocityOnly drops the non-velocity state of every layer beyond
// MaxVelLayers.
func (d *Deque) pruneVelocityOnly() {
	if d.MaxVelLayers <= 0 {
		return
	}
	for k := d.MaxVelLayers; k < len(d.layers); k++ {
		l := d.layers[k]
		l.G, l.D0, l.D1, l.Dadded = nil, nil, nil, nil
	}
}

// Reset discards every retained layer, used when the tracer lattice is
// reseeded or the solver configuration changes shape.
func (d *Deque) Reset() { d.layers = nil }

func sumMAC(a, b *grid.MACArray) *grid.MACArray {
	if b == nil {
		return a
	}
	if a == nil {
		return b
	}
	out := grid.NewMACArray(a.Cell, a.Dx)
	a.ForEachFace(func(dim, i, j, k int, v float64) { out.Set(dim, i, j, k, v) })
	b.ForEachFace(func(dim, i, j, k int, v float64) {
		out.Set(dim, i, j, k, out.Get(dim, i, j, k)+v)
	})
	return out
}

func sumScalar(a, b *grid.SparseArray) *grid.SparseArray {
	if b == nil {
		return a
	}
	if a == nil {
		return b
	}
	out := grid.NewSparseArray(a.Shape())
	a.ParallelActives(func(i, j, k int, v float64) { out.Set(i, j, k, v) })
	b.ParallelActives(func(i, j, k int, v float64) {
		out.Set(i, j, k, out.Get(i, j, k)+v)
	})
	return out
}
