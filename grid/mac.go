// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

// MACArray bundles one SparseArray per spatial direction, shaped
// shape.Face(dim). Iteration order across the bundle is (dim,i,j,k).
type MACArray struct {
	Cell  Shape3
	Dx    float64
	Faces [3]*SparseArray
}

// NewMACArray allocates a 3-component face array over the given cell shape
func NewMACArray(cell Shape3, dx float64) *MACArray {
	m := &MACArray{Cell: cell, Dx: dx}
	for dim := 0; dim < 3; dim++ {
		m.Faces[dim] = NewSparseArray(cell.Face(dim))
	}
	return m
}

// ForEachFace visits every active face across all three directions,
// calling fn(dim,i,j,k,value) in (dim,i,j,k) order.
func (m *MACArray) ForEachFace(fn func(dim, i, j, k int, value float64)) {
	for dim := 0; dim < 3; dim++ {
		d := dim
		m.Faces[d].ParallelActives(func(i, j, k int, v float64) {
			fn(d, i, j, k, v)
		})
	}
}

// Get returns the face value at (dim,i,j,k), 0 if off or out of range
func (m *MACArray) Get(dim, i, j, k int) float64 {
	return m.Faces[dim].Get(i, j, k)
}

// Set activates and sets the face value at (dim,i,j,k)
func (m *MACArray) Set(dim, i, j, k int, v float64) {
	m.Faces[dim].Set(i, j, k, v)
}

// EdgeArray bundles one SparseArray per spatial direction shaped
// shape.Edge(dim), the edge-located analogue of MACArray used by the
// streamfunction projector's vector potential.
type EdgeArray struct {
	Cell  Shape3
	Dx    float64
	Edges [3]*SparseArray
}

// NewEdgeArray allocates a 3-component edge array over the given cell shape
func NewEdgeArray(cell Shape3, dx float64) *EdgeArray {
	e := &EdgeArray{Cell: cell, Dx: dx}
	for dim := 0; dim < 3; dim++ {
		e.Edges[dim] = NewSparseArray(cell.Edge(dim))
	}
	return e
}

// Get returns the edge value at (dim,i,j,k), 0 if off or out of range
func (e *EdgeArray) Get(dim, i, j, k int) float64 { return e.Edges[dim].Get(i, j, k) }

// Set activates and sets the edge value at (dim,i,j,k)
func (e *EdgeArray) Set(dim, i, j, k int, v float64) { e.Edges[dim].Set(i, j, k, v) }

// ForEachEdge visits every active edge across all three directions
func (e *EdgeArray) ForEachEdge(fn func(dim, i, j, k int, value float64)) {
	for dim := 0; dim < 3; dim++ {
		d := dim
		e.Edges[d].ParallelActives(func(i, j, k int, v float64) { fn(d, i, j, k, v) })
	}
}
