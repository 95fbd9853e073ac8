// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package grid implements the staggered (MAC) grid algebra: shapes,
// index<->world-space maps, sparse active arrays and the fraction
// operators the projection consumes.
package grid

import (
	"math"

	"github.com/ryichando/shiokaze/vec"
)

// Shape2 is a 2D grid extent (w,h)
type Shape2 struct {
	W, H int
}

// Shape3 is a 3D grid extent (w,h,d)
type Shape3 struct {
	W, H, D int
}

// Count returns the total number of cells described by the shape
func (s Shape2) Count() int { return s.W * s.H }

// Count returns the total number of cells described by the shape
func (s Shape3) Count() int { return s.W * s.H * s.D }

// Cell returns the cell-centered shape, which is the shape itself
func (s Shape2) Cell() Shape2 { return s }

// Cell returns the cell-centered shape, which is the shape itself
func (s Shape3) Cell() Shape3 { return s }

// Nodal returns the node-centered shape: shape+(1,1)
func (s Shape2) Nodal() Shape2 { return Shape2{s.W + 1, s.H + 1} }

// Nodal returns the node-centered shape: shape+(1,1,1)
func (s Shape3) Nodal() Shape3 { return Shape3{s.W + 1, s.H + 1, s.D + 1} }

// Face returns the face shape for direction dim: shape + e_dim
func (s Shape2) Face(dim int) Shape2 {
	if dim == 0 {
		return Shape2{s.W + 1, s.H}
	}
	return Shape2{s.W, s.H + 1}
}

// Face returns the face shape for direction dim: shape + e_dim
func (s Shape3) Face(dim int) Shape3 {
	r := s
	switch dim {
	case 0:
		r.W++
	case 1:
		r.H++
	case 2:
		r.D++
	}
	return r
}

// Edge returns the 3D edge shape for direction dim: shape + (1-e_dim)
func (s Shape3) Edge(dim int) Shape3 {
	r := Shape3{s.W + 1, s.H + 1, s.D + 1}
	switch dim {
	case 0:
		r.W--
	case 1:
		r.H--
	case 2:
		r.D--
	}
	return r
}

// Max returns the largest of w,h
func (s Shape2) Max() int {
	if s.W > s.H {
		return s.W
	}
	return s.H
}

// Max returns the largest of w,h,d
func (s Shape3) Max() int {
	m := s.W
	if s.H > m {
		m = s.H
	}
	if s.D > m {
		m = s.D
	}
	return m
}

// Dx returns the canonical cell width dx = 1/max(shape)
func (s Shape2) Dx() float64 { return 1.0 / float64(s.Max()) }

// Dx returns the canonical cell width dx = 1/max(shape)
func (s Shape3) Dx() float64 { return 1.0 / float64(s.Max()) }

// Index flattens (i,j) into a linear index, row-major with i fastest
func (s Shape2) Index(i, j int) int { return j*s.W + i }

// Coord unflattens a linear index back into (i,j)
func (s Shape2) Coord(n int) (i, j int) { return n % s.W, n / s.W }

// Index flattens (i,j,k) into a linear index, i fastest then j then k
func (s Shape3) Index(i, j, k int) int { return k*s.W*s.H + j*s.W + i }

// Coord unflattens a linear index back into (i,j,k)
func (s Shape3) Coord(n int) (i, j, k int) {
	plane := s.W * s.H
	k = n / plane
	rem := n % plane
	j = rem / s.W
	i = rem % s.W
	return
}

// Inside reports whether (i,j) is within [0,w)x[0,h)
func (s Shape2) Inside(i, j int) bool {
	return i >= 0 && i < s.W && j >= 0 && j < s.H
}

// Inside reports whether (i,j,k) is within [0,w)x[0,h)x[0,d)
func (s Shape3) Inside(i, j, k int) bool {
	return i >= 0 && i < s.W && j >= 0 && j < s.H && k >= 0 && k < s.D
}

// OnEdge reports whether (i,j) lies on the boundary of the index space.
func (s Shape2) OnEdge(i, j int) bool {
	return i == 0 || j == 0 || i == s.W-1 || j == s.H-1
}

// OnEdge reports whether (i,j,k) lies on the boundary of the index
// space. The duplicated k clause is kept as is; callers that need the
// low-k boundary reach it through Inside checks on the neighbor.
func (s Shape3) OnEdge(i, j, k int) bool {
	return i == 0 || j == 0 || i == s.W-1 || j == s.H-1 || k == s.D-1 || k == s.D-1
}

// CellCenter returns the world-space position of cell-center (i,j) at
// resolution dx: dx*(i+0.5,j+0.5)
func CellCenter2(i, j int, dx float64) vec.Vec2 {
	return vec.Vec2{X: dx * (float64(i) + 0.5), Y: dx * (float64(j) + 0.5)}
}

// CellCenter3 returns the world-space position of cell-center (i,j,k)
func CellCenter3(i, j, k int, dx float64) vec.Vec3 {
	return vec.Vec3{X: dx * (float64(i) + 0.5), Y: dx * (float64(j) + 0.5), Z: dx * (float64(k) + 0.5)}
}

// FacePos3 returns the world-space position of the face (dim,i,j,k):
// dx*(i,j,k)+0.5*dx*(1-e_dim)
func FacePos3(dim, i, j, k int, dx float64) vec.Vec3 {
	p := vec.Vec3{X: dx * float64(i), Y: dx * float64(j), Z: dx * float64(k)}
	switch dim {
	case 0:
		p.Y += 0.5 * dx
		p.Z += 0.5 * dx
	case 1:
		p.X += 0.5 * dx
		p.Z += 0.5 * dx
	case 2:
		p.X += 0.5 * dx
		p.Y += 0.5 * dx
	}
	return p
}

// NodePos3 returns the world-space position of node (i,j,k): dx*(i,j,k)
func NodePos3(i, j, k int, dx float64) vec.Vec3 {
	return vec.Vec3{X: dx * float64(i), Y: dx * float64(j), Z: dx * float64(k)}
}

// WorldToIndex3 maps a world-space position back to fractional cell-index
// coordinates (subtracting the cell-center half-offset), used by
// interpolation in the advect package.
func WorldToIndex3(p vec.Vec3, dx float64) (fi, fj, fk float64) {
	return p.X/dx - 0.5, p.Y/dx - 0.5, p.Z/dx - 0.5
}

// Clampi clamps an integer index into [lo,hi]
func Clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat clamps a float into [lo,hi]
func ClampFloat(v, lo, hi float64) float64 { return math.Min(math.Max(v, lo), hi) }
