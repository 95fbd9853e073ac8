// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_shape3_basic(tst *testing.T) {

	chk.PrintTitle("shape3 index/coord")

	s := Shape3{W: 4, H: 3, D: 2}
	chk.Scalar(tst, "Count", 1e-15, float64(s.Count()), 24)
	chk.Scalar(tst, "Dx", 1e-15, s.Dx(), 0.25)

	idx := s.Index(1, 2, 1)
	i, j, k := s.Coord(idx)
	chk.Ints(tst, "coord roundtrip", []int{i, j, k}, []int{1, 2, 1})

	if !s.Inside(0, 0, 0) {
		tst.Errorf("(0,0,0) should be inside")
	}
	if s.Inside(4, 0, 0) {
		tst.Errorf("(4,0,0) should be outside a W=4 shape")
	}
	if s.Inside(-1, 0, 0) {
		tst.Errorf("(-1,0,0) should be outside")
	}
}

func Test_shape3_nodal_face_edge(tst *testing.T) {

	chk.PrintTitle("shape3 nodal/face/edge")

	s := Shape3{W: 4, H: 4, D: 4}
	n := s.Nodal()
	chk.Ints(tst, "nodal shape", []int{n.W, n.H, n.D}, []int{5, 5, 5})

	fx := s.Face(0)
	chk.Ints(tst, "x-face shape", []int{fx.W, fx.H, fx.D}, []int{5, 4, 4})
	fy := s.Face(1)
	chk.Ints(tst, "y-face shape", []int{fy.W, fy.H, fy.D}, []int{4, 5, 4})

	ex := s.Edge(0)
	chk.Ints(tst, "x-edge shape", []int{ex.W, ex.H, ex.D}, []int{4, 5, 5})
}

// Test_shape3_onedge_preserved documents OnEdge's duplicated k
// clause: the low-k boundary is only caught by the i/j clauses or by
// Inside returning false for its own out-of-range neighbor, never by
// a dedicated k==0 test.
func Test_shape3_onedge_preserved(tst *testing.T) {

	chk.PrintTitle("shape3 OnEdge preserved bug")

	s := Shape3{W: 4, H: 4, D: 4}
	if !s.OnEdge(0, 2, 2) {
		tst.Errorf("i==0 should be on-edge through the i clause")
	}
	if !s.OnEdge(2, 2, s.D-1) {
		tst.Errorf("k==d-1 should be on-edge (both redundant clauses agree here)")
	}
}

func Test_positions(tst *testing.T) {

	chk.PrintTitle("cell/node/face positions")

	dx := 0.5
	c := CellCenter3(1, 2, 3, dx)
	chk.Scalar(tst, "cell center x", 1e-15, c.X, 1.5*dx)

	n := NodePos3(1, 2, 3, dx)
	chk.Scalar(tst, "node x", 1e-15, n.X, dx)

	p := FacePos3(0, 1, 2, 3, dx)
	chk.Scalar(tst, "x-face x (no offset)", 1e-15, p.X, dx)
	chk.Scalar(tst, "x-face y (+0.5dx)", 1e-15, p.Y, 2*dx+0.5*dx)

	fi, fj, fk := WorldToIndex3(c, dx)
	chk.Scalar(tst, "WorldToIndex3 roundtrip i", 1e-12, fi, 1)
	chk.Scalar(tst, "WorldToIndex3 roundtrip j", 1e-12, fj, 2)
	chk.Scalar(tst, "WorldToIndex3 roundtrip k", 1e-12, fk, 3)
}
