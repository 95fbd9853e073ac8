// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/grid"
)

func uniformEdgeArray(cell grid.Shape3, dx, value float64) *grid.EdgeArray {
	e := grid.NewEdgeArray(cell, dx)
	for dim := 0; dim < 3; dim++ {
		s := e.Edges[dim].Shape()
		for i := 0; i < s.W; i++ {
			for j := 0; j < s.H; j++ {
				for k := 0; k < s.D; k++ {
					e.Edges[dim].Set(i, j, k, value)
				}
			}
		}
	}
	return e
}

// Test_streamfunction_is_divergence_free checks the
// divergence-free-by-construction property: with no solid anywhere, the
// velocity field Solve returns should have near-zero discrete
// divergence on interior cells, for any input velocity.
func Test_streamfunction_is_divergence_free(tst *testing.T) {

	chk.PrintTitle("streamfunction projection is divergence-free")

	cell := grid.Shape3{W: 5, H: 5, D: 5}
	dx := 1.0 / 5.0

	noSolid := grid.NewSparseArray(cell.Nodal())
	ns := cell.Nodal()
	for i := 0; i < ns.W; i++ {
		for j := 0; j < ns.H; j++ {
			for k := 0; k < ns.D; k++ {
				noSolid.Set(i, j, k, 1.0) // free space everywhere
			}
		}
	}

	a := uniformFaceArray(cell, dx, 1.0)
	rho := uniformFaceArray(cell, dx, 1.0)
	edgeMass := uniformEdgeArray(cell, dx, 1.0)

	velocity := grid.NewMACArray(cell, dx)
	for dim := 0; dim < 3; dim++ {
		fs := velocity.Faces[dim].Shape()
		for i := 0; i < fs.W; i++ {
			for j := 0; j < fs.H; j++ {
				for k := 0; k < fs.D; k++ {
					velocity.Faces[dim].Set(i, j, k, 0.2*float64(i+1)-0.1*float64(j)+0.05*float64(k)+float64(dim))
				}
			}
		}
	}

	sp := NewStreamfunctionProjector(cell, dx)
	sp.Precompute(noSolid)

	out := sp.Solve(a, rho, velocity, edgeMass)
	if sp.LastIterations < 0 {
		tst.Fatalf("expected a non-negative PCG iteration count")
	}

	for i := 1; i < cell.W-1; i++ {
		for j := 1; j < cell.H-1; j++ {
			for k := 1; k < cell.D-1; k++ {
				div := Divergence(a, out, dx, i, j, k)
				if math.Abs(div) >= 1e-6 {
					tst.Errorf("cell (%d,%d,%d): |div|=%v, expected near-zero by construction", i, j, k, math.Abs(div))
				}
			}
		}
	}
}
