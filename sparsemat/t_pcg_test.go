// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparsemat

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// buildSPD3 builds the classic SPD tridiagonal [2,-1,0;-1,2,-1;0,-1,2]
// system, used throughout finite-difference Poisson tests.
func buildSPD3() *Fixed {
	m := NewMatrix(3)
	m.AddToElement(0, 0, 2)
	m.AddToElement(0, 1, -1)
	m.AddToElement(1, 0, -1)
	m.AddToElement(1, 1, 2)
	m.AddToElement(1, 2, -1)
	m.AddToElement(2, 1, -1)
	m.AddToElement(2, 2, 2)
	return m.Freeze()
}

func Test_matrix_accumulate_and_freeze(tst *testing.T) {

	chk.PrintTitle("sparse matrix accumulate/freeze")

	m := NewMatrix(2)
	m.AddToElement(0, 0, 1.0)
	m.AddToElement(0, 0, 2.0) // accumulates: 3.0
	m.AddToElement(0, 1, 5.0)
	m.ClearElement(0, 1)

	nz := m.NonZeros(0)
	if len(nz) != 1 || nz[0].Col != 0 || nz[0].Val != 3.0 {
		tst.Fatalf("expected single (0,3.0) entry, got %v", nz)
	}

	f := m.Freeze()
	y := f.MulVec([]float64{1, 1})
	chk.Scalar(tst, "frozen mat-vec row0", 1e-15, y[0], 3.0)
}

func Test_pcg_solves_spd_system(tst *testing.T) {

	chk.PrintTitle("PCG on tridiagonal SPD system")

	a := buildSPD3()
	b := []float64{1, 0, 1}

	x, iters, relResidual := PCG(a, b, 1e-10, 100)

	if iters == 0 {
		tst.Fatalf("expected PCG to take at least one iteration")
	}
	if relResidual > 1e-8 {
		tst.Fatalf("PCG did not converge: relative residual %v", relResidual)
	}

	// Verify A*x == b to the solver's own tolerance.
	ax := a.MulVec(x)
	for i := range b {
		chk.Scalar(tst, "A*x == b", 1e-6, ax[i], b[i])
	}
}

func Test_mulfixed_matches_composed_matvec(tst *testing.T) {

	chk.PrintTitle("sparse matrix-matrix product")

	a := buildSPD3()
	ab := a.MulFixed(a).Freeze() // A*A
	x := []float64{1, 2, 3}

	// (A*A)*x must equal A*(A*x)
	want := a.MulVec(a.MulVec(x))
	got := ab.MulVec(x)
	for i := range want {
		chk.Scalar(tst, "A*A*x", 1e-12, got[i], want[i])
	}
}

func Test_pcg_zero_rhs_is_noop(tst *testing.T) {

	chk.PrintTitle("PCG zero RHS no-op")

	a := buildSPD3()
	x, iters, relResidual := PCG(a, []float64{0, 0, 0}, 1e-10, 50)
	chk.Scalar(tst, "zero rhs residual", 1e-15, relResidual, 0)
	if iters != 0 {
		tst.Fatalf("expected zero iterations for zero RHS, got %d", iters)
	}
	for _, xi := range x {
		chk.Scalar(tst, "zero rhs solution", 1e-15, xi, 0)
	}
}
