// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sparsemat implements a row-compressed sparse matrix with an
// accumulate-then-freeze lifecycle and an incomplete-Cholesky
// preconditioned conjugate-gradient solver.
package sparsemat

import "sort"

// entry is one (column,value) pair accumulated against a row before
// the matrix is frozen.
type entry struct {
	col int
	val float64
}

// Matrix is a row-oriented sparse matrix builder: entries accumulate
// per row via AddToElement (matching multiple contributions to the
// same (row,col), exactly like la.Triplet's Put semantics) until
// Freeze produces a Fixed matrix for repeated mat-vec/solve use.
type Matrix struct {
	n    int
	rows [][]entry
}

// NewMatrix allocates an empty n x n builder
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, rows: make([][]entry, n)}
}

// N returns the matrix dimension
func (m *Matrix) N() int { return m.n }

// AddToElement accumulates value into (row,col), summing with any
// prior contribution to the same position (the COO "+=" convention).
func (m *Matrix) AddToElement(row, col int, value float64) {
	for i := range m.rows[row] {
		if m.rows[row][i].col == col {
			m.rows[row][i].val += value
			return
		}
	}
	m.rows[row] = append(m.rows[row], entry{col, value})
}

// ClearElement removes any accumulated value at (row,col)
func (m *Matrix) ClearElement(row, col int) {
	es := m.rows[row]
	for i, e := range es {
		if e.col == col {
			m.rows[row] = append(es[:i], es[i+1:]...)
			return
		}
	}
}

// NonZeros returns the (column,value) pairs currently accumulated for row
func (m *Matrix) NonZeros(row int) []struct {
	Col int
	Val float64
} {
	out := make([]struct {
		Col int
		Val float64
	}, len(m.rows[row]))
	for i, e := range m.rows[row] {
		out[i] = struct {
			Col int
			Val float64
		}{e.col, e.val}
	}
	return out
}

// Fixed is a frozen row-compressed (CRS) matrix: rowPtr has n+1
// entries, col/val are indexed by rowPtr[row]..rowPtr[row+1].
type Fixed struct {
	n      int
	rowPtr []int
	col    []int
	val    []float64
}

// Freeze sorts each row by column and packs the accumulated entries
// into row-compressed arrays, discarding exact zeros.
func (m *Matrix) Freeze() *Fixed {
	f := &Fixed{n: m.n, rowPtr: make([]int, m.n+1)}
	for row := 0; row < m.n; row++ {
		es := append([]entry(nil), m.rows[row]...)
		sort.Slice(es, func(i, j int) bool { return es[i].col < es[j].col })
		for _, e := range es {
			if e.val == 0 {
				continue
			}
			f.col = append(f.col, e.col)
			f.val = append(f.val, e.val)
		}
		f.rowPtr[row+1] = len(f.col)
	}
	return f
}

// N returns the matrix dimension
func (f *Fixed) N() int { return f.n }

// MulVec computes y = A*x
func (f *Fixed) MulVec(x []float64) []float64 {
	y := make([]float64, f.n)
	f.MulVecInto(x, y)
	return y
}

// MulVecInto computes y = A*x, writing into the caller-provided y
// (avoids an allocation per PCG iteration).
func (f *Fixed) MulVecInto(x, y []float64) {
	for row := 0; row < f.n; row++ {
		sum := 0.0
		for p := f.rowPtr[row]; p < f.rowPtr[row+1]; p++ {
			sum += f.val[p] * x[f.col[p]]
		}
		y[row] = sum
	}
}

// Diag returns the matrix's diagonal, 0 where absent.
func (f *Fixed) Diag() []float64 {
	d := make([]float64, f.n)
	for row := 0; row < f.n; row++ {
		for p := f.rowPtr[row]; p < f.rowPtr[row+1]; p++ {
			if f.col[p] == row {
				d[row] = f.val[p]
			}
		}
	}
	return d
}

// Row returns the column indices and values stored for row.
func (f *Fixed) Row(row int) (cols []int, vals []float64) {
	return f.col[f.rowPtr[row]:f.rowPtr[row+1]], f.val[f.rowPtr[row]:f.rowPtr[row+1]]
}

// MulFixed computes the sparse-matrix product A*B, returned as a
// builder so the caller can keep accumulating (e.g. summing two
// Galerkin products) before freezing.
func (f *Fixed) MulFixed(b *Fixed) *Matrix {
	out := NewMatrix(f.n)
	for row := 0; row < f.n; row++ {
		for p := f.rowPtr[row]; p < f.rowPtr[row+1]; p++ {
			mid := f.col[p]
			av := f.val[p]
			for q := b.rowPtr[mid]; q < b.rowPtr[mid+1]; q++ {
				out.AddToElement(row, b.col[q], av*b.val[q])
			}
		}
	}
	return out
}
