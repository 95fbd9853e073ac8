// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparsemat

import "math"

// incompleteCholesky computes an IC(0) factor L (lower triangular,
// same sparsity pattern as the lower triangle of the symmetric matrix
// f) such that L*L^T approximates f. Returned as a row-major jagged
// list of (col,val) pairs with col<=row.
func incompleteCholesky(f *Fixed) [][]entry {
	n := f.n
	l := make([][]entry, n)
	// lookup[row][col] into l[row], built incrementally as rows complete
	lookup := make([]map[int]float64, n)
	for i := 0; i < n; i++ {
		lookup[i] = make(map[int]float64)
		cols, vals := f.Row(i)
		for p, col := range cols {
			if col > i {
				continue
			}
			a := vals[p]
			sum := a
			if col < i {
				for _, ei := range l[i] {
					if ei.col >= col {
						break
					}
					if ljk, ok := lookup[col][ei.col]; ok {
						sum -= ei.val * ljk
					}
				}
				ljj, ok := lookup[col][col]
				if !ok || ljj == 0 {
					continue
				}
				val := sum / ljj
				lookup[i][col] = val
				l[i] = append(l[i], entry{col, val})
			} else {
				for _, ei := range l[i] {
					if ei.col < i {
						sum -= ei.val * ei.val
					}
				}
				if sum < 1e-300 {
					sum = 1e-300
				}
				val := math.Sqrt(sum)
				lookup[i][i] = val
				l[i] = append(l[i], entry{i, val})
			}
		}
		if _, ok := lookup[i][i]; !ok {
			// No diagonal entry in A: fall back to identity, keeping the
			// preconditioner well-defined for rows PCG never visits.
			lookup[i][i] = 1
			l[i] = append(l[i], entry{i, 1})
		}
	}
	return l
}

// applyPreconditioner solves L*L^T*z = r for z, given r and the IC(0)
// factor l, via forward then backward substitution.
func applyPreconditioner(l [][]entry, r []float64) []float64 {
	n := len(l)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := r[i]
		var diag float64
		for _, e := range l[i] {
			if e.col == i {
				diag = e.val
				continue
			}
			sum -= e.val * y[e.col]
		}
		if diag == 0 {
			diag = 1
		}
		y[i] = sum / diag
	}
	// Build a column-major view of L^T by scattering, since l is stored
	// row-major lower-triangular only.
	ltRows := make([][]entry, n)
	for i := 0; i < n; i++ {
		for _, e := range l[i] {
			if e.col == i {
				continue
			}
			ltRows[e.col] = append(ltRows[e.col], entry{i, e.val})
		}
	}
	z := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		var diag float64
		for _, e := range l[i] {
			if e.col == i {
				diag = e.val
			}
		}
		for _, e := range ltRows[i] {
			sum -= e.val * z[e.col]
		}
		if diag == 0 {
			diag = 1
		}
		z[i] = sum / diag
	}
	return z
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(a []float64) float64 { return math.Sqrt(dot(a, a)) }

// PCG solves A*x=b for SPD A via incomplete-Cholesky preconditioned
// conjugate gradient: returns the solution, the
// iteration count actually used, and the final relative residual
// (||b-Ax||/||b||). It is never fatal: running past maxIter returns
// the last iterate reached, with the caller expected to log the
// degraded residual (see project.PressureProjector) rather than abort.
func PCG(a *Fixed, b []float64, tol float64, maxIter int) (x []float64, iters int, relResidual float64) {
	n := a.N()
	x = make([]float64, n)
	bNorm := norm(b)
	if bNorm == 0 {
		return x, 0, 0
	}

	l := incompleteCholesky(a)

	r := append([]float64(nil), b...)
	ax := make([]float64, n)
	a.MulVecInto(x, ax)
	for i := range r {
		r[i] -= ax[i]
	}
	resid := norm(r) / bNorm
	if resid <= tol {
		return x, 0, resid
	}

	z := applyPreconditioner(l, r)
	p := append([]float64(nil), z...)
	rz := dot(r, z)

	ap := make([]float64, n)
	for iter := 1; iter <= maxIter; iter++ {
		a.MulVecInto(p, ap)
		denom := dot(p, ap)
		if denom == 0 {
			iters = iter
			break
		}
		alpha := rz / denom
		for i := 0; i < n; i++ {
			x[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}
		resid = norm(r) / bNorm
		iters = iter
		if resid <= tol {
			break
		}
		z = applyPreconditioner(l, r)
		rzNew := dot(r, z)
		beta := rzNew / rz
		for i := 0; i < n; i++ {
			p[i] = z[i] + beta*p[i]
		}
		rz = rzNew
	}
	relResidual = resid
	return x, iters, relResidual
}
