// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package redistance implements a fast-marching Eikonal redistancer:
// initialize a fixed band at the zero crossing, then propagate
// distances outward one front at a time using a local quadratic (or
// linear) inverse shape-function solve at each node. The unstructured
// fast-march scheme runs here directly over the grid's own node graph
// (26-connectivity); a node grid is already a conforming
// simplicial-adjacent structure for this purpose, so generating an
// explicit triangle mesh buys nothing extra.
package redistance

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/vec"
	"gonum.org/v1/gonum/mat"
)

// neighborOffsets26 are the 26 node neighbors in index space, used as
// the unstructured graph's connections per node (the 3-/4-point
// inverse shape-function solve needs more than the 6 face neighbors to
// have enough non-coplanar candidates).
var neighborOffsets26 = func() [][3]int {
	var offs [][3]int
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			for dk := -1; dk <= 1; dk++ {
				if di == 0 && dj == 0 && dk == 0 {
					continue
				}
				offs = append(offs, [3]int{di, dj, dk})
			}
		}
	}
	return offs
}()

// Redistance rebuilds phi as a signed distance function out to a band
// of half-width w cells. phi is a node-shaped level-set
// SparseArray (the cell-center convention is the caller's; this package
// is agnostic to what phi's shape represents, only to its node
// adjacency). The array is mutated and also returned.
func Redistance(phi *grid.SparseArray, dx float64, w int, driver *parallel.Driver) *grid.SparseArray {
	shape := phi.Shape()
	n := shape.Count()

	fixedDist := initFixedBand(phi, dx)

	levelset := make([]float64, n)
	fixed := make([]bool, n)
	valid := make([]bool, n)
	for idx := 0; idx < n; idx++ {
		i, j, k := shape.Coord(idx)
		if !phi.Active(i, j, k) {
			continue
		}
		valid[idx] = true
		if fd, ok := fixedDist[idx]; ok {
			levelset[idx] = fd
			fixed[idx] = true
		} else {
			levelset[idx] = phi.Get(i, j, k)
		}
	}

	position := func(idx int) vec.Vec3 {
		i, j, k := shape.Coord(idx)
		return vec.Vec3{X: float64(i) * dx, Y: float64(j) * dx, Z: float64(k) * dx}
	}
	connections := func(idx int, fn func(m int)) {
		i, j, k := shape.Coord(idx)
		for _, off := range neighborOffsets26 {
			ni, nj, nk := i+off[0], j+off[1], k+off[2]
			if !shape.Inside(ni, nj, nk) {
				continue
			}
			m := shape.Index(ni, nj, nk)
			if valid[m] {
				fn(m)
			}
		}
	}

	farDistance := dx * float64(w+1)
	driver.ForEachSimple(n, func(idx int) {
		if valid[idx] && !fixed[idx] {
			levelset[idx] = math.Copysign(farDistance, levelset[idx])
		}
	})

	march(n, valid, fixed, levelset, position, connections, farDistance, driver)

	phi.ParallelActives(func(i, j, k int, _ float64) {
		idx := shape.Index(i, j, k)
		v := levelset[idx]
		if math.Abs(v) > dx*float64(w) {
			phi.SetOff(i, j, k)
		} else {
			phi.Set(i, j, k, v)
		}
	})
	phi.LevelSet = true
	phi.W = float64(w)
	phi.Dx = dx
	phi.FloodFill(-dx*float64(w), dx*float64(w))
	return phi
}

// initFixedBand finds, for every active node adjacent (across a grid
// edge) to a sign change, the distance to the interpolated zero
// crossing along that edge, returning the minimum such distance per
// node as the initial fixed band.
func initFixedBand(phi *grid.SparseArray, dx float64) map[int]float64 {
	shape := phi.Shape()
	fixed := make(map[int]float64)
	phi.ParallelActives(func(i, j, k int, v float64) {
		best := math.MaxFloat64
		found := false
		for _, off := range [][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}} {
			ni, nj, nk := i+off[0], j+off[1], k+off[2]
			if !shape.Inside(ni, nj, nk) || !phi.Active(ni, nj, nk) {
				continue
			}
			nv := phi.Get(ni, nj, nk)
			if v*nv >= 0 {
				continue
			}
			t := grid.EdgeFraction(v, nv)
			d := t * dx
			if d < best {
				best = d
				found = true
			}
		}
		if found {
			fixed[shape.Index(i, j, k)] = math.Copysign(best, v)
		}
	})
	return fixed
}

// march runs the unstructured fast-march propagation: each round finds
// the current front distance (the closest any-unfixed node is to a
// fixed neighbor), then fixes every node within that front distance
// using a local quadratic inverse shape-function solve over its
// nearest already-fixed neighbors, repeating until no unfixed node
// changes. Termination checks for a stalled unfixed count, not just
// zero, to tolerate nodes with no connections at all.
func march(n int, valid, fixed []bool, levelset []float64, position func(int) vec.Vec3,
	connections func(int, func(int)), farDistance float64, driver *parallel.Driver) {

	prevUnfixed := -1
	for {
		numThreads := driver.MaximalThreads()
		if numThreads < 1 {
			numThreads = 1
		}
		minSlot := make([]float64, numThreads)
		for t := range minSlot {
			minSlot[t] = farDistance
		}
		driver.ForEach(n, func(idx, tid int) {
			if !valid[idx] || fixed[idx] {
				return
			}
			connections(idx, func(m int) {
				if fixed[m] {
					d := math.Abs(levelset[m]) + 2*position(m).Sub(position(idx)).Length()
					if d < minSlot[tid] {
						minSlot[tid] = d
					}
				}
			})
		})
		frontDistance := farDistance
		for _, v := range minSlot {
			if v < frontDistance {
				frontDistance = v
			}
		}

		fixedSave := append([]bool(nil), fixed...)
		levelsetSave := append([]float64(nil), levelset...)

		driver.ForEachSimple(n, func(idx int) {
			if !valid[idx] || fixedSave[idx] {
				return
			}
			var cands []candidate
			hasConnection := false
			connections(idx, func(m int) {
				hasConnection = true
				if fixedSave[m] &&
					math.Abs(levelsetSave[m]) < frontDistance &&
					levelsetSave[idx]*levelsetSave[m] > 0 &&
					math.Abs(levelsetSave[m]) < math.Abs(levelsetSave[idx]) {
					cands = append(cands, candidate{m, math.Abs(levelsetSave[m])})
				}
			})
			if !hasConnection {
				fixed[idx] = true
				return
			}
			if len(cands) == 0 {
				return
			}
			sortByDist(cands)

			sgn := 1.0
			if levelsetSave[idx] < 0 {
				sgn = -1
			}
			self := position(idx)

			// Prefer the full 4-point (self + 3 neighbors) affine solve,
			// fall back to the projected-triangle 3-point solve, and
			// finally to copying the closest fixed neighbor.
			solved := false
			if len(cands) >= 3 {
				if val, ok := solveShapeFunction(self, cands, 4, position, levelsetSave); ok {
					levelset[idx] = sgn * val
					solved = true
				}
			}
			if !solved && len(cands) >= 2 {
				if val, ok := solveShapeFunction(self, cands, 3, position, levelsetSave); ok {
					levelset[idx] = sgn * val
					solved = true
				}
			}
			if !solved {
				first := cands[0]
				levelset[idx] = levelsetSave[first.idx] + sgn*position(first.idx).Sub(self).Length()
			}
			fixed[idx] = true
			clampToNeighborRange(idx, cands, levelsetSave, sgn, levelset)
		})

		countUnfixed := 0
		for idx := range fixed {
			if valid[idx] && !fixed[idx] {
				countUnfixed++
			}
		}
		if countUnfixed == 0 || countUnfixed == prevUnfixed {
			break
		}
		prevUnfixed = countUnfixed
	}
}

// candidate is an already-fixed neighbor considered as a basis point for
// the local shape-function solve, paired with its distance from the
// unfixed node being resolved.
type candidate struct {
	idx  int
	dist float64
}

func sortByDist(cands []candidate) {
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].dist < cands[j-1].dist; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
}

func clampToNeighborRange(idx int, cands []candidate, levelsetSave []float64, sgn float64, levelset []float64) {
	lmin, lmax := 1.0, -1.0
	for _, c := range cands {
		v := levelsetSave[c.idx]
		if v < lmin {
			lmin = v
		}
		if v > lmax {
			lmax = v
		}
	}
	if sgn < 0 {
		if levelset[idx] > lmax {
			levelset[idx] = lmax
		}
	} else {
		if levelset[idx] < lmin {
			levelset[idx] = lmin
		}
	}
}

// solveShapeFunction fits an affine shape function phi(x) ~= phi0 +
// grad.(x-x0) through numValid (3 or 4) already-fixed candidate points,
// then solves the resulting Eikonal quadratic A*D^2+B*D+C=0 for the
// unknown distance D at self. Reports !ok when the candidate
// configuration is singular (coplanar/collinear), letting the caller
// drop to a smaller stencil.
func solveShapeFunction(self vec.Vec3, cands []candidate, numValid int, position func(int) vec.Vec3, levelsetSave []float64) (float64, bool) {

	// Build the affine system [pts 1] * coeffs = basis_i, i.e. invert
	// the (numValid x numValid) matrix whose rows are [x,y,z,1] (3D) or
	// [x,y,1] after projecting to the best-fit plane (co-planar triple).
	pts := make([]vec.Vec3, numValid)
	pts[0] = self
	for i := 1; i < numValid; i++ {
		pts[i] = position(cands[i-1].idx)
	}

	dim := 3
	if numValid == 3 {
		dim = 2
		if !projectToPlane(pts) {
			return 0, false
		}
	}

	size := dim + 1
	a := mat.NewDense(size, size, nil)
	for col := 0; col < numValid; col++ {
		for row := 0; row < dim; row++ {
			a.Set(row, col, pts[col].Get(row))
		}
		a.Set(dim, col, 1)
	}
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return 0, false
	}

	// det holds the gradient contribution of the self-node basis
	// function; coef accumulates the neighbor-levelset-weighted
	// gradient.
	var det, coef [3]float64
	for d := 0; d < dim; d++ {
		det[d] = inv.At(0, d)
		for kk := 1; kk < numValid; kk++ {
			coef[d] += inv.At(kk, d) * levelsetSave[cands[kk-1].idx]
		}
	}
	A, B, C := 0.0, 0.0, -1.0
	for d := 0; d < dim; d++ {
		A += det[d] * det[d]
		B += 2 * det[d] * coef[d]
		C += coef[d] * coef[d]
	}
	if A == 0 {
		return 0, false
	}
	D := B / A
	disc := D*D - 4*C/A
	if disc < 1e-8 {
		disc = 1e-8
	}
	return 0.5*math.Sqrt(disc) - 0.5*D, true
}

// projectToPlane rewrites the 3 points in pts (pts[0] is self) into a
// local 2D orthonormal frame spanned by the triangle they form,
// returning false if the triangle is degenerate.
func projectToPlane(pts []vec.Vec3) bool {
	e0 := pts[1].Sub(pts[0])
	e1raw := pts[2].Sub(pts[0])
	if e0.Length() < 1e-12 {
		return false
	}
	normal := e0.Cross(e1raw)
	if normal.Length() < 1e-12 {
		return false
	}
	ex := e0.Normalize()
	ez := normal.Normalize()
	ey := ez.Cross(ex)
	for i := range pts {
		d := pts[i].Sub(pts[0])
		pts[i] = vec.Vec3{X: d.Dot(ex), Y: d.Dot(ey), Z: 0}
	}
	return true
}
