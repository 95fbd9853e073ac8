// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project

import (
	"github.com/cpmech/gosl/io"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/sparsemat"
)

// curlEntry is one (faceRow, edgeCol, coeff) contribution of the
// discrete curl operator C.
type curlEntry struct {
	row, col int
	coeff    float64
}

// StreamfunctionProjector eliminates divergence by construction: it
// solves for an edge-located vector potential psi such that
// u = A^-1 * C * psi is automatically divergence-free, rather than
// solving a pressure Poisson system. C, Z, D and their Galerkin
// products are precomputed once per geometry change and owned by the
// projector; Lhs/rhs are rebuilt each step from the current A/rho
// fractions.
type StreamfunctionProjector struct {
	Cell grid.Shape3
	Dx   float64

	// PCG tolerance/iteration budget, mirroring PressureProjector.
	PCGTolerance float64
	PCGMaxIter   int
	// DiffSolve carries Psi forward and solves for its update rather
	// than solving from scratch each step.
	DiffSolve bool

	// --- geometry precompute (rebuilt by Precompute) ---
	edgeShapes [3]grid.Shape3
	faceShapes [3]grid.Shape3
	nodeShape  grid.Shape3
	numEdges   int
	numFaces   int
	numNodes   int
	edgeOffset [3]int
	faceOffset [3]int

	curl []curlEntry // C, one row per raw face
	div  []curlEntry // D, one row per raw node

	// Z: raw edge index -> reduced index. Edges fully inside solid in
	// the same solid-connected chamber share one reduced index.
	zMap       []int
	numReduced int

	// Galerkin products cached per geometry change: CZ, DZ, and
	// P = (CZ)^T(CZ) + (DZ)^T(DZ) with its frozen diagonal.
	czRows []curlEntry
	dzRows []curlEntry
	p      *sparsemat.Matrix
	pDiag  []float64

	psiPrev []float64 // retained for DiffSolve between calls

	LastIterations  int
	LastRelResidual float64
}

// NewStreamfunctionProjector returns a projector over the given cell
// shape, with DiffSolve on by default.
func NewStreamfunctionProjector(cell grid.Shape3, dx float64) *StreamfunctionProjector {
	return &StreamfunctionProjector{
		Cell:         cell,
		Dx:           dx,
		PCGTolerance: 1e-6,
		PCGMaxIter:   400,
		DiffSolve:    true,
	}
}

func (sp *StreamfunctionProjector) edgeIndex(dim, i, j, k int) int {
	s := sp.edgeShapes[dim]
	return sp.edgeOffset[dim] + s.Index(i, j, k)
}

func (sp *StreamfunctionProjector) faceIndex(dim, i, j, k int) int {
	s := sp.faceShapes[dim]
	return sp.faceOffset[dim] + s.Index(i, j, k)
}

// Precompute rebuilds C, Z, D and their Galerkin products from the
// current solid geometry (a node-sampled solid level set, solid>0 free
// space); must be re-run whenever the solid geometry changes.
func (sp *StreamfunctionProjector) Precompute(solid *grid.SparseArray) {
	cell := sp.Cell
	for d := 0; d < 3; d++ {
		sp.edgeShapes[d] = cell.Edge(d)
		sp.faceShapes[d] = cell.Face(d)
	}
	sp.nodeShape = cell.Nodal()

	sp.edgeOffset[0] = 0
	sp.edgeOffset[1] = sp.edgeShapes[0].Count()
	sp.edgeOffset[2] = sp.edgeOffset[1] + sp.edgeShapes[1].Count()
	sp.numEdges = sp.edgeOffset[2] + sp.edgeShapes[2].Count()

	sp.faceOffset[0] = 0
	sp.faceOffset[1] = sp.faceShapes[0].Count()
	sp.faceOffset[2] = sp.faceOffset[1] + sp.faceShapes[1].Count()
	sp.numFaces = sp.faceOffset[2] + sp.faceShapes[2].Count()

	sp.numNodes = sp.nodeShape.Count()

	sp.buildCurl()
	sp.buildDivergence()
	sp.buildZ(solid)

	sp.czRows = reduceRows(sp.curl, sp.zMap)
	sp.dzRows = reduceRows(sp.div, sp.zMap)
	sp.p = sparsemat.NewMatrix(sp.numReduced)
	galerkinAssemble(sp.p, sp.czRows, func(int) float64 { return 1 })
	galerkinAssemble(sp.p, sp.dzRows, func(int) float64 { return 1 })
	sp.pDiag = sp.p.Freeze().Diag()

	// a geometry change invalidates any carried difference-form state
	sp.psiPrev = nil
}

// buildCurl assembles the discrete curl C: each face picks up the
// signed circulation of its four bounding edges, divided by dx.
func (sp *StreamfunctionProjector) buildCurl() {
	sp.curl = sp.curl[:0]
	idx := sp.dx()
	add := func(dim, i, j, k, edim, ei, ej, ek int, sign float64) {
		sp.curl = append(sp.curl, curlEntry{
			row:   sp.faceIndex(dim, i, j, k),
			col:   sp.edgeIndex(edim, ei, ej, ek),
			coeff: sign * idx,
		})
	}
	fs := sp.faceShapes[0]
	for i := 0; i < fs.W; i++ {
		for j := 0; j < fs.H; j++ {
			for k := 0; k < fs.D; k++ {
				add(0, i, j, k, 2, i, j+1, k, 1)
				add(0, i, j, k, 2, i, j, k, -1)
				add(0, i, j, k, 1, i, j, k+1, -1)
				add(0, i, j, k, 1, i, j, k, 1)
			}
		}
	}
	fs = sp.faceShapes[1]
	for i := 0; i < fs.W; i++ {
		for j := 0; j < fs.H; j++ {
			for k := 0; k < fs.D; k++ {
				add(1, i, j, k, 0, i, j, k+1, 1)
				add(1, i, j, k, 0, i, j, k, -1)
				add(1, i, j, k, 2, i+1, j, k, -1)
				add(1, i, j, k, 2, i, j, k, 1)
			}
		}
	}
	fs = sp.faceShapes[2]
	for i := 0; i < fs.W; i++ {
		for j := 0; j < fs.H; j++ {
			for k := 0; k < fs.D; k++ {
				add(2, i, j, k, 1, i+1, j, k, 1)
				add(2, i, j, k, 1, i, j, k, -1)
				add(2, i, j, k, 0, i, j+1, k, -1)
				add(2, i, j, k, 0, i, j, k, 1)
			}
		}
	}
}

// buildDivergence assembles the discrete divergence D from edges to
// nodes: each node sees the signed difference of the
// two collinear edges (if present) touching it along each axis,
// divided by dx, one-sided at the domain boundary (the missing-side
// term is simply omitted, matching grid.SparseArray.CentralGradient's
// boundary handling elsewhere in this codebase).
func (sp *StreamfunctionProjector) buildDivergence() {
	sp.div = sp.div[:0]
	idx := sp.dx()
	ns := sp.nodeShape
	for i := 0; i < ns.W; i++ {
		for j := 0; j < ns.H; j++ {
			for k := 0; k < ns.D; k++ {
				row := sp.nodeShape.Index(i, j, k)
				if sp.edgeShapes[0].Inside(i, j, k) {
					sp.div = append(sp.div, curlEntry{row, sp.edgeIndex(0, i, j, k), idx})
				}
				if sp.edgeShapes[0].Inside(i-1, j, k) {
					sp.div = append(sp.div, curlEntry{row, sp.edgeIndex(0, i-1, j, k), -idx})
				}
				if sp.edgeShapes[1].Inside(i, j, k) {
					sp.div = append(sp.div, curlEntry{row, sp.edgeIndex(1, i, j, k), idx})
				}
				if sp.edgeShapes[1].Inside(i, j-1, k) {
					sp.div = append(sp.div, curlEntry{row, sp.edgeIndex(1, i, j-1, k), -idx})
				}
				if sp.edgeShapes[2].Inside(i, j, k) {
					sp.div = append(sp.div, curlEntry{row, sp.edgeIndex(2, i, j, k), idx})
				}
				if sp.edgeShapes[2].Inside(i, j, k-1) {
					sp.div = append(sp.div, curlEntry{row, sp.edgeIndex(2, i, j, k-1), -idx})
				}
			}
		}
	}
}

func (sp *StreamfunctionProjector) dx() float64 { return 1 / sp.Dx }

// buildZ constructs the null-space reduction: an edge fully inside
// solid (both endpoint nodes have solid<=0) shares one reduced
// "floating" unknown with every other solid edge of the same connected
// chamber, found by union-find over shared solid nodes. Edges with at
// least one endpoint outside solid keep an independent reduced
// unknown.
func (sp *StreamfunctionProjector) buildZ(solid *grid.SparseArray) {
	inSolid := func(i, j, k int) bool {
		ns := sp.nodeShape
		if !ns.Inside(i, j, k) {
			return false
		}
		return solid.Get(i, j, k) <= 0
	}
	edgeInSolid := func(dim, i, j, k int) (bool, [2][3]int) {
		switch dim {
		case 0:
			return inSolid(i, j, k) && inSolid(i+1, j, k), [2][3]int{{i, j, k}, {i + 1, j, k}}
		case 1:
			return inSolid(i, j, k) && inSolid(i, j+1, k), [2][3]int{{i, j, k}, {i, j + 1, k}}
		default:
			return inSolid(i, j, k) && inSolid(i, j, k+1), [2][3]int{{i, j, k}, {i, j, k + 1}}
		}
	}

	parent := make([]int, sp.numEdges)
	for i := range parent {
		parent[i] = i
	}
	var find func(x int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	solidEdge := make([]bool, sp.numEdges)
	nodeEdges := make(map[[3]int][]int) // solid node -> incident solid-edge raw indices
	for dim := 0; dim < 3; dim++ {
		s := sp.edgeShapes[dim]
		for i := 0; i < s.W; i++ {
			for j := 0; j < s.H; j++ {
				for k := 0; k < s.D; k++ {
					inS, nodes := edgeInSolid(dim, i, j, k)
					if !inS {
						continue
					}
					raw := sp.edgeIndex(dim, i, j, k)
					solidEdge[raw] = true
					for _, n := range nodes {
						nodeEdges[n] = append(nodeEdges[n], raw)
					}
				}
			}
		}
	}
	for _, edges := range nodeEdges {
		for n := 1; n < len(edges); n++ {
			union(edges[0], edges[n])
		}
	}

	sp.zMap = make([]int, sp.numEdges)
	repToReduced := make(map[int]int)
	next := 0
	for raw := 0; raw < sp.numEdges; raw++ {
		if solidEdge[raw] {
			root := find(raw)
			red, ok := repToReduced[root]
			if !ok {
				red = next
				next++
				repToReduced[root] = red
			}
			sp.zMap[raw] = red
			continue
		}
		sp.zMap[raw] = next
		next++
	}
	sp.numReduced = next
}

// reduceRows remaps a raw-edge-indexed sparse operator's columns
// through Z, combining duplicate reduced columns within the same row
// (two solid edges of the same chamber appearing in one face/node's
// stencil).
func reduceRows(rows []curlEntry, zMap []int) []curlEntry {
	type key struct{ row, col int }
	acc := make(map[key]float64, len(rows))
	order := make([]key, 0, len(rows))
	for _, e := range rows {
		red := zMap[e.col]
		k := key{e.row, red}
		if _, ok := acc[k]; !ok {
			order = append(order, k)
		}
		acc[k] += e.coeff
	}
	out := make([]curlEntry, 0, len(order))
	for _, k := range order {
		out = append(out, curlEntry{k.row, k.col, acc[k]})
	}
	return out
}

// galerkinAssemble computes (Reduced)^T diag(weight) (Reduced) into m,
// where Reduced is a raw-row-indexed sparse operator already passed
// through reduceRows: for every row r, every pair of its (col,val)
// entries contributes weight[r]*valA*valB to m[colA][colB].
func galerkinAssemble(m *sparsemat.Matrix, rows []curlEntry, weight func(row int) float64) {
	byRow := make(map[int][]curlEntry)
	for _, e := range rows {
		byRow[e.row] = append(byRow[e.row], e)
	}
	for row, entries := range byRow {
		w := weight(row)
		if w == 0 {
			continue
		}
		for _, a := range entries {
			for _, b := range entries {
				m.AddToElement(a.col, b.col, w*a.coeff*b.coeff)
			}
		}
	}
}

// galerkinRHS computes (Reduced)^T * (weight[row]*value[row]) into rhs.
func galerkinRHS(rhs []float64, rows []curlEntry, weightedValue func(row int) float64) {
	for _, e := range rows {
		rhs[e.col] += e.coeff * weightedValue(e.row)
	}
}

// Solve builds Lhs/rhs from the current area/density fractions and
// face velocity, solves for the reduced vector potential, and returns
// the divergence-free face velocity. a/rho are the same MAC
// face-fraction bundles PressureProjector consumes; edgeMass holds the
// fluid density fraction sampled at each edge's own location, averaged
// into the corner mass V.
func (sp *StreamfunctionProjector) Solve(a, rho *grid.MACArray, velocity *grid.MACArray, edgeMass *grid.EdgeArray) *grid.MACArray {
	czRows := sp.czRows
	dzRows := sp.dzRows

	iAF := func(faceRow int) float64 {
		dim, i, j, k := sp.unFaceIndex(faceRow)
		aFace := clampEps(a.Get(dim, i, j, k), grid.DefaultEpsSolid)
		rFace := rho.Get(dim, i, j, k)
		return rFace/aFace - 1
	}
	vWeight := func(nodeRow int) float64 {
		i, j, k := sp.nodeShape.Coord(nodeRow)
		return cornerMass(edgeMass, i, j, k) - 1
	}

	lhs := sparsemat.NewMatrix(sp.numReduced)
	galerkinAssemble(lhs, czRows, iAF)
	galerkinAssemble(lhs, dzRows, vWeight)
	addMatrix(lhs, sp.p)

	rhs := make([]float64, sp.numReduced)
	faceValue := func(faceRow int) float64 {
		dim, i, j, k := sp.unFaceIndex(faceRow)
		return rho.Get(dim, i, j, k) * velocity.Get(dim, i, j, k)
	}
	galerkinRHS(rhs, czRows, faceValue)

	sp.invalidateAirOnlyRows(lhs, edgeMass)

	if sp.DiffSolve && sp.psiPrev != nil && len(sp.psiPrev) == sp.numReduced {
		sp.clearAirPrev(edgeMass)
		lhsPrev := make([]float64, sp.numReduced)
		applyMatrix(lhs, sp.psiPrev, lhsPrev)
		for i := range rhs {
			rhs[i] -= lhsPrev[i]
		}
	}

	fixed := lhs.Freeze()
	zpsi, iters, resid := sparsemat.PCG(fixed, rhs, sp.PCGTolerance, sp.PCGMaxIter)
	sp.LastIterations, sp.LastRelResidual = iters, resid
	if resid > sp.PCGTolerance {
		io.PfYel("streamfunction: PCG stopped at %d iterations with residual %.3e; using last iterate\n", iters, resid)
	}

	if sp.DiffSolve {
		if sp.psiPrev == nil {
			sp.psiPrev = make([]float64, sp.numReduced)
		}
		for i := range zpsi {
			zpsi[i] += sp.psiPrev[i]
		}
		sp.psiPrev = append([]float64(nil), zpsi...)
	}

	return sp.extractVelocity(zpsi, a)
}

// unFaceIndex inverts faceIndex, used when iterating a flattened face
// row back into (dim,i,j,k).
func (sp *StreamfunctionProjector) unFaceIndex(row int) (dim, i, j, k int) {
	switch {
	case row < sp.faceOffset[1]:
		dim = 0
		i, j, k = sp.faceShapes[0].Coord(row - sp.faceOffset[0])
	case row < sp.faceOffset[2]:
		dim = 1
		i, j, k = sp.faceShapes[1].Coord(row - sp.faceOffset[1])
	default:
		dim = 2
		i, j, k = sp.faceShapes[2].Coord(row - sp.faceOffset[2])
	}
	return
}

// cornerMass averages the incident edge masses at node (i,j,k).
func cornerMass(edgeMass *grid.EdgeArray, i, j, k int) float64 {
	var sum float64
	var n int
	add := func(dim, ei, ej, ek int) {
		s := edgeMass.Edges[dim].Shape()
		if !s.Inside(ei, ej, ek) {
			return
		}
		sum += edgeMass.Get(dim, ei, ej, ek)
		n++
	}
	add(0, i, j, k)
	add(0, i-1, j, k)
	add(1, i, j, k)
	add(1, i, j-1, k)
	add(2, i, j, k)
	add(2, i, j, k-1)
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// invalidateAirOnlyRows zeroes rows of Lhs whose diagonal in P equals
// the full face/node valence (every incident stencil entry carries the
// unit curl/divergence weight, i.e. the edge is fully surrounded by
// air) and whose edge mass is zero, so a dry reduced-unknown never
// destabilizes the solve. The P diagonal carries the 1/dx^2 factor of
// the curl/divergence coefficients, so it is rescaled before the
// valence comparison.
func (sp *StreamfunctionProjector) invalidateAirOnlyRows(lhs *sparsemat.Matrix, edgeMass *grid.EdgeArray) {
	valence := make([]int, sp.numReduced)
	for _, e := range sp.czRows {
		valence[e.col]++
	}
	for _, e := range sp.dzRows {
		valence[e.col]++
	}
	massOf := sp.reducedEdgeMass(edgeMass)
	dx2 := sp.Dx * sp.Dx
	for red := 0; red < sp.numReduced; red++ {
		if valence[red] == 0 || massOf[red] != 0 {
			continue
		}
		scaled := sp.pDiag[red] * dx2
		if diff := scaled - float64(valence[red]); diff > 1e-9 || diff < -1e-9 {
			continue
		}
		// dry (air-only) reduced unknown: disconnect it, clearing the
		// mirrored column entries too so the system stays symmetric
		// for CG.
		for _, v := range lhs.NonZeros(red) {
			lhs.ClearElement(red, v.Col)
			if v.Col != red {
				lhs.ClearElement(v.Col, red)
			}
		}
		lhs.AddToElement(red, red, 1)
	}
}

// reducedEdgeMass accumulates each reduced unknown's total incident
// edge mass.
func (sp *StreamfunctionProjector) reducedEdgeMass(edgeMass *grid.EdgeArray) []float64 {
	massOf := make([]float64, sp.numReduced)
	for dim := 0; dim < 3; dim++ {
		s := sp.edgeShapes[dim]
		for i := 0; i < s.W; i++ {
			for j := 0; j < s.H; j++ {
				for k := 0; k < s.D; k++ {
					raw := sp.edgeIndex(dim, i, j, k)
					massOf[sp.zMap[raw]] += edgeMass.Get(dim, i, j, k)
				}
			}
		}
	}
	return massOf
}

// clearAirPrev zeroes any entries of psiPrev whose reduced unknown has
// since become fully air (no incident edge carries fluid mass), so the
// difference-form solve never re-injects stale potential into dry
// regions.
func (sp *StreamfunctionProjector) clearAirPrev(edgeMass *grid.EdgeArray) {
	massOf := sp.reducedEdgeMass(edgeMass)
	for red := range sp.psiPrev {
		if massOf[red] == 0 {
			sp.psiPrev[red] = 0
		}
	}
}

// extractVelocity computes u_face = iA*(C*Z*zpsi), clamping boundary
// (A==0) faces to zero normal component.
func (sp *StreamfunctionProjector) extractVelocity(zpsi []float64, a *grid.MACArray) *grid.MACArray {
	out := grid.NewMACArray(sp.Cell, sp.Dx)
	sums := make([]float64, sp.numFaces)
	for _, e := range sp.curl {
		sums[e.row] += e.coeff * zpsi[sp.zMap[e.col]]
	}
	for row := 0; row < sp.numFaces; row++ {
		dim, i, j, k := sp.unFaceIndex(row)
		aFace := a.Get(dim, i, j, k)
		if aFace == 0 {
			continue
		}
		out.Faces[dim].Set(i, j, k, sums[row]/aFace)
	}
	return out
}

// addMatrix adds src's accumulated entries into dst row-by-row.
func addMatrix(dst, src *sparsemat.Matrix) {
	for row := 0; row < src.N(); row++ {
		for _, e := range src.NonZeros(row) {
			dst.AddToElement(row, e.Col, e.Val)
		}
	}
}

// applyMatrix computes y = m*x using the builder form (used once,
// against psiPrev, before Freeze has been called for this step's Lhs).
func applyMatrix(m *sparsemat.Matrix, x, y []float64) {
	for row := 0; row < m.N(); row++ {
		var sum float64
		for _, e := range m.NonZeros(row) {
			sum += e.Val * x[e.Col]
		}
		y[row] = sum
	}
}
