// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levelset

import "github.com/ryichando/shiokaze/vec"

// cubeCorner gives the unit-cube coordinate of marching-cubes corner i,
// in the standard (Bourke) ordering: 0..3 the bottom face counter
// clockwise starting at the origin, 4..7 the top face in the same
// order directly above 0..3.
var cubeCorner = [8]vec.Vec3{
	{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
}

// cubeTets is the standard decomposition of the unit cube into 6
// tetrahedra of equal volume (1/6 each), fanned from corner 0 and the
// cube's main diagonal (0,6), indices into cubeCorner.
var cubeTets = [6][4]int{
	{0, 1, 2, 6},
	{0, 2, 3, 6},
	{0, 3, 7, 6},
	{0, 7, 4, 6},
	{0, 4, 5, 6},
	{0, 5, 1, 6},
}

// CellVolume returns the volume fraction of a unit cell (in [0,1]) whose
// fluid level-set value is negative, given its 8 corner values in
// cubeCorner order. The cube is decomposed into 6 tetrahedra; each
// tetrahedron's fluid (phi<0) sub-volume is computed exactly from its 4
// corner values via grid.EdgeFraction-style linear interpolation, with
// degenerate (all-same-sign) tetrahedra handled in O(1).
func CellVolume(c [8]float64) float64 {
	allNeg, allPos := true, true
	for _, v := range c {
		if v >= 0 {
			allNeg = false
		}
		if v < 0 {
			allPos = false
		}
	}
	if allNeg {
		return 1
	}
	if allPos {
		return 0
	}
	var volume float64
	for _, tet := range cubeTets {
		v0, v1, v2, v3 := c[tet[0]], c[tet[1]], c[tet[2]], c[tet[3]]
		p0, p1, p2, p3 := cubeCorner[tet[0]], cubeCorner[tet[1]], cubeCorner[tet[2]], cubeCorner[tet[3]]
		volume += tetFluidVolume(v0, v1, v2, v3, p0, p1, p2, p3)
	}
	return volume
}

// tetVolume returns the (unsigned) volume of tetrahedron (p0,p1,p2,p3).
func tetVolume(p0, p1, p2, p3 vec.Vec3) float64 {
	a := p1.Sub(p0)
	b := p2.Sub(p0)
	d := p3.Sub(p0)
	v := a.Cross(b).Dot(d) / 6
	if v < 0 {
		return -v
	}
	return v
}

// tetFluidVolume returns the volume occupied by the fluid (phi<0) part
// of tetrahedron (p0..p3) with corner values (v0..v3).
func tetFluidVolume(v0, v1, v2, v3 float64, p0, p1, p2, p3 vec.Vec3) float64 {
	full := tetVolume(p0, p1, p2, p3)
	vs := [4]float64{v0, v1, v2, v3}
	ps := [4]vec.Vec3{p0, p1, p2, p3}
	neg := 0
	for _, v := range vs {
		if v < 0 {
			neg++
		}
	}
	switch neg {
	case 0:
		return 0
	case 4:
		return full
	case 1, 3:
		loneNeg := neg == 1
		lone := -1
		for i, v := range vs {
			if (v < 0) == loneNeg {
				lone = i
			}
		}
		var t [3]float64
		n := 0
		for i := 0; i < 4; i++ {
			if i == lone {
				continue
			}
			t[n] = EdgeFractionValue(vs[lone], vs[i])
			n++
		}
		small := full * t[0] * t[1] * t[2]
		if loneNeg {
			return small
		}
		return full - small
	default: // neg == 2: split the tet along the quad cross-section
		// between the negative pair and the positive pair into 3
		// sub-tets of the fluid wedge.
		var n0, n1, q0, q1 int
		ni, pi := 0, 0
		var negIdx, posIdx [2]int
		for i, v := range vs {
			if v < 0 {
				negIdx[ni] = i
				ni++
			} else {
				posIdx[pi] = i
				pi++
			}
		}
		n0, n1, q0, q1 = negIdx[0], negIdx[1], posIdx[0], posIdx[1]
		t00 := EdgeFractionValue(vs[n0], vs[q0])
		t01 := EdgeFractionValue(vs[n0], vs[q1])
		t10 := EdgeFractionValue(vs[n1], vs[q0])
		t11 := EdgeFractionValue(vs[n1], vs[q1])
		a0 := lerpPoint(ps[n0], ps[q0], t00)
		a1 := lerpPoint(ps[n0], ps[q1], t01)
		b0 := lerpPoint(ps[n1], ps[q0], t10)
		b1 := lerpPoint(ps[n1], ps[q1], t11)
		wedge := tetVolume(ps[n0], a0, a1, ps[n1])
		wedge += tetVolume(ps[n1], a0, a1, b1)
		wedge += tetVolume(ps[n1], a0, b0, b1)
		if wedge > full {
			wedge = full
		}
		return wedge
	}
}

func lerpPoint(a, b vec.Vec3, t float64) vec.Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// EdgeFractionValue computes clamp(v1/(v1-v2),0,1), duplicated from
// grid.EdgeFraction to avoid a levelset->grid geometry-helper round trip
// for this one scalar.
func EdgeFractionValue(v1, v2 float64) float64 {
	denom := v1 - v2
	if denom == 0 {
		if v1 <= 0 {
			return 1
		}
		return 0
	}
	d := v1 / denom
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
