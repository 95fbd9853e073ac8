// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package advect

import (
	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/vec"
)

// cellVelocity reconstructs a full (non-staggered) velocity vector at
// cell (i,j,k) by averaging the two bounding faces per axis.
func cellVelocity(v *grid.MACArray, i, j, k int) vec.Vec3 {
	return vec.Vec3{
		X: 0.5 * (v.Get(0, i, j, k) + v.Get(0, i+1, j, k)),
		Y: 0.5 * (v.Get(1, i, j, k) + v.Get(1, i, j+1, k)),
		Z: 0.5 * (v.Get(2, i, j, k) + v.Get(2, i, j, k+1)),
	}
}

// faceVelocity reconstructs a full velocity vector at face (dim,i,j,k)
// as the average of the full cell-centered velocities of the two cells
// the face separates along dim (the face sits exactly at the midpoint
// between those two cell centers).
func faceVelocity(v *grid.MACArray, dim, i, j, k int) vec.Vec3 {
	i0, j0, k0 := i, j, k
	switch dim {
	case 0:
		i0 = i - 1
	case 1:
		j0 = j - 1
	case 2:
		k0 = k - 1
	}
	i0 = grid.Clampi(i0, 0, v.Cell.W-1)
	j0 = grid.Clampi(j0, 0, v.Cell.H-1)
	k0 = grid.Clampi(k0, 0, v.Cell.D-1)
	i1 := grid.Clampi(i, 0, v.Cell.W-1)
	j1 := grid.Clampi(j, 0, v.Cell.H-1)
	k1 := grid.Clampi(k, 0, v.Cell.D-1)
	a := cellVelocity(v, i0, j0, k0)
	b := cellVelocity(v, i1, j1, k1)
	return a.Add(b).Scale(0.5)
}

// backTrace2Stage implements the two-stage back-trace:
// u0 = velocityAt(p), u1 = velocityAt(p-dt*u0), u = (u0+u1)/2,
// p_back = p - dt*u, all in index-space coordinates (velocity divided
// by dx beforehand by the caller).
func backTrace2Stage(velocityAt func(p vec.Vec3) vec.Vec3, p vec.Vec3, dt float64) vec.Vec3 {
	u0 := velocityAt(p)
	u1 := velocityAt(p.Sub(u0.Scale(dt)))
	u := u0.Add(u1).Scale(0.5)
	return p.Sub(u.Scale(dt))
}

// AdvectScalar performs one semi-Lagrangian step of a cell-centered
// scalar field. velocity is read in its own MAC faces;
// dt's sign may be negative (MacCormack's backward pass).
func AdvectScalar(qIn *grid.SparseArray, velocity *grid.MACArray, dx, dt float64, scheme Scheme, driver *parallel.Driver) *grid.SparseArray {
	shape := qIn.Shape()
	out := grid.NewSparseArray(shape)
	out.ActivateAs(qIn, [3]int{})
	get := func(i, j, k int) float64 { return qIn.Get(i, j, k) }
	velocityAt := func(p vec.Vec3) vec.Vec3 {
		i, j, k := clampedIndex(p, shape)
		return cellVelocity(velocity, i, j, k).Scale(1 / dx)
	}
	var actives [][3]int
	qIn.ParallelActives(func(i, j, k int, _ float64) { actives = append(actives, [3]int{i, j, k}) })
	driver.ForEachSimple(len(actives), func(n int) {
		idx := actives[n]
		i, j, k := idx[0], idx[1], idx[2]
		p := vec.Vec3{X: float64(i), Y: float64(j), Z: float64(k)}
		back := backTrace2Stage(velocityAt, p, dt)
		out.Set(i, j, k, sampleAt(get, back.X, back.Y, back.Z, scheme))
	})
	return out
}

// clampedIndex rounds a fractional index-space position to the nearest
// valid integer cell for sampling a MAC face bundle's local velocity.
func clampedIndex(p vec.Vec3, shape grid.Shape3) (i, j, k int) {
	i = grid.Clampi(int(p.X+0.5), 0, shape.W-1)
	j = grid.Clampi(int(p.Y+0.5), 0, shape.H-1)
	k = grid.Clampi(int(p.Z+0.5), 0, shape.D-1)
	return
}

// AdvectVector performs one semi-Lagrangian step of every active face
// of a MAC vector field.
func AdvectVector(vIn *grid.MACArray, velocity *grid.MACArray, dx, dt float64, scheme Scheme, driver *parallel.Driver) *grid.MACArray {
	out := grid.NewMACArray(vIn.Cell, vIn.Dx)
	for dim := 0; dim < 3; dim++ {
		out.Faces[dim].ActivateAs(vIn.Faces[dim], [3]int{})
	}
	for dim := 0; dim < 3; dim++ {
		d := dim
		shape := vIn.Faces[d].Shape()
		get := func(i, j, k int) float64 { return vIn.Faces[d].Get(i, j, k) }
		velocityAt := func(p vec.Vec3) vec.Vec3 {
			i, j, k := clampedIndex(p, shape)
			return faceVelocity(velocity, d, i, j, k).Scale(1 / dx)
		}
		var actives [][3]int
		vIn.Faces[d].ParallelActives(func(i, j, k int, _ float64) { actives = append(actives, [3]int{i, j, k}) })
		driver.ForEachSimple(len(actives), func(n int) {
			idx := actives[n]
			i, j, k := idx[0], idx[1], idx[2]
			p := vec.Vec3{X: float64(i), Y: float64(j), Z: float64(k)}
			back := backTrace2Stage(velocityAt, p, dt)
			out.Faces[d].Set(i, j, k, sampleAt(get, back.X, back.Y, back.Z, scheme))
		})
	}
	return out
}
