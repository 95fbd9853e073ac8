// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package advect

import "math"

// Scheme selects the source-field interpolation used by a back-trace
// sample.
type Scheme int

const (
	// Bilinear is trilinear (3D) / bilinear (2D) interpolation, the default.
	Bilinear Scheme = iota
	// WENO4 is the 4-point, 4th-order WENO scheme.
	WENO4
	// WENO6 is the 6-point, 6th-order WENO scheme.
	WENO6
)

// sampleAt samples get(i,j,k) at fractional index coordinates
// (fi,fj,fk) using the tensor-product sweep of the requested scheme:
// 1D WENO (or linear) interpolation first along z, then y, then x.
func sampleAt(get func(i, j, k int) float64, fi, fj, fk float64, scheme Scheme) float64 {
	if scheme == Bilinear {
		return sampleTrilinear(get, fi, fj, fk)
	}
	lo := -1
	n := 4
	if scheme == WENO6 {
		lo = -2
		n = 6
	}
	i0 := int(math.Floor(fi))
	j0 := int(math.Floor(fj))
	k0 := int(math.Floor(fk))
	tx := fi - float64(i0)
	ty := fj - float64(j0)
	tz := fk - float64(k0)

	weno1D := func(x float64, v []float64) float64 {
		if n == 4 {
			return weno4(x, [4]float64{v[0], v[1], v[2], v[3]})
		}
		return weno6(x, [6]float64{v[0], v[1], v[2], v[3], v[4], v[5]})
	}

	reducedJ := make([]float64, n)
	vk := make([]float64, n)
	for ii := 0; ii < n; ii++ {
		vj := make([]float64, n)
		for jj := 0; jj < n; jj++ {
			for kk := 0; kk < n; kk++ {
				vk[kk] = get(i0+lo+ii, j0+lo+jj, k0+lo+kk)
			}
			vj[jj] = weno1D(tz, vk)
		}
		reducedJ[ii] = weno1D(ty, vj)
	}
	return weno1D(tx, reducedJ)
}

// sampleTrilinear interpolates get at (fi,fj,fk), the plain 8-corner
// trilinear fallback used when scheme==Bilinear.
func sampleTrilinear(get func(i, j, k int) float64, fi, fj, fk float64) float64 {
	i0 := int(math.Floor(fi))
	j0 := int(math.Floor(fj))
	k0 := int(math.Floor(fk))
	tx := fi - float64(i0)
	ty := fj - float64(j0)
	tz := fk - float64(k0)

	c00 := get(i0, j0, k0)*(1-tx) + get(i0+1, j0, k0)*tx
	c10 := get(i0, j0+1, k0)*(1-tx) + get(i0+1, j0+1, k0)*tx
	c01 := get(i0, j0, k0+1)*(1-tx) + get(i0+1, j0, k0+1)*tx
	c11 := get(i0, j0+1, k0+1)*(1-tx) + get(i0+1, j0+1, k0+1)*tx
	c0 := c00*(1-ty) + c10*ty
	c1 := c01*(1-ty) + c11*ty
	return c0*(1-tz) + c1*tz
}
