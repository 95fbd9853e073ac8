// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

// SampleTrilinear trilinearly interpolates the array at fractional index
// coordinates (fi,fj,fk), clamping the sample point into the valid
// index range first. Off cells contribute zero.
func (a *SparseArray) SampleTrilinear(fi, fj, fk float64) float64 {
	s := a.shape
	fi = ClampFloat(fi, 0, float64(s.W-1))
	fj = ClampFloat(fj, 0, float64(s.H-1))
	fk = ClampFloat(fk, 0, float64(s.D-1))
	i0 := int(fi)
	j0 := int(fj)
	k0 := int(fk)
	i1 := Clampi(i0+1, 0, s.W-1)
	j1 := Clampi(j0+1, 0, s.H-1)
	k1 := Clampi(k0+1, 0, s.D-1)
	tx := fi - float64(i0)
	ty := fj - float64(j0)
	tz := fk - float64(k0)

	get := func(i, j, k int) float64 { return a.Get(i, j, k) }

	c00 := get(i0, j0, k0)*(1-tx) + get(i1, j0, k0)*tx
	c10 := get(i0, j1, k0)*(1-tx) + get(i1, j1, k0)*tx
	c01 := get(i0, j0, k1)*(1-tx) + get(i1, j0, k1)*tx
	c11 := get(i0, j1, k1)*(1-tx) + get(i1, j1, k1)*tx
	c0 := c00*(1-ty) + c10*ty
	c1 := c01*(1-ty) + c11*ty
	return c0*(1-tz) + c1*tz
}

// MinMaxStencil returns the min/max of the array over the 8 nodes of
// the trilinear stencil surrounding (fi,fj,fk), used by MacCormack's
// local-stencil clamp.
func (a *SparseArray) MinMaxStencil(fi, fj, fk float64) (min, max float64) {
	s := a.shape
	fi = ClampFloat(fi, 0, float64(s.W-1))
	fj = ClampFloat(fj, 0, float64(s.H-1))
	fk = ClampFloat(fk, 0, float64(s.D-1))
	i0, j0, k0 := int(fi), int(fj), int(fk)
	i1 := Clampi(i0+1, 0, s.W-1)
	j1 := Clampi(j0+1, 0, s.H-1)
	k1 := Clampi(k0+1, 0, s.D-1)
	first := true
	for _, i := range []int{i0, i1} {
		for _, j := range []int{j0, j1} {
			for _, k := range []int{k0, k1} {
				v := a.Get(i, j, k)
				if first {
					min, max = v, v
					first = false
					continue
				}
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
		}
	}
	return
}

// CentralGradient returns the central-difference gradient of the array
// at (i,j,k) in index space, one-sided at the domain boundary.
func (a *SparseArray) CentralGradient(i, j, k int) (gx, gy, gz float64) {
	s := a.shape
	sample := func(di, dj, dk int) float64 { return a.Get(i+di, j+dj, k+dk) }
	if i > 0 && i < s.W-1 {
		gx = (sample(1, 0, 0) - sample(-1, 0, 0)) / 2
	} else if i == 0 {
		gx = sample(1, 0, 0) - sample(0, 0, 0)
	} else {
		gx = sample(0, 0, 0) - sample(-1, 0, 0)
	}
	if j > 0 && j < s.H-1 {
		gy = (sample(0, 1, 0) - sample(0, -1, 0)) / 2
	} else if j == 0 {
		gy = sample(0, 1, 0) - sample(0, 0, 0)
	} else {
		gy = sample(0, 0, 0) - sample(0, -1, 0)
	}
	if k > 0 && k < s.D-1 {
		gz = (sample(0, 0, 1) - sample(0, 0, -1)) / 2
	} else if k == 0 {
		gz = sample(0, 0, 1) - sample(0, 0, 0)
	} else {
		gz = sample(0, 0, 0) - sample(0, 0, -1)
	}
	return
}
