// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package advect

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// Test_weno_linear_ramp: on a linear ramp q(x)=ax+b, WENO4 and WENO6
// must reproduce q to within 1e-10.
func Test_weno_linear_ramp(tst *testing.T) {

	chk.PrintTitle("WENO linear ramp consistency")

	a, b := 2.5, -1.25
	ramp := func(i int) float64 { return a*float64(i) + b }

	for _, x := range []float64{0.0, 0.2, 0.5, 0.73, 1.0} {
		v6 := [6]float64{ramp(-2), ramp(-1), ramp(0), ramp(1), ramp(2), ramp(3)}
		got6 := weno6(x, v6)
		want := a*x + b
		chk.Scalar(tst, "weno6 on ramp", 1e-10, got6, want)

		v4 := [4]float64{ramp(-1), ramp(0), ramp(1), ramp(2)}
		got4 := weno4(x, v4)
		chk.Scalar(tst, "weno4 on ramp", 1e-10, got4, want)
	}
}

// Test_sampleAt_weno_tensor_product checks the 3D tensor-product sweep
// also reproduces a linear ramp along a single axis, since each 1D pass
// degenerates to the exact WENO1D case above.
func Test_sampleAt_weno_tensor_product(tst *testing.T) {

	chk.PrintTitle("sampleAt WENO tensor-product ramp")

	a, b := 1.5, 0.5
	get := func(i, j, k int) float64 { return a*float64(i) + b }

	got := sampleAt(get, 3.4, 2.0, 2.0, WENO6)
	want := a*3.4 + b
	chk.Scalar(tst, "sampleAt WENO6 ramp along x", 1e-9, got, want)

	got4 := sampleAt(get, 3.4, 2.0, 2.0, WENO4)
	chk.Scalar(tst, "sampleAt WENO4 ramp along x", 1e-9, got4, want)
}

// Test_sampleTrilinear_exact checks the plain trilinear fallback
// reproduces a linear field exactly (trilinear interpolation is exact
// on affine data).
func Test_sampleTrilinear_exact(tst *testing.T) {

	chk.PrintTitle("trilinear exact on affine field")

	get := func(i, j, k int) float64 { return float64(i) + 2*float64(j) - 3*float64(k) }
	got := sampleTrilinear(get, 1.3, 2.7, 0.4)
	want := 1.3 + 2*2.7 - 3*0.4
	chk.Scalar(tst, "trilinear affine", 1e-12, got, want)
}
