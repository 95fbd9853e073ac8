// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vec

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_vec3_algebra(tst *testing.T) {

	chk.PrintTitle("vec3 algebra")

	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: -1, Z: 0.5}

	chk.Scalar(tst, "a+b.X", 1e-15, a.Add(b).X, 5)
	chk.Scalar(tst, "a-b.Y", 1e-15, a.Sub(b).Y, 3)
	chk.Scalar(tst, "a.Scale(2).Z", 1e-15, a.Scale(2).Z, 6)
	chk.Scalar(tst, "a.Dot(b)", 1e-15, a.Dot(b), 1*4+2*-1+3*0.5)

	c := a.Cross(b)
	chk.Scalar(tst, "a·(a×b)", 1e-12, a.Dot(c), 0)
	chk.Scalar(tst, "b·(a×b)", 1e-12, b.Dot(c), 0)

	n := Vec3{X: 3, Y: 4, Z: 0}.Normalize()
	chk.Scalar(tst, "|normalize(3,4,0)|", 1e-15, n.Length(), 1)

	z := Vec3{}.Normalize()
	chk.Scalar(tst, "normalize(0) is zero", 1e-15, z.Length(), 0)
}

func Test_vec3_components(tst *testing.T) {

	chk.PrintTitle("vec3 Get/With")

	a := Vec3{X: 1, Y: 2, Z: 3}
	chk.Scalar(tst, "Get(0)", 1e-15, a.Get(0), 1)
	chk.Scalar(tst, "Get(1)", 1e-15, a.Get(1), 2)
	chk.Scalar(tst, "Get(2)", 1e-15, a.Get(2), 3)

	b := a.With(1, 99)
	chk.Scalar(tst, "With(1,99).Y", 1e-15, b.Y, 99)
	chk.Scalar(tst, "With(1,99).X unchanged", 1e-15, b.X, 1)
}

func Test_lerp_clamp(tst *testing.T) {

	chk.PrintTitle("lerp/clamp")

	chk.Scalar(tst, "Lerp(0,10,0.5)", 1e-15, Lerp(0, 10, 0.5), 5)
	chk.Scalar(tst, "Clamp01(-1)", 1e-15, Clamp01(-1), 0)
	chk.Scalar(tst, "Clamp01(2)", 1e-15, Clamp01(2), 1)
	chk.Scalar(tst, "Clamp(5,0,3)", 1e-15, Clamp(5, 0, 3), 3)
}

func Test_linear_kernel(tst *testing.T) {

	chk.PrintTitle("tent kernel")

	dx := 1.0
	chk.Scalar(tst, "K(0,0,0)", 1e-15, LinearKernel3(Vec3{}, dx), 1)
	chk.Scalar(tst, "K(1,0,0)", 1e-15, LinearKernel3(Vec3{X: 1}, dx), 0)
	chk.Scalar(tst, "K(0.5,0,0)", 1e-15, LinearKernel3(Vec3{X: 0.5}, dx), 0.5)
	chk.Scalar(tst, "K(2,0,0) clamps to 0", 1e-15, LinearKernel3(Vec3{X: 2}, dx), 0)
}
