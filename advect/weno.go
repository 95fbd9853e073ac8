// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package advect implements semi-Lagrangian and MacCormack advection
// with bilinear/trilinear and WENO4/WENO6 source-field interpolation.
package advect

// weno6 interpolates a 6th-order WENO stencil at fractional offset x
// in [0,1] given values at positions -2,-1,0,1,2,3, following
// Macdonald & Ruuth's smoothness-indicator coefficients.
func weno6(x float64, v [6]float64) float64 {
	const eps = 2.220446049250313e-16 // matches std::numeric_limits<double>::epsilon()
	fm2, fm1, fp0, fp1, fp2, fp3 := v[0], v[1], v[2], v[3], v[4], v[5]

	c0 := (2-x) * (3-x) / 20.0
	c1 := (3 - x) * (x + 2) / 10.0
	c2 := (x + 2) * (x + 1) / 20.0

	sq := func(a float64) float64 { return a * a }
	s0 := (814*sq(fp1) + 4326*sq(fp0) + 2976*sq(fm1) + 244*sq(fm2) -
		3579*fp0*fp1 - 6927*fp0*fm1 + 1854*fp0*fm2 + 2634*fp1*fm1 -
		683*fp1*fm2 - 1659*fm1*fm2) / 180.0
	s1 := (1986*sq(fp1) + 1986*sq(fp0) + 244*sq(fm1) + 244*sq(fp2) +
		1074*fp0*fp2 - 3777*fp0*fp1 - 1269*fp0*fm1 + 1074*fp1*fm1 -
		1269*fp2*fp1 - 293*fp2*fm1) / 180.0
	s2 := (814*sq(fp0) + 4326*sq(fp1) + 2976*sq(fp2) + 244*sq(fp3) -
		683*fp0*fp3 + 2634*fp0*fp2 - 3579*fp0*fp1 - 6927*fp1*fp2 +
		1854*fp1*fp3 - 1659*fp2*fp3) / 180.0

	p0 := fm2 + (fm1-fm2)*(x+2) + (fp0-2*fm1+fm2)*(x+2)*(x+1)/2.0 +
		(fp1-3*fp0+3*fm1-fm2)*(x+2)*(x+1)*x/6.0
	p1 := fm1 + (fp0-fm1)*(x+1) + (fp1-2*fp0+fm1)*(x+1)*x/2.0 +
		(fp2-3*fp1+3*fp0-fm1)*(x+1)*x*(x-1)/6.0
	p2 := fp0 + (fp1-fp0)*x + (fp2-2*fp1+fp0)*x*(x-1)/2.0 +
		(fp3-3*fp2+3*fp1-fp0)*x*(x-1)*(x-2)/6.0

	a0 := c0 / (eps + s0*s0)
	a1 := c1 / (eps + s1*s1)
	a2 := c2 / (eps + s2*s2)
	sum := a0 + a1 + a2
	return (a0*p0 + a1*p1 + a2*p2) / sum
}

// weno4 interpolates the analogous 4th-order WENO stencil at
// fractional offset x in [0,1] given values at positions -1,0,1,2.
func weno4(x float64, v [4]float64) float64 {
	const eps = 2.220446049250313e-16
	fm1, fp0, fp1, fp2 := v[0], v[1], v[2], v[3]

	c0 := (2 - x) / 3.0
	c1 := (x + 1) / 3.0

	sq := func(a float64) float64 { return a * a }
	s0 := (26*fp1*fm1 - 52*fp0*fm1 - 76*fp1*fp0 + 25*sq(fp1) + 64*sq(fp0) + 13*sq(fm1)) / 12.0
	s1 := (26*fp2*fp0 - 52*fp2*fp1 - 76*fp1*fp0 + 25*sq(fp0) + 64*sq(fp1) + 13*sq(fp2)) / 12.0

	p0 := fp0 + (fp1-fm1)*x/2.0 + (fp1-2*fp0+fm1)*x*x/2.0
	p1 := fp0 + (-fp2+4*fp1-3*fp0)*x/2.0 + (fp2-2*fp1+fp0)*x*x/2.0

	a0 := c0 / (eps + s0*s0)
	a1 := c1 / (eps + s1*s1)
	sum := a0 + a1
	return (a0*p0 + a1*p1) / sum
}
