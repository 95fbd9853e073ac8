// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
)

// uniformFaceArray builds a MAC array with every face active and set to
// the same value (used for the A/rho=1 "no solid, all fluid" setup).
func uniformFaceArray(cell grid.Shape3, dx, value float64) *grid.MACArray {
	m := grid.NewMACArray(cell, dx)
	for dim := 0; dim < 3; dim++ {
		fs := m.Faces[dim].Shape()
		for i := 0; i < fs.W; i++ {
			for j := 0; j < fs.H; j++ {
				for k := 0; k < fs.D; k++ {
					m.Faces[dim].Set(i, j, k, value)
				}
			}
		}
	}
	return m
}

// Test_project_zeroes_divergence checks that after projection the
// interior cells (2..3 on each axis) of a fluid block whose faces all
// have A*rho>0 have near-zero discrete divergence.
func Test_project_zeroes_divergence(tst *testing.T) {

	chk.PrintTitle("pressure projection zeroes divergence")

	cell := grid.Shape3{W: 6, H: 6, D: 6}
	dx := 1.0 / 6.0

	fluid := grid.NewSparseArray(cell)
	for i := 0; i < cell.W; i++ {
		for j := 0; j < cell.H; j++ {
			for k := 0; k < cell.D; k++ {
				if i >= 1 && i <= 4 && j >= 1 && j <= 4 && k >= 1 && k <= 4 {
					fluid.Set(i, j, k, -0.5*dx) // interior fluid block
				} else {
					fluid.Set(i, j, k, 0.5*dx) // air buffer
				}
			}
		}
	}

	a := uniformFaceArray(cell, dx, 1.0)   // no solid anywhere
	rho := uniformFaceArray(cell, dx, 1.0) // fully fluid-dense faces

	velocity := grid.NewMACArray(cell, dx)
	for dim := 0; dim < 3; dim++ {
		fs := velocity.Faces[dim].Shape()
		for i := 0; i < fs.W; i++ {
			for j := 0; j < fs.H; j++ {
				for k := 0; k < fs.D; k++ {
					// a divergent, spatially varying seed field
					velocity.Faces[dim].Set(i, j, k, 0.1*float64(i+1)-0.05*float64(j)+0.02*float64(k))
				}
			}
		}
	}

	driver := parallel.NewDriver()
	driver.SetForceSingleThread(true)
	pp := NewPressureProjector(dx, 0.01, driver)
	pp.PCGTolerance = 1e-12
	pp.PCGMaxIter = 2000

	pressure := pp.Project(fluid, a, rho, velocity, 0)
	if pressure == nil {
		tst.Fatalf("expected a non-nil pressure field")
	}
	if pp.LastIterations == 0 {
		tst.Fatalf("expected PCG to run at least one iteration for a nontrivial divergent field")
	}

	uInf := maxAbsFaceVelocity(velocity)

	for i := 2; i <= 3; i++ {
		for j := 2; j <= 3; j++ {
			for k := 2; k <= 3; k++ {
				div := Divergence(a, velocity, dx, i, j, k)
				if math.Abs(div) >= 1e-6*math.Max(uInf, 1e-12) {
					tst.Errorf("cell (%d,%d,%d): |div|=%v exceeds 1e-6*||u||inf=%v", i, j, k, math.Abs(div), 1e-6*uInf)
				}
			}
		}
	}
}

// Test_project_empty_system_is_noop checks that a projection with no
// inside-fluid cells returns a zero pressure field and does not touch
// velocity.
func Test_project_empty_system_is_noop(tst *testing.T) {

	chk.PrintTitle("pressure projection empty system no-op")

	cell := grid.Shape3{W: 3, H: 3, D: 3}
	dx := 1.0 / 3.0

	fluid := grid.NewSparseArray(cell) // every cell >=0 (air): no inside-fluid rows
	for i := 0; i < cell.W; i++ {
		for j := 0; j < cell.H; j++ {
			for k := 0; k < cell.D; k++ {
				fluid.Set(i, j, k, 1.0)
			}
		}
	}
	a := uniformFaceArray(cell, dx, 1.0)
	rho := uniformFaceArray(cell, dx, 1.0)
	velocity := uniformFaceArray(cell, dx, 0.7)

	driver := parallel.NewDriver()
	driver.SetForceSingleThread(true)
	pp := NewPressureProjector(dx, 0.01, driver)

	pressure := pp.Project(fluid, a, rho, velocity, 0)
	pressure.ParallelActives(func(i, j, k int, v float64) {
		tst.Errorf("expected no active pressure cells, got (%d,%d,%d)=%v", i, j, k, v)
	})
	chk.Scalar(tst, "velocity untouched", 1e-15, velocity.Get(0, 2, 2, 2), 0.7)
}
