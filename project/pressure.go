// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package project implements the two projection formulations: a
// pressure Poisson solve for variable-density free-surface flow, and
// an alternative streamfunction/vector-potential solve that eliminates
// divergence by construction. Both build their linear system through
// sparsemat and solve with sparsemat.PCG.
package project

import (
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/sparsemat"
)

// VolumeCorrection holds the running state of the PI volume
// controller: a target/initial volume pair and the accumulated
// integral term y, updated once per step.
type VolumeCorrection struct {
	Enabled       bool
	Gain          float64
	TolRatio      float64 // relative drift below which the controller stays idle
	InitialVolume float64
	TargetVolume  float64
	integral      float64
}

// bias returns rhs_correct = -(k_p*x + k_i*y)/(x+1), advancing the
// controller's integral term y by x*dt. Drift within TolRatio of the
// target leaves the controller idle.
func (vc *VolumeCorrection) bias(currentVolume, dt float64) float64 {
	if !vc.Enabled || vc.TargetVolume == 0 {
		return 0
	}
	x := (currentVolume - vc.TargetVolume) / vc.TargetVolume
	if math.Abs(x) < vc.TolRatio {
		return 0
	}
	vc.integral += x * dt
	kp := vc.Gain * 2.3 / (25 * dt)
	ki := kp * kp / 16
	return -(kp*x + ki*vc.integral) / (x + 1)
}

// PressureProjector builds and solves the variable-density
// free-surface pressure Poisson system.
type PressureProjector struct {
	Dx             float64
	Dt             float64
	EpsFluid       float64
	EpsSolid       float64
	SurfaceTension float64
	Volume         VolumeCorrection
	PCGTolerance   float64
	PCGMaxIter     int

	driver *parallel.Driver

	// diagnostics from the last Project call
	LastIterations  int
	LastRelResidual float64
	LastPressure    float64
}

// NewPressureProjector returns a projector with the solver defaults
// (no surface tension, volume correction off until configured).
func NewPressureProjector(dx, dt float64, driver *parallel.Driver) *PressureProjector {
	return &PressureProjector{
		Dx:           dx,
		Dt:           dt,
		EpsFluid:     grid.DefaultEpsFluid,
		EpsSolid:     grid.DefaultEpsSolid,
		PCGTolerance: 1e-6,
		PCGMaxIter:   400,
		driver:       driver,
	}
}

// Project removes the divergence of velocity (a MAC face array) given
// the fluid level set and the solid/fluid face-fraction bundles (A =
// solid area fraction, rho = fluid density fraction, both per-direction
// MAC arrays). velocity is mutated in place. currentVolume is the
// fluid volume measured by the caller this step (levelset.CellVolume
// summed over cells), used only when Volume.Enabled.
//
// A system with no inside-fluid cells is a no-op: Project returns
// immediately having done nothing (zero pressure).
func (pp *PressureProjector) Project(fluid *grid.SparseArray, a, rho *grid.MACArray, velocity *grid.MACArray, currentVolume float64) *grid.SparseArray {
	shape := fluid.Shape()
	rowOf := make(map[int]int)
	var cellIdx [][3]int
	fluid.ParallelActives(func(i, j, k int, v float64) {
		if v >= 0 {
			return
		}
		if !pp.hasOpenFace(a, rho, i, j, k) {
			return
		}
		rowOf[shape.Index(i, j, k)] = len(cellIdx)
		cellIdx = append(cellIdx, [3]int{i, j, k})
	})
	n := len(cellIdx)
	if n == 0 {
		return grid.NewSparseArray(shape)
	}

	correctionBias := pp.Volume.bias(currentVolume, pp.Dt)

	m := sparsemat.NewMatrix(n)
	rhs := make([]float64, n)
	dx2 := pp.Dx * pp.Dx

	for row, idx := range cellIdx {
		i, j, k := idx[0], idx[1], idx[2]
		var diag, div float64
		for dim := 0; dim < 3; dim++ {
			lo := [3]int{i, j, k}
			hi := [3]int{i, j, k}
			hi[dim]++
			aLo := a.Get(dim, lo[0], lo[1], lo[2])
			aHi := a.Get(dim, hi[0], hi[1], hi[2])
			rhoLo := clampEps(rho.Get(dim, lo[0], lo[1], lo[2]), pp.EpsFluid)
			rhoHi := clampEps(rho.Get(dim, hi[0], hi[1], hi[2]), pp.EpsFluid)
			uLo := velocity.Get(dim, lo[0], lo[1], lo[2])
			uHi := velocity.Get(dim, hi[0], hi[1], hi[2])

			if aLo > 0 && rhoLo > 0 {
				diag += pp.Dt * aLo / (dx2 * rhoLo)
				nb := [3]int{i, j, k}
				nb[dim]--
				if fluid.Active(nb[0], nb[1], nb[2]) && fluid.Get(nb[0], nb[1], nb[2]) < 0 {
					if col, ok := rowOf[shape.Index(nb[0], nb[1], nb[2])]; ok {
						m.AddToElement(row, col, -pp.Dt*aLo/(dx2*rhoLo))
					}
				}
				div -= aLo * uLo / pp.Dx
			}
			if aHi > 0 && rhoHi > 0 {
				diag += pp.Dt * aHi / (dx2 * rhoHi)
				nb := [3]int{i, j, k}
				nb[dim]++
				if fluid.Active(nb[0], nb[1], nb[2]) && fluid.Get(nb[0], nb[1], nb[2]) < 0 {
					if col, ok := rowOf[shape.Index(nb[0], nb[1], nb[2])]; ok {
						m.AddToElement(row, col, -pp.Dt*aHi/(dx2*rhoHi))
					}
				}
				div += aHi * uHi / pp.Dx
			}
		}
		m.AddToElement(row, row, diag)
		rhs[row] = -div + correctionBias
	}

	fixed := m.Freeze()
	x, iters, resid := sparsemat.PCG(fixed, rhs, pp.PCGTolerance, pp.PCGMaxIter)
	pp.LastIterations, pp.LastRelResidual = iters, resid
	if resid > pp.PCGTolerance {
		io.PfYel("pressure: PCG stopped at %d iterations with residual %.3e; using last iterate\n", iters, resid)
	}

	pressure := grid.NewSparseArray(shape)
	sum := 0.0
	for row, idx := range cellIdx {
		pressure.Set(idx[0], idx[1], idx[2], x[row])
		sum += x[row]
	}
	if n > 0 {
		pp.LastPressure = sum / float64(n)
	}

	pp.applyGradient(fluid, pressure, a, rho, velocity)
	if pp.SurfaceTension != 0 {
		pp.applySurfaceTension(fluid, rho, velocity)
	}
	return pressure
}

// hasOpenFace reports whether cell (i,j,k) has at least one incident
// face with both positive area and positive density fraction, the
// condition for the cell to join the pressure system at all.
func (pp *PressureProjector) hasOpenFace(a, rho *grid.MACArray, i, j, k int) bool {
	for dim := 0; dim < 3; dim++ {
		lo := [3]int{i, j, k}
		hi := [3]int{i, j, k}
		hi[dim]++
		if a.Get(dim, lo[0], lo[1], lo[2]) > 0 && rho.Get(dim, lo[0], lo[1], lo[2]) > 0 {
			return true
		}
		if a.Get(dim, hi[0], hi[1], hi[2]) > 0 && rho.Get(dim, hi[0], hi[1], hi[2]) > 0 {
			return true
		}
	}
	return false
}

// applyGradient updates every active face velocity by
// u -= dt*(p(i)-p(i-e_dim))/(rho_face*dx), clamping boundary (A or
// rho zero) faces to zero normal component.
func (pp *PressureProjector) applyGradient(fluid, pressure *grid.SparseArray, a, rho, velocity *grid.MACArray) {
	for dim := 0; dim < 3; dim++ {
		d := dim
		velocity.Faces[d].ParallelActives(func(i, j, k int, u float64) {
			aFace := a.Get(d, i, j, k)
			rhoFace := rho.Get(d, i, j, k)
			if aFace == 0 || rhoFace == 0 {
				velocity.Faces[d].Set(i, j, k, 0)
				return
			}
			lo := [3]int{i, j, k}
			lo[d]--
			pHi := facePressure(fluid, pressure, i, j, k)
			pLo := facePressure(fluid, pressure, lo[0], lo[1], lo[2])
			velocity.Faces[d].Set(i, j, k, u-pp.Dt*(pHi-pLo)/(rhoFace*pp.Dx))
		})
	}
}

// facePressure returns the pressure value at (i,j,k), 0 when that cell
// is not an enumerated inside-fluid row (air or solid neighbor).
func facePressure(fluid, pressure *grid.SparseArray, i, j, k int) float64 {
	if !fluid.Shape().Inside(i, j, k) {
		return 0
	}
	if fluid.Get(i, j, k) >= 0 {
		return 0
	}
	return pressure.Get(i, j, k)
}

// applySurfaceTension adds -sgn*dt*kappa/(dx*rho)*kappa_face to every
// face with 0<rho<1, where kappa is the SurfaceTension coefficient and
// kappa_face = theta*curvature(forward) + (1-theta)*curvature(back)
// with theta = rho or 1-rho by sign. Curvature is measured as the
// Laplacian of the signed-distance fluid level set at each cell.
func (pp *PressureProjector) applySurfaceTension(fluid *grid.SparseArray, rho, velocity *grid.MACArray) {
	for dim := 0; dim < 3; dim++ {
		d := dim
		velocity.Faces[d].ParallelActives(func(i, j, k int, u float64) {
			r := rho.Get(d, i, j, k)
			if r <= 0 || r >= 1 {
				return
			}
			lo := [3]int{i, j, k}
			lo[d]--
			sgn := 1.0
			if fluid.Get(i, j, k) < fluid.Get(lo[0], lo[1], lo[2]) {
				sgn = -1
			}
			theta := r
			if sgn < 0 {
				theta = 1 - r
			}
			kappaFace := theta*pp.curvature(fluid, i, j, k) +
				(1-theta)*pp.curvature(fluid, lo[0], lo[1], lo[2])
			velocity.Faces[d].Set(i, j, k, u-sgn*pp.Dt*pp.SurfaceTension/(pp.Dx*r)*kappaFace)
		})
	}
}

// curvature approximates the mean curvature of a signed-distance level
// set at cell (i,j,k) by its 7-point Laplacian (exact when |grad|==1).
func (pp *PressureProjector) curvature(fluid *grid.SparseArray, i, j, k int) float64 {
	if !fluid.Shape().Inside(i, j, k) {
		return 0
	}
	c := fluid.Get(i, j, k)
	sum := fluid.Get(i-1, j, k) + fluid.Get(i+1, j, k) +
		fluid.Get(i, j-1, k) + fluid.Get(i, j+1, k) +
		fluid.Get(i, j, k-1) + fluid.Get(i, j, k+1)
	return (sum - 6*c) / (pp.Dx * pp.Dx)
}

func clampEps(v, eps float64) float64 {
	if v > 0 && v < eps {
		return eps
	}
	return v
}

// Divergence measures the discrete divergence of an inside-fluid cell
// for test/diagnostic use: sum +-A_face*u_face/dx.
func Divergence(a, velocity *grid.MACArray, dx float64, i, j, k int) float64 {
	var div float64
	for dim := 0; dim < 3; dim++ {
		hi := [3]int{i, j, k}
		hi[dim]++
		div += a.Get(dim, hi[0], hi[1], hi[2]) * velocity.Get(dim, hi[0], hi[1], hi[2]) / dx
		div -= a.Get(dim, i, j, k) * velocity.Get(dim, i, j, k) / dx
	}
	return div
}

// maxAbsFaceVelocity reports max ||u||_inf over all active faces.
func maxAbsFaceVelocity(velocity *grid.MACArray) float64 {
	var m float64
	velocity.ForEachFace(func(dim, i, j, k int, v float64) {
		if math.Abs(v) > m {
			m = math.Abs(v)
		}
	})
	return m
}
