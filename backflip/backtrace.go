// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backflip

import (
	"math"

	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/vec"
)

// Options configures the Backtrace strategy.
type Options struct {
	DecayRate          float64
	TemporalAdaptivity bool
	AdaptiveRate       float64
	SpatialAdaptivity  bool
	SlowVelocityCutoff float64 // below this |u|, a cell is "slow" for spatial adaptivity
	LowDensityCutoff   float64 // below this density, a cell is "low density"
}

// Result is the reconstructed velocity recovered for one tracer.
type Result struct {
	Urec vec.Vec3
	Live bool // false if spatial adaptivity disabled this tracer
}

// sampleMAC reconstructs a full (non-staggered) velocity at a
// world-space point by trilinearly interpolating the cell-centered
// average of the two bounding faces per axis, the same reconstruction
// advect.cellVelocity performs, re-derived here since that helper is
// unexported in the advect package.
func sampleMAC(v *grid.MACArray, p vec.Vec3, dx float64) vec.Vec3 {
	fi, fj, fk := grid.WorldToIndex3(p, dx)
	shape := v.Cell
	i0 := grid.Clampi(int(math.Floor(fi)), 0, shape.W-1)
	j0 := grid.Clampi(int(math.Floor(fj)), 0, shape.H-1)
	k0 := grid.Clampi(int(math.Floor(fk)), 0, shape.D-1)
	i1 := grid.Clampi(i0+1, 0, shape.W-1)
	j1 := grid.Clampi(j0+1, 0, shape.H-1)
	k1 := grid.Clampi(k0+1, 0, shape.D-1)
	tx := grid.ClampFloat(fi-float64(i0), 0, 1)
	ty := grid.ClampFloat(fj-float64(j0), 0, 1)
	tz := grid.ClampFloat(fk-float64(k0), 0, 1)
	cellVel := func(i, j, k int) vec.Vec3 {
		return vec.Vec3{
			X: 0.5 * (v.Get(0, i, j, k) + v.Get(0, i+1, j, k)),
			Y: 0.5 * (v.Get(1, i, j, k) + v.Get(1, i, j+1, k)),
			Z: 0.5 * (v.Get(2, i, j, k) + v.Get(2, i, j, k+1)),
		}
	}
	c000, c100 := cellVel(i0, j0, k0), cellVel(i1, j0, k0)
	c010, c110 := cellVel(i0, j1, k0), cellVel(i1, j1, k0)
	c001, c101 := cellVel(i0, j0, k1), cellVel(i1, j0, k1)
	c011, c111 := cellVel(i0, j1, k1), cellVel(i1, j1, k1)
	lerp := func(a, b vec.Vec3, t float64) vec.Vec3 { return a.Scale(1 - t).Add(b.Scale(t)) }
	c00 := lerp(c000, c100, tx)
	c10 := lerp(c010, c110, tx)
	c01 := lerp(c001, c101, tx)
	c11 := lerp(c011, c111, tx)
	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz)
}

// sampleScalar trilinearly interpolates a cell-centered scalar field
// at a world-space point (used to read density for spatial adaptivity).
func sampleScalar(s *grid.SparseArray, p vec.Vec3, dx float64) float64 {
	fi, fj, fk := grid.WorldToIndex3(p, dx)
	return s.SampleTrilinear(fi, fj, fk)
}

// Backtrace integrates each tracer backward through the deque with a
// two-stage midpoint per layer, accumulating a decayed-weighted
// reconstruction velocity:
//
//	u_rec = sum_k w_k * (u_reconstructed(p_k) + sum g)
//	w_k = advance_step * decay_rate^(depth-k-1-1/2*step)
//
// normalized by sum_k w_k so the result stays a velocity regardless of
// the retained depth.
//
// step coalesces multiple layers into one larger backtrace step when
// TemporalAdaptivity is enabled and the passive-velocity CFL test
// dt^2*|u_passive|^2 < (adaptive_rate*dx/step)^2 holds; step grows
// greedily, one extra layer at a time, re-testing the bound before
// folding the next layer in.
func Backtrace(deque *Deque, tracers []Tracer, dx float64, opt Options, driver *parallel.Driver) []Result {
	depth := deque.Len()
	results := make([]Result, len(tracers))
	driver.ForEachSimple(len(tracers), func(n int) {
		results[n] = backtraceOne(deque, tracers[n], dx, opt, depth)
	})
	return results
}

func backtraceOne(deque *Deque, tr Tracer, dx float64, opt Options, depth int) Result {
	if opt.SpatialAdaptivity {
		front := deque.Front()
		if front != nil {
			speed := sampleMAC(front.U1, tr.P, dx).Length()
			density := 1.0
			if front.D1 != nil {
				density = sampleScalar(front.D1, tr.P, dx)
			}
			if speed < opt.SlowVelocityCutoff && density < opt.LowDensityCutoff {
				return Result{Live: false}
			}
		}
	}

	p := tr.P
	var sumG vec.Vec3
	var urec vec.Vec3
	var sumW float64
	k := 0
	for k < depth {
		step := 1
		if opt.TemporalAdaptivity {
			step = coalesceStep(deque, k, p, dx, opt)
		}
		layer := deque.At(k)
		coalescedDt := layer.Dt
		for s := 1; s < step && k+s < depth; s++ {
			coalescedDt += deque.At(k + s).Dt
		}

		u0 := sampleMAC(layer.U0, p, dx)
		u1 := sampleMAC(layer.U1, p.Sub(u0.Scale(coalescedDt)), dx)
		back := p.Sub(u0.Add(u1).Scale(0.5 * coalescedDt))

		if layer.G != nil {
			sumG = sumG.Add(sampleMAC(layer.G, back, dx))
		}
		weight := float64(step) * math.Pow(opt.DecayRate, float64(depth-k-1)-0.5*float64(step))
		urec = urec.Add(sampleMAC(layer.Urecon, back, dx).Add(sumG).Scale(weight))
		sumW += weight

		p = back
		k += step
	}
	if sumW != 0 {
		urec = urec.Scale(1 / sumW)
	}
	return Result{Urec: urec, Live: true}
}

// coalesceStep grows the number of layers folded into one backtrace
// step while dt^2*|u_passive|^2 stays below (adaptive_rate*dx/step)^2,
// capped by the layers actually available from k. The passive velocity
// is read at the tracer's current backtrace position.
func coalesceStep(deque *Deque, k int, p vec.Vec3, dx float64, opt Options) int {
	step := 1
	for {
		layer := deque.At(k + step - 1)
		if layer == nil {
			break
		}
		speed := sampleMAC(layer.U1, p, dx).Length()
		bound := opt.AdaptiveRate * dx / float64(step)
		if layer.Dt*layer.Dt*speed*speed >= bound*bound {
			break
		}
		if k+step >= deque.Len() {
			break
		}
		step++
	}
	return step
}
