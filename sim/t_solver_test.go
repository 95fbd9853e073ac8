// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/config"
	"github.com/ryichando/shiokaze/scene"
)

// Test_solver_step_hydrostatic_rest runs the hydrostatic-rest scene
// at a coarse resolution: a solver built over it
// should step without error and should not blow up the fluid volume
// within a single step.
func Test_solver_step_hydrostatic_rest(tst *testing.T) {

	chk.PrintTitle("solver step on hydrostatic rest (coarse)")

	cfg := config.Default()
	cfg.ResolutionX = 8
	cfg.ResolutionY = 8
	cfg.ResolutionZ = 8
	cfg.ResolutionScale = 1.0
	cfg.BFMaxLayer = 0 // backflip disabled for this smoke test
	cfg.MaximalThreads = 1

	s, err := NewSolver(cfg, scene.HydrostaticRest())
	if err != nil {
		tst.Fatalf("NewSolver: %v", err)
	}
	if s.InitialVolume <= 0 {
		tst.Fatalf("expected a positive initial fluid volume, got %v", s.InitialVolume)
	}

	dt := 0.001
	if err := s.Step(dt); err != nil {
		tst.Fatalf("Step: %v", err)
	}
	if s.Time != dt {
		tst.Fatalf("expected Time to advance by dt, got %v", s.Time)
	}

	after := s.TotalVolume()
	if math.IsNaN(after) || math.IsInf(after, 0) {
		tst.Fatalf("expected a finite fluid volume after one step, got %v", after)
	}
	ratio := after / s.InitialVolume
	if ratio < 0.5 || ratio > 1.5 {
		tst.Errorf("expected fluid volume to stay roughly conserved over one small step, got ratio %v (initial %v, after %v)", ratio, s.InitialVolume, after)
	}
}

// Test_solver_step_streamfunction checks that the streamfunction
// projection method also steps cleanly.
func Test_solver_step_streamfunction(tst *testing.T) {

	chk.PrintTitle("solver step with streamfunction projection (coarse)")

	cfg := config.Default()
	cfg.ResolutionX = 6
	cfg.ResolutionY = 6
	cfg.ResolutionZ = 6
	cfg.ResolutionScale = 1.0
	cfg.BFMaxLayer = 0
	cfg.ProjectionMethod = "streamfunction"
	cfg.MaximalThreads = 1

	s, err := NewSolver(cfg, scene.HydrostaticRest())
	if err != nil {
		tst.Fatalf("NewSolver: %v", err)
	}
	if err := s.Step(0.001); err != nil {
		tst.Fatalf("Step: %v", err)
	}
}
