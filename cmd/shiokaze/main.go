// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/ryichando/shiokaze/config"
	"github.com/ryichando/shiokaze/scene"
	"github.com/ryichando/shiokaze/sim"
)

func main() {

	configPath := flag.String("config", "", "path to a JSON config file (defaults applied for any missing key)")
	sceneName := flag.String("scene", "dam-break-2d", "built-in scene name: hydrostatic-rest, dam-break-2d, single-vortex")
	steps := flag.Int("steps", 100, "number of steps to run")
	dt := flag.Float64("dt", 1.0/60.0, "fixed timestep in seconds")
	out := flag.String("out", "", "directory to write per-step diagnostics to (empty disables output)")
	verbose := flag.Bool("verbose", true, "print volume/particle-count diagnostics every 10 steps")
	flag.Parse()

	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	io.PfWhite("\nShiokaze -- hybrid FLIP/level-set fluid simulator\n\n")

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			chk.Panic("%v", err)
		}
	} else if err := cfg.Validate(); err != nil {
		chk.Panic("%v", err)
	}

	desc, ok := scene.ByName(*sceneName)
	if !ok {
		chk.Panic("unknown scene %q\n", *sceneName)
	}
	io.Pf("scene: %s\n", desc.Name)
	io.Pf("resolution: %dx%dx%d (scale %v)\n", cfg.ResolutionX, cfg.ResolutionY, cfg.ResolutionZ, cfg.ResolutionScale)
	io.Pf("projection: %s\n", cfg.ProjectionMethod)

	solver, err := sim.NewSolver(cfg, desc)
	if err != nil {
		chk.Panic("%v", err)
	}

	if *out != "" {
		if err := os.MkdirAll(*out, 0777); err != nil {
			chk.Panic("cannot create output directory %q: %v", *out, err)
		}
	}

	// diagnostics.log accumulates one line per step (step, time,
	// particle count, fluid volume); this CLI is a smoke-test driver,
	// not a visualization exporter, so a single flat text log is
	// enough.
	var diagnostics string

	for step := 0; step < *steps; step++ {
		if err := solver.Step(*dt); err != nil {
			chk.Panic("step %d failed: %v", step, err)
		}
		volume := solver.TotalVolume()
		if *verbose && step%10 == 0 {
			io.Pf("step %4d  t=%8.4f  particles=%6d  volume=%.6f\n",
				step, solver.Time, solver.Particles.NumParticles(), volume)
		}
		if *out != "" {
			diagnostics += io.Sf("%d\t%.6f\t%d\t%.8f\n", step, solver.Time, solver.Particles.NumParticles(), volume)
		}
	}

	if *out != "" {
		io.WriteFileSD(*out, "diagnostics.log", diagnostics)
	}

	io.PfGreen("\ndone: %d steps, t=%.4f\n", *steps, solver.Time)
}
