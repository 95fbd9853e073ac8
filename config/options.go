// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package config implements the JSON-loadable configuration surface:
// a flat, JSON-tagged struct with a Default constructor and a Validate
// pass that returns chk.Err-built configuration errors rather than
// panicking, since a bad config file is caller error, not a
// programmer-error invariant violation.
package config

import (
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/ryichando/shiokaze/vec"
)

// Options is the full simulation configuration.
type Options struct {
	// grid
	ResolutionX     int     `json:"resolutionX"`     // grid extent along x
	ResolutionY     int     `json:"resolutionY"`     // grid extent along y
	ResolutionZ     int     `json:"resolutionZ"`     // grid extent along z
	ResolutionScale float64 `json:"resolutionScale"` // multiplies every extent above

	// body forces
	Gravity        vec.Vec3 `json:"gravity"`        // constant body force
	BuoyancyFactor float64  `json:"buoyancyFactor"` // smoke/density buoyancy scale, 0 disables

	// pressure projection
	VolumeCorrection     bool    `json:"volumeCorrection"`     // enable the PI volume controller
	VolumeChangeTolRatio float64 `json:"volumeChangeTolRatio"` // trigger threshold
	CorrectionGain       float64 `json:"correctionGain"`       // k_p scale
	SurfaceTension       float64 `json:"surfaceTension"`       // kappa

	// FLIP
	APIC                bool    `json:"apic"`    // else PIC/FLIP blend only
	PICFLIP             float64 `json:"picflip"` // PIC/FLIP blend factor
	RKOrder             int     `json:"rkOrder"` // 1, 2, or 4
	Narrowband          int     `json:"narrowband"`
	MaxParticlesPerCell int     `json:"maxParticlesPerCell"`
	MinParticlesPerCell int     `json:"minParticlesPerCell"`
	Erosion             float64 `json:"erosion"`           // level-set erosion rate
	BulletMaximalTime   float64 `json:"bulletMaximalTime"` // seconds

	// ProjectionMethod selects how sim.Solver.Step removes divergence:
	// "pressure" (the default Poisson solve) or "streamfunction" (the
	// vector-potential solve that is divergence-free by construction).
	ProjectionMethod string `json:"projectionMethod"`

	// streamfunction projection
	DiffSolve bool `json:"diffSolve"` // difference-form streamfunction solve

	// BackwardFlip
	BFMaxLayer         int     `json:"bfMaxLayer"`
	BFMaxVelLayer      int     `json:"bfMaxVelLayer"`
	BFDecayRate        float64 `json:"bfDecayRate"`
	BFTemporalAdaptive bool    `json:"bfTemporalAdaptive"`
	BFSpatialAdaptive  bool    `json:"bfSpatialAdaptive"`
	BFAdaptiveRate     float64 `json:"bfAdaptiveRate"`
	BFInjectDiff       float64 `json:"bfInjectDiff"`
	BFHachisuka        bool    `json:"bfHachisuka"`
	BFAccumulative     bool    `json:"bfAccumulative"`
	BFRSample          int     `json:"bfRSample"`

	// advection
	MacCormack     bool `json:"macCormack"`     // else pure semi-Lagrangian
	WENO           bool `json:"weno"`           // use WENO interpolation
	WENOOrder      int  `json:"wenoOrder"`      // 4 or 6, only meaningful when WENO is set
	TrimNarrowBand int  `json:"trimNarrowBand"` // cells near the surface where MacCormack correction is skipped

	// parallelism
	MaximalThreads int `json:"maximalThreads"` // 0 lets parallel.Driver pick a default
}

// Default returns the documented defaults.
func Default() Options {
	return Options{
		ResolutionX:     64,
		ResolutionY:     32,
		ResolutionZ:     64,
		ResolutionScale: 1.0,

		Gravity: vec.Vec3{X: 0, Y: -9.8, Z: 0},

		VolumeCorrection:     true,
		VolumeChangeTolRatio: 0.03,
		CorrectionGain:       1.0,
		SurfaceTension:       0.0,

		APIC:                true,
		PICFLIP:             0.95,
		RKOrder:             2,
		Narrowband:          3,
		MaxParticlesPerCell: 6,
		MinParticlesPerCell: 6,
		Erosion:             0.5,
		BulletMaximalTime:   0.5,

		ProjectionMethod: "pressure",
		DiffSolve:        true,

		BFMaxLayer:     8,
		BFMaxVelLayer:  8,
		BFDecayRate:    0.9,
		BFAdaptiveRate: 1.0,
		BFRSample:      2,

		MacCormack:     true,
		WENO:           false,
		WENOOrder:      4,
		TrimNarrowBand: 1,
	}
}

// Load reads and JSON-unmarshals Options from path over the defaults
// (only keys present in the file override Default()'s values), then
// validates the result.
func Load(path string) (Options, error) {
	o := Default()
	f, err := os.Open(path)
	if err != nil {
		return o, chk.Err("config: cannot open %q: %v", path, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&o); err != nil {
		return o, chk.Err("config: cannot decode %q: %v", path, err)
	}
	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// Validate returns a chk.Err configuration error for every
// unsupported value combination: an unsupported RK order, an
// unsupported WENO order, temporal adaptivity combined with Hachisuka
// forward tracers, and an accumulative BackwardFlip buffer without
// temporal adaptivity.
func (o Options) Validate() error {
	switch o.ProjectionMethod {
	case "", "pressure", "streamfunction":
	default:
		return chk.Err("config: unsupported projectionMethod %q (must be \"pressure\" or \"streamfunction\")", o.ProjectionMethod)
	}
	switch o.RKOrder {
	case 1, 2, 4:
	default:
		return chk.Err("config: unsupported RK_Order %d (must be 1, 2 or 4)", o.RKOrder)
	}
	if o.WENO {
		switch o.WENOOrder {
		case 4, 6:
		default:
			return chk.Err("config: unsupported WENO order %d (must be 4 or 6)", o.WENOOrder)
		}
	}
	if o.BFTemporalAdaptive && o.BFHachisuka {
		return chk.Err("config: bfTemporalAdaptive and bfHachisuka cannot both be enabled")
	}
	if o.BFAccumulative && !o.BFTemporalAdaptive {
		return chk.Err("config: bfAccumulative requires bfTemporalAdaptive")
	}
	if o.ResolutionX <= 0 || o.ResolutionY <= 0 || o.ResolutionZ <= 0 {
		return chk.Err("config: resolution must be positive (got %d,%d,%d)", o.ResolutionX, o.ResolutionY, o.ResolutionZ)
	}
	return nil
}
