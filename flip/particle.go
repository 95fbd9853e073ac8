// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package flip implements the narrow-band FLIP/PIC/APIC particle
// engine: seeding, splat, advection, collision, pairwise correction,
// surface reconstruction, and the grid<->particle velocity transfer.
package flip

import (
	"github.com/google/uuid"

	"github.com/ryichando/shiokaze/vec"
)

// DefaultMass is the default particle mass (1/2^dim for sub-cell
// seeds), assigned on seeding and restored when a bullet particle is
// demoted back to FLIP.
const DefaultMass = 0.25

// DefaultRadiusFactor is the default particle radius as a fraction of
// dx assigned on seeding and bullet demotion (r = 0.25*dx).
const DefaultRadiusFactor = 0.25

// Particle is one FLIP particle: position p, velocity u, an APIC
// affine matrix C (one row per spatial direction), mass m, radius r,
// bullet classification state, a sizing value used by the reseeding
// heuristic, and a live-count used as a minimal-age gate before the
// particle becomes eligible for removal.
type Particle struct {
	// ID is a stable debug identity, assigned once at seeding and never
	// reused; it plays no role in simulation semantics, only in
	// logging/diagnostics (e.g. tracking a single particle's lifecycle
	// across steps in a trace).
	ID uuid.UUID

	P vec.Vec3
	U vec.Vec3

	// C holds the APIC affine velocity gradient, one 3-vector per
	// spatial direction (C[dim] is the gradient of the dim-th
	// velocity component); zero when APIC is disabled or the
	// particle is a bullet.
	C [3]vec.Vec3

	Mass float64
	R    float64

	Bullet     bool
	BulletTime float64

	SizingValue float64
	LiveCount   int
}

// Parameters bundles the FLIP engine's per-scene configuration knobs.
type Parameters struct {
	APIC                bool
	Narrowband          int
	FitParticleDist     float64
	RKOrder             int
	Erosion             float64
	MinParticlesPerCell int
	MaxParticlesPerCell int
	MinimalLiveCount    int
	CorrectStiff        float64
	BulletMaximalTime   float64
	DecayRate           float64
}

// DefaultParameters returns the engine defaults.
func DefaultParameters() Parameters {
	return Parameters{
		APIC:                true,
		Narrowband:          3,
		FitParticleDist:     1.0,
		RKOrder:             2,
		Erosion:             0.5,
		MinParticlesPerCell: 6,
		MaxParticlesPerCell: 6,
		MinimalLiveCount:    1,
		CorrectStiff:        0.5,
		BulletMaximalTime:   0.5,
		DecayRate:           0.1,
	}
}
