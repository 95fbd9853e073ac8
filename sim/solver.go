// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"math"

	"github.com/ryichando/shiokaze/advect"
	"github.com/ryichando/shiokaze/backflip"
	"github.com/ryichando/shiokaze/config"
	"github.com/ryichando/shiokaze/flip"
	"github.com/ryichando/shiokaze/grid"
	"github.com/ryichando/shiokaze/levelset"
	"github.com/ryichando/shiokaze/parallel"
	"github.com/ryichando/shiokaze/project"
	"github.com/ryichando/shiokaze/redistance"
	"github.com/ryichando/shiokaze/scene"
	"github.com/ryichando/shiokaze/vec"
)

// Solver wires a scene.Description and config.Options into the
// per-step pipeline: advect level set -> advect FLIP particles ->
// rebuild level set from particles and redistance -> advect face
// velocity -> splat particle momentum onto faces -> combine with grid
// -> add body forces -> projection -> extend velocity and level set
// into narrow band -> update particle velocities (PIC/FLIP/APIC).
type Solver struct {
	Config config.Options
	Scene  scene.Description
	Source scene.StepSource
	Driver *parallel.Driver

	Cell grid.Shape3
	Dx   float64

	Fluid     *grid.SparseArray // cell-centered, combined with solid
	SolidCell *grid.SparseArray // cell-centered solid level set (static)
	SolidNode *grid.SparseArray // nodal solid level set (static)
	Velocity  *grid.MACArray
	Density   *grid.SparseArray // cell-centered scalar density (smoke/buoyancy supplement)

	Particles *flip.Engine
	Pressure  *project.PressureProjector
	Stream    *project.StreamfunctionProjector
	Tracker   *Tracker

	Backflip *backflip.Deque
	Tracers  *backflip.Tracers

	Time          float64
	InitialVolume float64

	advectOpt advect.Options
}

// NewSolver allocates the domain described by cfg, samples desc's
// initial-condition callbacks onto it, and precomputes everything that
// depends only on static geometry (the streamfunction projector's
// C/Z/D precompute, the solid level sets).
func NewSolver(cfg config.Options, desc scene.Description) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := int(math.Round(float64(cfg.ResolutionX) * cfg.ResolutionScale))
	h := int(math.Round(float64(cfg.ResolutionY) * cfg.ResolutionScale))
	d := int(math.Round(float64(cfg.ResolutionZ) * cfg.ResolutionScale))
	cell := grid.Shape3{W: w, H: h, D: d}
	dx := cell.Dx()
	driver := parallel.NewDriver()
	if cfg.MaximalThreads > 0 {
		driver.SetMaximalThreads(cfg.MaximalThreads)
	}

	s := &Solver{
		Config: cfg,
		Scene:  desc,
		Driver: driver,
		Cell:   cell,
		Dx:     dx,
	}

	s.SolidCell = sampleCell(cell, dx, desc.SolidAt)
	s.SolidNode = sampleNodal(cell.Nodal(), dx, desc.SolidAt)

	bandWidth := float64(cfg.Narrowband + 1)
	rawFluid := sampleCell(cell, dx, desc.FluidAt)
	s.Fluid = levelset.Combine(s.SolidCell, rawFluid, bandWidth, dx)
	s.Fluid = redistance.Redistance(s.Fluid, dx, cfg.Narrowband+1, driver)
	s.Tracker = &Tracker{Dx: dx, Narrowband: cfg.Narrowband + 1, Driver: driver}
	s.advectOpt = advectOptionsFromConfig(cfg)
	s.Tracker.AdvectOpt = s.advectOpt
	s.Tracker.Rebuild(s.Fluid)

	s.Velocity = grid.NewMACArray(cell, dx)
	for dim := 0; dim < 3; dim++ {
		dm := dim
		faceShape := cell.Face(dm)
		for i := 0; i < faceShape.W; i++ {
			for j := 0; j < faceShape.H; j++ {
				for k := 0; k < faceShape.D; k++ {
					p := grid.FacePos3(dm, i, j, k, dx)
					s.Velocity.Set(dm, i, j, k, desc.VelocityAt(p).Get(dm))
				}
			}
		}
	}

	s.Density = sampleCell(cell, dx, desc.DensityAt)

	flipParam := flip.DefaultParameters()
	flipParam.APIC = cfg.APIC
	flipParam.Narrowband = cfg.Narrowband
	flipParam.RKOrder = cfg.RKOrder
	flipParam.Erosion = cfg.Erosion
	flipParam.MaxParticlesPerCell = cfg.MaxParticlesPerCell
	flipParam.MinParticlesPerCell = cfg.MinParticlesPerCell
	flipParam.BulletMaximalTime = cfg.BulletMaximalTime
	flipParam.DecayRate = cfg.Erosion
	s.Particles = flip.NewEngine(cell, dx, flipParam, driver)

	s.Pressure = project.NewPressureProjector(dx, 0, driver)
	s.Pressure.SurfaceTension = cfg.SurfaceTension
	s.Pressure.Volume = project.VolumeCorrection{
		Enabled:  cfg.VolumeCorrection,
		Gain:     cfg.CorrectionGain,
		TolRatio: cfg.VolumeChangeTolRatio,
	}

	s.Stream = project.NewStreamfunctionProjector(cell, dx)
	s.Stream.DiffSolve = cfg.DiffSolve
	s.Stream.Precompute(s.SolidNode)

	s.InitialVolume = s.TotalVolume()
	s.Pressure.Volume.InitialVolume = s.InitialVolume
	s.Pressure.Volume.TargetVolume = s.InitialVolume

	if cfg.BFMaxLayer > 0 {
		s.Backflip = backflip.NewDeque(cfg.BFMaxLayer, cfg.BFMaxVelLayer)
		s.Backflip.Accumulative = cfg.BFAccumulative
		rSample := cfg.BFRSample
		if rSample < 1 {
			rSample = 1
		}
		s.Tracers = backflip.NewTracers(cell, dx, rSample)
		s.Tracers.Seed(s.velocityAt)
	}

	return s, nil
}

// velocityAt trilinearly samples the current MAC velocity field at a
// world-space point, the shared sampler used by FLIP advection,
// bullet classification, and the BackwardFlip tracer lattice.
func (s *Solver) velocityAt(p vec.Vec3) vec.Vec3 {
	return vec.Vec3{
		X: s.sampleFace(0, p),
		Y: s.sampleFace(1, p),
		Z: s.sampleFace(2, p),
	}
}

func (s *Solver) sampleFace(dim int, p vec.Vec3) float64 {
	fi, fj, fk := p.X/s.Dx, p.Y/s.Dx, p.Z/s.Dx
	if dim != 0 {
		fi -= 0.5
	}
	if dim != 1 {
		fj -= 0.5
	}
	if dim != 2 {
		fk -= 0.5
	}
	return s.Velocity.Faces[dim].SampleTrilinear(fi, fj, fk)
}

// fluidAt trilinearly samples the current fluid level set at a
// world-space point.
func (s *Solver) fluidAt(p vec.Vec3) float64 {
	fi, fj, fk := grid.WorldToIndex3(p, s.Dx)
	return s.Fluid.SampleTrilinear(fi, fj, fk)
}

// Step advances the simulation by dt.
func (s *Solver) Step(dt float64) error {
	cfg := s.Config

	// advect level set
	advectedFluid := s.Tracker.Advect(s.Fluid, s.Velocity, dt)
	s.Fluid = levelset.Combine(s.SolidCell, advectedFluid, float64(cfg.Narrowband+1), s.Dx)
	s.Tracker.Rebuild(s.Fluid)

	// advect FLIP particles
	s.Particles.Seed(s.Fluid, s.Scene.SolidAt, s.Velocity)
	s.Particles.Advect(s.Scene.SolidAt, s.velocityAt, dt)
	s.Particles.MarkBullet(s.Time, s.fluidAt, s.velocityAt)
	s.Particles.Correct(s.Fluid)

	// rebuild level set from particles and redistance
	s.Particles.ToLevelSet(s.Scene.SolidAt, s.Fluid)
	s.Fluid = levelset.Combine(s.SolidCell, s.Fluid, float64(cfg.Narrowband+1), s.Dx)
	s.Fluid = redistance.Redistance(s.Fluid, s.Dx, cfg.Narrowband+1, s.Driver)
	s.Tracker.Rebuild(s.Fluid)

	// advect face velocity
	advectedVel := advect.AdvectVectorMacCormack(s.Velocity, s.Velocity, s.Fluid, s.Dx, dt, s.advectOpt, s.Driver)

	// splat particle momentum onto faces, combine with grid
	momentum, mass := s.Particles.Splat()
	velocity := combineVelocity(advectedVel, momentum, mass)

	preProjection := copyMAC(velocity)

	// add body forces
	s.applyBodyForces(velocity, dt)
	if s.Source.Add != nil {
		s.applySource(velocity, dt)
	}

	forced := copyMAC(velocity)

	// projection
	a, rho := s.buildFractions()
	currentVolume := s.TotalVolume()
	s.Pressure.Dt = dt
	switch cfg.ProjectionMethod {
	case "streamfunction":
		edgeMass := s.buildEdgeMass()
		newVel := s.Stream.Solve(a, rho, velocity, edgeMass)
		if cfg.VolumeCorrection {
			s.Pressure.Project(s.Fluid, a, rho, newVel, currentVolume)
		}
		velocity = newVel
	default:
		s.Pressure.Project(s.Fluid, a, rho, velocity, currentVolume)
	}

	// extend velocity and level set into narrow band
	extrapolateVelocity(velocity, cfg.Narrowband+1)
	s.Fluid = levelset.Extrapolate(s.SolidCell, s.Fluid, s.Dx, levelset.DefaultExtrapolateOptions())

	s.Velocity = velocity

	// update particle velocities (PIC/FLIP/APIC)
	s.Particles.Update(preProjection, velocity, dt, cfg.Gravity, cfg.PICFLIP)

	if s.Backflip != nil {
		s.registerBackwardFlip(forced, velocity, dt)
	}

	s.Time += dt
	return nil
}

// applyBodyForces adds the configured gravity and, when
// BuoyancyFactor is nonzero, a buoyant force
// BuoyancyFactor*(density-ambient) along the up axis (Y), applied at
// the same point as gravity so a smoke scene needs no separate
// simulator type.
func (s *Solver) applyBodyForces(velocity *grid.MACArray, dt float64) {
	g := s.Config.Gravity
	buoyancy := s.Config.BuoyancyFactor
	for dim := 0; dim < 3; dim++ {
		d := dim
		gComponent := g.Get(d)
		velocity.Faces[d].ParallelActives(func(i, j, k int, u float64) {
			v := u + dt*gComponent
			if d == 1 && buoyancy != 0 {
				lo := [3]int{i, j, k}
				lo[1]--
				rho := 0.5 * (s.densityAtCell(i, j, k) + s.densityAtCell(lo[0], lo[1], lo[2]))
				v += dt * buoyancy * rho
			}
			velocity.Faces[d].Set(i, j, k, v)
		})
	}
}

func (s *Solver) densityAtCell(i, j, k int) float64 {
	if !s.Density.Shape().Inside(i, j, k) {
		return 0
	}
	return s.Density.Get(i, j, k)
}

// applySource evaluates the scene's per-step source hook at every
// active face (velocity) and cell (density). Dust particles are
// realized by lowering the fluid level set at the source cell instead
// of injecting particles directly: flip.Engine exposes no point-seed
// API, so the next Seed pass picks new particles up from the
// narrowband it recomputes against the updated level set.
func (s *Solver) applySource(velocity *grid.MACArray, dt float64) {
	src := s.Source
	for dim := 0; dim < 3; dim++ {
		d := dim
		velocity.Faces[d].ParallelActives(func(i, j, k int, u float64) {
			p := grid.FacePos3(d, i, j, k, s.Dx)
			du, _, _ := src.Apply(p, s.Time, dt)
			velocity.Faces[d].Set(i, j, k, u+du.Get(d))
		})
	}
	s.Density.ParallelActives(func(i, j, k int, dens float64) {
		p := grid.CellCenter3(i, j, k, s.Dx)
		_, dd, n := src.Apply(p, s.Time, dt)
		if dd != 0 {
			s.Density.Set(i, j, k, dens+dd)
		}
		if n > 0 {
			s.Fluid.Set(i, j, k, -s.Dx)
		}
	})
}

// registerBackwardFlip folds this step's before/after-projection
// velocity and the implied pressure-gradient term into the
// BackwardFlip deque: g is exactly the per-face quantity
// projection subtracted off (dt*grad(p)/rho), recovered here as
// preProjection-postProjection since PressureProjector/
// StreamfunctionProjector both apply that term directly into the face
// velocity rather than returning it separately.
func (s *Solver) registerBackwardFlip(preProjection, postProjection *grid.MACArray, dt float64) {
	g := grid.NewMACArray(s.Cell, s.Dx)
	for dim := 0; dim < 3; dim++ {
		d := dim
		preProjection.Faces[d].ParallelActives(func(i, j, k int, before float64) {
			g.Set(d, i, j, k, before-postProjection.Get(d, i, j, k))
		})
	}
	layer := &backflip.Layer{
		U0:     preProjection,
		U1:     postProjection,
		Urecon: postProjection,
		G:      g,
		D0:     s.Density,
		D1:     s.Density,
		Dt:     dt,
		Time:   s.Time,
	}
	s.Backflip.Register(layer)

	cfg := s.Config
	if cfg.BFHachisuka {
		velocity0 := s.velocityAt
		s.Tracers.Advance(velocity0, velocity0, func(p vec.Vec3) float64 {
			return sampleMACMagnitude(g, p, s.Dx)
		}, dt, cfg.BFMaxVelLayer, s.velocityAt, s.Driver)
		return
	}

	opt := backflip.Options{
		DecayRate:          cfg.BFDecayRate,
		TemporalAdaptivity: cfg.BFTemporalAdaptive,
		AdaptiveRate:       cfg.BFAdaptiveRate,
		SpatialAdaptivity:  cfg.BFSpatialAdaptive,
		SlowVelocityCutoff: 1e-3,
		LowDensityCutoff:   0.5,
	}
	results := backflip.Backtrace(s.Backflip, s.Tracers.Points(), s.Dx, opt, s.Driver)
	recon := backflip.Reconstruct(s.Tracers.Points(), results, s.Cell, s.Dx, postProjection, cfg.BFInjectDiff)
	// the tracer lattice is seeded r_sample^3-per-cell (Tracers.Seed),
	// dense enough that every face is touched by at least one live
	// tracer under ordinary CFL-bounded motion, so the reconstruction
	// is used directly as the anti-dissipative replacement velocity
	// rather than blended by an (unavailable) per-face coverage mask.
	s.Velocity = recon
}

// sampleMACMagnitude samples the three face components of g at the
// world-space point p and returns the length of the resulting vector,
// the scalar the Hachisuka forward-tracer accumulator reads.
func sampleMACMagnitude(g *grid.MACArray, p vec.Vec3, dx float64) float64 {
	fi, fj, fk := grid.WorldToIndex3(p, dx)
	gx := g.Faces[0].SampleTrilinear(fi+0.5, fj, fk)
	gy := g.Faces[1].SampleTrilinear(fi, fj+0.5, fk)
	gz := g.Faces[2].SampleTrilinear(fi, fj, fk+0.5)
	return vec.Vec3{X: gx, Y: gy, Z: gz}.Length()
}

// combineVelocity merges the splat with the grid advection: a face's
// velocity is the splatted particle momentum/mass where particles
// claim that face (mass above a small floor), and the grid-advected
// velocity everywhere else.
func combineVelocity(advected, momentum, mass *grid.MACArray) *grid.MACArray {
	const massFloor = 1e-8
	out := grid.NewMACArray(advected.Cell, advected.Dx)
	for dim := 0; dim < 3; dim++ {
		d := dim
		advected.Faces[d].ParallelActives(func(i, j, k int, v float64) {
			m := mass.Get(d, i, j, k)
			if m > massFloor {
				out.Faces[d].Set(i, j, k, momentum.Get(d, i, j, k)/m)
				return
			}
			out.Faces[d].Set(i, j, k, v)
		})
	}
	return out
}

func copyMAC(v *grid.MACArray) *grid.MACArray {
	out := grid.NewMACArray(v.Cell, v.Dx)
	v.ForEachFace(func(dim, i, j, k int, value float64) { out.Set(dim, i, j, k, value) })
	return out
}

// extrapolateVelocity extends each face-velocity component outward by
// n cells via constant (nearest-neighbor) dilation, so the narrow band
// always sees a defined velocity.
func extrapolateVelocity(v *grid.MACArray, n int) {
	for dim := 0; dim < 3; dim++ {
		d := dim
		v.Faces[d].DilateN(n, func(i, j, k int, neighborValue float64) (float64, bool) {
			return neighborValue, true
		})
	}
}

// buildFractions assembles the solid-area (A) and fluid-density (rho)
// MAC fraction bundles from the static nodal solid level set and the
// current cell-centered fluid level set (sampled at nodes by trilinear
// interpolation of the cell field).
func (s *Solver) buildFractions() (a, rho *grid.MACArray) {
	nodeFluid := s.nodalFluid()
	a = grid.NewMACArray(s.Cell, s.Dx)
	rho = grid.NewMACArray(s.Cell, s.Dx)
	sc := func(n [3]int) float64 { return s.SolidNode.Get(n[0], n[1], n[2]) }
	fc := func(n [3]int) float64 { return nodeFluid.Get(n[0], n[1], n[2]) }
	for dim := 0; dim < 3; dim++ {
		d := dim
		faceShape := s.Cell.Face(d)
		for i := 0; i < faceShape.W; i++ {
			for j := 0; j < faceShape.H; j++ {
				for k := 0; k < faceShape.D; k++ {
					n0, n1, n2, n3 := grid.FaceCornerNodes(d, i, j, k)
					a.Set(d, i, j, k, grid.SolidAreaFraction(sc(n0), sc(n1), sc(n2), sc(n3), grid.DefaultEpsSolid))
					rho.Set(d, i, j, k, grid.FluidDensityFraction(fc(n0), fc(n1), fc(n2), fc(n3), grid.DefaultEpsFluid))
				}
			}
		}
	}
	return a, rho
}

// buildEdgeMass samples the current fluid density fraction at each
// edge location, the corner-mass input the streamfunction projector's
// Solve needs: an edge's mass is a binary fluid/air membership test
// (clamped nonzero) at the edge's own world-space location, since
// there is no separate per-edge density sample.
func (s *Solver) buildEdgeMass() *grid.EdgeArray {
	nodeFluid := s.nodalFluid()
	e := grid.NewEdgeArray(s.Cell, s.Dx)
	for dim := 0; dim < 3; dim++ {
		d := dim
		edgeShape := s.Cell.Edge(d)
		for i := 0; i < edgeShape.W; i++ {
			for j := 0; j < edgeShape.H; j++ {
				for k := 0; k < edgeShape.D; k++ {
					p := edgePos3(d, i, j, k, s.Dx)
					fi, fj, fk := grid.WorldToIndex3(p, s.Dx)
					v := nodeFluid.SampleTrilinear(fi, fj, fk)
					frac := 0.0
					if v < 0 {
						frac = 1.0
					}
					e.Set(d, i, j, k, grid.ClampFractionNonzero(frac, grid.DefaultEpsFluid))
				}
			}
		}
	}
	return e
}

// nodalFluid resamples the cell-centered fluid level set onto the
// nodal grid by trilinear interpolation, the corner-value source both
// buildFractions and buildEdgeMass need.
func (s *Solver) nodalFluid() *grid.SparseArray {
	nodal := s.Cell.Nodal()
	out := grid.NewSparseArray(nodal)
	for i := 0; i < nodal.W; i++ {
		for j := 0; j < nodal.H; j++ {
			for k := 0; k < nodal.D; k++ {
				p := grid.NodePos3(i, j, k, s.Dx)
				fi, fj, fk := grid.WorldToIndex3(p, s.Dx)
				out.Set(i, j, k, s.Fluid.SampleTrilinear(fi, fj, fk))
			}
		}
	}
	return out
}

// edgePos3 returns the world-space position of edge (dim,i,j,k): the
// node position shifted by half a cell along dim, the complement of
// grid.FacePos3's "+0.5*dx*(1-e_dim)".
func edgePos3(dim, i, j, k int, dx float64) vec.Vec3 {
	p := vec.Vec3{X: dx * float64(i), Y: dx * float64(j), Z: dx * float64(k)}
	switch dim {
	case 0:
		p.X += 0.5 * dx
	case 1:
		p.Y += 0.5 * dx
	case 2:
		p.Z += 0.5 * dx
	}
	return p
}

// TotalVolume sums levelset.CellVolume over every cell from the
// current nodal-resampled fluid field, the volume measurement
// pressure projection's VolumeCorrection controller consumes.
func (s *Solver) TotalVolume() float64 {
	nodeFluid := s.nodalFluid()
	cellDx3 := s.Dx * s.Dx * s.Dx
	total := 0.0
	for i := 0; i < s.Cell.W; i++ {
		for j := 0; j < s.Cell.H; j++ {
			for k := 0; k < s.Cell.D; k++ {
				var c [8]float64
				c[0] = nodeFluid.Get(i, j, k)
				c[1] = nodeFluid.Get(i+1, j, k)
				c[2] = nodeFluid.Get(i+1, j+1, k)
				c[3] = nodeFluid.Get(i, j+1, k)
				c[4] = nodeFluid.Get(i, j, k+1)
				c[5] = nodeFluid.Get(i+1, j, k+1)
				c[6] = nodeFluid.Get(i+1, j+1, k+1)
				c[7] = nodeFluid.Get(i, j+1, k+1)
				total += levelset.CellVolume(c) * cellDx3
			}
		}
	}
	return total
}

// advectOptionsFromConfig maps config.Options onto advect.Options.
func advectOptionsFromConfig(cfg config.Options) advect.Options {
	scheme := advect.Bilinear
	if cfg.WENO {
		if cfg.WENOOrder == 6 {
			scheme = advect.WENO6
		} else {
			scheme = advect.WENO4
		}
	}
	return advect.Options{
		Scheme:         scheme,
		UseMacCormack:  cfg.MacCormack,
		TrimNarrowband: cfg.TrimNarrowBand,
	}
}

// sampleCell samples fn at every cell center onto a fully active dense
// SparseArray over shape, used to materialize a scene's callback-form
// initial condition onto the grid.
func sampleCell(shape grid.Shape3, dx float64, fn func(p vec.Vec3) float64) *grid.SparseArray {
	out := grid.NewSparseArray(shape)
	for i := 0; i < shape.W; i++ {
		for j := 0; j < shape.H; j++ {
			for k := 0; k < shape.D; k++ {
				out.Set(i, j, k, fn(grid.CellCenter3(i, j, k, dx)))
			}
		}
	}
	return out
}

// sampleNodal samples fn at every node onto a fully active dense
// SparseArray over shape (shape must already be the nodal shape).
func sampleNodal(shape grid.Shape3, dx float64, fn func(p vec.Vec3) float64) *grid.SparseArray {
	out := grid.NewSparseArray(shape)
	for i := 0; i < shape.W; i++ {
		for j := 0; j < shape.H; j++ {
			for k := 0; k < shape.D; k++ {
				out.Set(i, j, k, fn(grid.NodePos3(i, j, k, dx)))
			}
		}
	}
	return out
}
