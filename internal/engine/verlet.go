package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/mdlab/internal/compute"
	"github.com/san-kum/mdlab/internal/config"
	"github.com/san-kum/mdlab/internal/storage"
)

// Params configures one engine binding for a launch.
type Params struct {
	Def     *config.Definition
	Store   *storage.Store
	RunName string
	// Append continues the latest trajectory part instead of starting a new one.
	Append bool
	// StepsOverride replaces the definition's nsteps for this run when >= 0.
	// The override counts from the current step, so continued runs extend the
	// trajectory by that many steps.
	StepsOverride int64
	// Extra holds launch tokens not recognized by the control plane. The
	// engine accepts "-v" (per-frame debug logging) and rejects anything else.
	Extra []string
}

// Verlet advances a 1-D harmonic chain with the velocity Verlet scheme.
// It owns the trajectory writer and checkpoint for its run and is the
// concrete collaborator behind a session's step loop. Not safe for
// concurrent use; Progress is the one method other goroutines may call.
type Verlet struct {
	def     *config.Definition
	backend compute.Backend
	store   *storage.Store
	runName string
	traj    *storage.TrajectoryWriter

	pos    []float64
	vel    []float64
	forces []float64

	step    int64
	target  int64
	simTime float64
	epot    float64
	ekin    float64

	// Published for concurrent observers (live monitor).
	curStep atomic.Int64
	curEtot atomic.Uint64

	verbose  bool
	released bool
	log      *logrus.Entry
}

// New binds an engine to a run directory, restoring the checkpoint when one
// exists so the new run extends the stored trajectory. On error nothing is
// left open.
func New(p Params) (*Verlet, error) {
	e := &Verlet{
		def:     p.Def,
		store:   p.Store,
		runName: p.RunName,
		log:     logrus.WithField("run", p.RunName),
	}

	for _, tok := range p.Extra {
		switch tok {
		case "-v":
			e.verbose = true
		default:
			return nil, fmt.Errorf("unknown engine option %q", tok)
		}
	}

	if err := p.Store.Init(); err != nil {
		return nil, err
	}

	cpt, err := readCheckpoint(p.Store.CheckpointPath(p.RunName))
	switch {
	case err != nil:
		return nil, err
	case cpt != nil:
		if len(cpt.Positions) != p.Def.Particles {
			return nil, fmt.Errorf("checkpoint has %d particles, definition has %d",
				len(cpt.Positions), p.Def.Particles)
		}
		e.pos = cpt.Positions
		e.vel = cpt.Velocities
		e.step = cpt.Step
		e.simTime = cpt.Time
		e.log.WithFields(logrus.Fields{"step": e.step, "time": e.simTime}).
			Info("restored checkpoint")
	default:
		e.pos, e.vel = initialState(p.Def)
	}

	steps := p.Def.Steps
	if p.StepsOverride >= 0 {
		steps = p.StepsOverride
	}
	e.target = e.step + steps

	e.backend = compute.AutoSelect()
	e.forces = e.backend.ChainForces(e.pos, p.Def.SpringK, p.Def.Spacing)
	e.computeEnergies()
	e.publishProgress()

	traj, err := p.Store.OpenTrajectory(p.RunName, p.Append)
	if err != nil {
		e.backend.Cleanup()
		return nil, err
	}
	e.traj = traj

	e.log.WithFields(logrus.Fields{
		"backend": e.backend.Name(),
		"steps":   steps,
		"target":  e.target,
		"append":  p.Append,
	}).Info("engine ready")

	return e, nil
}

// initialState places particles on a lattice and draws velocities from a
// seeded Maxwell-Boltzmann-like distribution, so a fresh run is fully
// determined by its definition.
func initialState(def *config.Definition) (pos, vel []float64) {
	pos = make([]float64, def.Particles)
	vel = make([]float64, def.Particles)

	rng := rand.New(rand.NewSource(def.Seed))
	scale := math.Sqrt(def.Temperature / def.Mass)
	for i := range pos {
		pos[i] = float64(i) * def.Spacing
		vel[i] = rng.NormFloat64() * scale
	}
	return pos, vel
}

// AdvanceOneUnit performs one integration step, the engine's unit of work.
// It returns false once the target step count is reached. Callers observe
// stop requests between calls, never during one.
func (e *Verlet) AdvanceOneUnit() (bool, error) {
	if e.released {
		return false, fmt.Errorf("engine already released")
	}
	if e.step >= e.target {
		return false, nil
	}

	dt := e.def.Dt
	invMass := 1.0 / e.def.Mass

	for i := range e.pos {
		e.vel[i] += 0.5 * e.forces[i] * invMass * dt
		e.pos[i] += e.vel[i] * dt
	}
	e.forces = e.backend.ChainForces(e.pos, e.def.SpringK, e.def.Spacing)
	for i := range e.vel {
		e.vel[i] += 0.5 * e.forces[i] * invMass * dt
	}

	e.step++
	e.simTime += dt
	e.computeEnergies()
	e.publishProgress()

	if math.IsNaN(e.epot) || math.IsInf(e.epot, 0) {
		return false, fmt.Errorf("numerically unstable at step %d", e.step)
	}

	if e.step%e.def.OutputEvery == 0 {
		if err := e.traj.WriteFrame(e.step, e.simTime, e.epot, e.ekin); err != nil {
			return false, fmt.Errorf("write frame: %w", err)
		}
		if e.verbose {
			e.log.WithFields(logrus.Fields{
				"step": e.step,
				"epot": e.epot,
				"ekin": e.ekin,
			}).Debug("frame")
		}
	}

	return e.step < e.target, nil
}

func (e *Verlet) computeEnergies() {
	k := e.def.SpringK
	a := e.def.Spacing

	epot := 0.0
	for i := 0; i < len(e.pos)-1; i++ {
		dx := e.pos[i+1] - e.pos[i] - a
		epot += 0.5 * k * dx * dx
	}

	ekin := 0.0
	for _, v := range e.vel {
		ekin += 0.5 * e.def.Mass * v * v
	}

	e.epot, e.ekin = epot, ekin
}

func (e *Verlet) publishProgress() {
	e.curStep.Store(e.step)
	e.curEtot.Store(math.Float64bits(e.epot + e.ekin))
}

func (e *Verlet) Step() int64        { return e.step }
func (e *Verlet) TargetSteps() int64 { return e.target }
func (e *Verlet) SimTime() float64   { return e.simTime }

func (e *Verlet) Energies() (epot, ekin float64) {
	return e.epot, e.ekin
}

// Progress reports the current step, target, and total energy. Safe to call
// from other goroutines while the engine is advancing.
func (e *Verlet) Progress() (step, target int64, etot float64) {
	return e.curStep.Load(), e.target, math.Float64frombits(e.curEtot.Load())
}

// Positions returns a copy of the particle positions.
func (e *Verlet) Positions() []float64 {
	out := make([]float64, len(e.pos))
	copy(out, e.pos)
	return out
}

// WriteCheckpoint persists the continuation state for the run.
func (e *Verlet) WriteCheckpoint() error {
	return writeCheckpoint(e.store.CheckpointPath(e.runName), &checkpointData{
		System:     e.def.Name,
		Step:       e.step,
		Time:       e.simTime,
		Positions:  e.pos,
		Velocities: e.vel,
	})
}

// Release flushes and closes the trajectory and frees the backend. Safe to
// call more than once; only the first call does work.
func (e *Verlet) Release() error {
	if e.released {
		return nil
	}
	e.released = true

	err := e.traj.Close()
	e.backend.Cleanup()
	return err
}
