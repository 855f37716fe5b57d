package mdrun

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/mdlab/internal/config"
	"github.com/san-kum/mdlab/internal/stopsignal"
	"github.com/san-kum/mdlab/internal/storage"
)

// Engine is the unit-of-work collaborator a session drives. AdvanceOneUnit
// performs exactly one step; the session observes the stop registry only
// between calls, which bounds interruption latency to one unit of work.
type Engine interface {
	AdvanceOneUnit() (more bool, err error)
	Step() int64
	TargetSteps() int64
	SimTime() float64
	Progress() (step, target int64, etot float64)
	WriteCheckpoint() error
	Release() error
}

// SessionState is the lifecycle position of a session.
type SessionState int32

const (
	StateCreated SessionState = iota
	StateRunning
	StateCompleted
	StateInterrupted
	StateFailed
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateInterrupted:
		return "interrupted"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the live binding of one System to one Context. It moves through
// Created → Running → {Completed | Interrupted} → Closed; Closed is terminal.
// Run blocks the calling goroutine; the only concurrent actor is whoever
// sets the stop registry.
type Session struct {
	// mu guards state transitions; it is never held while the engine runs.
	mu    sync.Mutex
	state SessionState

	eng     Engine
	ctx     *Context
	reg     *stopsignal.Registry
	store   *storage.Store
	runName string
	def     *config.Definition
	log     *logrus.Entry
}

// Run drives the engine until natural completion or until a stop request is
// observed at a step boundary. Graceful interruption is a successful Status;
// the stop condition stays readable in the registry until the next launch.
// Calling Run again after Completed or Interrupted resumes where the engine
// left off. Run after Close or after an engine failure fails with
// ErrInvalidState.
func (s *Session) Run() Status {
	s.mu.Lock()
	switch s.state {
	case StateCreated, StateCompleted, StateInterrupted:
		// runnable
	case StateRunning:
		s.mu.Unlock()
		return statusFailed(fmt.Errorf("%w: session is already running", ErrInvalidState))
	default:
		st := s.state
		s.mu.Unlock()
		return statusFailed(fmt.Errorf("%w: cannot run a %s session", ErrInvalidState, st))
	}
	if err := s.ctx.beginRun(s); err != nil {
		s.mu.Unlock()
		return statusFailed(err)
	}
	s.state = StateRunning
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"step":   s.eng.Step(),
		"target": s.eng.TargetSteps(),
	}).Info("run started")
	start := time.Now()

	for {
		// Synchronization point: the one place a stop request is honored.
		if cond := s.reg.Get(); cond != stopsignal.None {
			if cond == stopsignal.NextCheckpoint {
				if err := s.eng.WriteCheckpoint(); err != nil {
					s.finish(StateFailed)
					return statusFailed(fmt.Errorf("%w: checkpoint on stop: %w", ErrEngine, err))
				}
			}
			s.finish(StateInterrupted)
			s.log.WithFields(logrus.Fields{
				"step":      s.eng.Step(),
				"condition": cond.String(),
			}).Warn("run interrupted")
			return statusOK(fmt.Sprintf("interrupted at step %d (%s)", s.eng.Step(), cond))
		}

		more, err := s.eng.AdvanceOneUnit()
		if err != nil {
			s.finish(StateFailed)
			return statusFailed(fmt.Errorf("%w: %w", ErrEngine, err))
		}
		if !more {
			break
		}
	}

	if err := s.eng.WriteCheckpoint(); err != nil {
		s.finish(StateFailed)
		return statusFailed(fmt.Errorf("%w: final checkpoint: %w", ErrEngine, err))
	}

	s.finish(StateCompleted)
	s.log.WithFields(logrus.Fields{
		"step":    s.eng.Step(),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("run completed")
	return statusOK(fmt.Sprintf("completed %d steps", s.eng.Step()))
}

func (s *Session) finish(st SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.ctx.endRun(s)
}

// Close releases the engine resources bound at launch and records run
// metadata. It is idempotent: every call after the first succeeds with no
// further side effects. Close never mutates the stop registry, and it is
// safe to defer on every path, including after a failed Run.
func (s *Session) Close() Status {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return statusOK("already closed")
	case StateRunning:
		s.mu.Unlock()
		return statusFailed(fmt.Errorf("%w: cannot close a running session", ErrInvalidState))
	}
	prev := s.state
	s.state = StateClosed
	s.mu.Unlock()

	// Best effort: report the first failure but keep releasing.
	var firstErr error

	if err := s.eng.Release(); err != nil {
		firstErr = err
	}

	meta := &storage.RunMetadata{
		Name:        s.runName,
		System:      s.def.Name,
		Updated:     time.Now(),
		Seed:        s.def.Seed,
		Dt:          s.def.Dt,
		Steps:       s.eng.Step(),
		SimTime:     s.eng.SimTime(),
		Interrupted: prev == StateInterrupted,
	}
	if meta.Interrupted {
		meta.StopReason = s.reg.Get().String()
	}
	if err := s.store.WriteMetadata(meta); err != nil && firstErr == nil {
		firstErr = err
	}

	if firstErr != nil {
		return statusFailed(fmt.Errorf("close %s: %w", s.runName, firstErr))
	}
	s.log.Info("session closed")
	return statusOK("closed")
}

// State reports the current lifecycle position.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress exposes the engine's step counter and total energy for concurrent
// observers such as the live monitor.
func (s *Session) Progress() (step, target int64, etot float64) {
	return s.eng.Progress()
}
