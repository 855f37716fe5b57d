package stopsignal

import "sync/atomic"

// Condition is the kind of stop currently requested for the running
// simulation, if any.
type Condition int32

const (
	// None means no stop has been requested.
	None Condition = iota
	// NextCheckpoint requests a graceful stop: the engine finishes the
	// current step, writes a checkpoint, and the run can be continued later.
	NextCheckpoint
	// Immediate requests a stop without completing the current step.
	// Continuation of the run is not guaranteed.
	Immediate
)

func (c Condition) String() string {
	switch c {
	case None:
		return "none"
	case NextCheckpoint:
		return "next-checkpoint"
	case Immediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// Registry holds the pending stop condition for a simulation process.
//
// Set and Get are a single atomic load/store: no allocation, no locks, so
// they are safe to call from the goroutine draining an os/signal channel
// while a run is in flight. Last write wins; no ordering between kinds is
// enforced.
//
// The registry is cleared only when a new session is launched, never by a
// run. A run that stopped on a condition leaves it readable, so callers can
// distinguish an interrupted run from one that completed naturally.
type Registry struct {
	cond atomic.Int32
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Set records c as the pending stop condition, overwriting any prior request.
func (r *Registry) Set(c Condition) {
	r.cond.Store(int32(c))
}

// Get returns the pending stop condition without modifying it.
func (r *Registry) Get() Condition {
	return Condition(r.cond.Load())
}

// Clear resets the registry to None. Only session launch calls this.
func (r *Registry) Clear() {
	r.cond.Store(int32(None))
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the CLI. Library callers
// normally create their own with NewRegistry and pass it explicitly.
func Default() *Registry {
	return defaultRegistry
}
