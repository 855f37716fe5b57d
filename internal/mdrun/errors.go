package mdrun

import "errors"

// Control-plane errors. Expected outcomes (completion, graceful interruption)
// are session states, not errors; these cover contract violations and engine
// faults only.
var (
	// ErrInvalidArgument indicates a configuration mutation that the current
	// session state forbids, or a malformed launch token.
	ErrInvalidArgument = errors.New("mdrun: invalid argument")

	// ErrLaunch indicates resource acquisition or system/context mismatch at
	// launch. No partial session exists after it.
	ErrLaunch = errors.New("mdrun: launch failed")

	// ErrInvalidState indicates an operation invoked in a state that forbids
	// it, such as Run after Close.
	ErrInvalidState = errors.New("mdrun: invalid session state")

	// ErrEngine indicates a fatal fault surfaced from the compute engine
	// during a run.
	ErrEngine = errors.New("mdrun: engine failure")

	// ErrLoad indicates a missing or malformed system definition.
	ErrLoad = errors.New("mdrun: load failed")
)
