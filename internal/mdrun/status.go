package mdrun

// Status is the terminal result of Run and Close. Interruption is a
// successful Status; failure is reserved for engine faults and contract
// violations. The zero value is a failed status with no diagnostic.
type Status struct {
	ok      bool
	message string
	err     error
}

func statusOK(message string) Status {
	return Status{ok: true, message: message}
}

func statusFailed(err error) Status {
	return Status{message: err.Error(), err: err}
}

func (s Status) Success() bool { return s.ok }

// Message is a human-readable diagnostic suitable for CLI output.
func (s Status) Message() string { return s.message }

// Err returns the underlying error for a failed status, nil otherwise.
// It unwraps to the sentinel taxonomy (ErrInvalidState, ErrEngine, ...).
func (s Status) Err() error { return s.err }

// ExitCode maps the status onto a process exit code.
func (s Status) ExitCode() int {
	if s.ok {
		return 0
	}
	return 1
}
