package mdrun

import (
	"fmt"
	"sync"

	"github.com/san-kum/mdlab/internal/stopsignal"
)

// Context holds the mutable launch configuration: the argument token list
// and the runtime bindings (working directory, stop registry) a session
// acquires its engine resources from.
//
// A Context may be reused across sequential launches; changing its arguments
// takes effect at the next launch, never on an in-flight session. At most one
// session bound to a Context may be running at a time.
type Context struct {
	mu      sync.Mutex
	args    []string
	workDir string
	reg     *stopsignal.Registry
	running *Session
}

// NewContext creates a Context bound to reg. A nil registry binds the
// process-wide default.
func NewContext(reg *stopsignal.Registry) *Context {
	if reg == nil {
		reg = stopsignal.Default()
	}
	return &Context{
		workDir: ".",
		reg:     reg,
	}
}

// SetArguments replaces the launch token list. It fails with
// ErrInvalidArgument while a session bound to this context is running.
func (c *Context) SetArguments(args []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running != nil {
		return fmt.Errorf("%w: cannot change arguments while a session is running", ErrInvalidArgument)
	}

	c.args = append([]string(nil), args...)
	return nil
}

// Arguments returns a copy of the current token list.
func (c *Context) Arguments() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.args...)
}

// SetWorkDir changes where launched sessions keep run output. Same rule as
// SetArguments: not while a session is running.
func (c *Context) SetWorkDir(dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running != nil {
		return fmt.Errorf("%w: cannot change workdir while a session is running", ErrInvalidArgument)
	}

	c.workDir = dir
	return nil
}

func (c *Context) WorkDir() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workDir
}

// Registry returns the stop-signal registry sessions launched from this
// context observe.
func (c *Context) Registry() *stopsignal.Registry {
	return c.reg
}

// busy reports whether a session bound to this context is running.
func (c *Context) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running != nil
}

// beginRun marks s as the running session. Fails when another session bound
// to this context is already running.
func (c *Context) beginRun(s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running != nil && c.running != s {
		return fmt.Errorf("%w: another session is already running on this context", ErrInvalidState)
	}
	c.running = s
	return nil
}

func (c *Context) endRun(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running == s {
		c.running = nil
	}
}
