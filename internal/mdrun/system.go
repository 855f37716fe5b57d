package mdrun

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/mdlab/internal/config"
	"github.com/san-kum/mdlab/internal/engine"
	"github.com/san-kum/mdlab/internal/storage"
)

// System is an immutable simulation description. Load it once and launch any
// number of sequential sessions from it; launches read the definition but
// never modify it.
type System struct {
	def  *config.Definition
	path string
}

// LoadSystem parses and validates a system definition file. Failures surface
// as ErrLoad and never leave partial state behind.
func LoadSystem(path string) (*System, error) {
	def, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return &System{def: def, path: path}, nil
}

// NewSystem wraps an already-validated definition, for callers that build
// definitions in memory (presets, tests).
func NewSystem(def *config.Definition) (*System, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	cp := *def
	return &System{def: &cp}, nil
}

func (s *System) Name() string { return s.def.Name }

// Definition returns a copy; the system itself stays immutable.
func (s *System) Definition() config.Definition { return *s.def }

// Launch binds a fresh session to this system and ctx. In order: parse the
// context's launch arguments, acquire engine resources from the context
// bindings, then clear the stop registry — so a stale stop request from a
// previous run can never leak into the new session. On failure no session
// and no resources are left behind.
func (s *System) Launch(ctx *Context) (*Session, error) {
	if ctx.busy() {
		return nil, fmt.Errorf("%w: a session is already running on this context", ErrLaunch)
	}

	opts, err := parseLaunchArgs(ctx.Arguments())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	store := storage.New(ctx.WorkDir())
	eng, err := engine.New(engine.Params{
		Def:           s.def,
		Store:         store,
		RunName:       opts.RunName,
		Append:        !opts.NoAppend,
		StepsOverride: opts.StepsOverride,
		Extra:         opts.Extra,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	ctx.Registry().Clear()

	return &Session{
		state:   StateCreated,
		eng:     eng,
		ctx:     ctx,
		reg:     ctx.Registry(),
		store:   store,
		runName: opts.RunName,
		def:     s.def,
		log: logrus.WithFields(logrus.Fields{
			"system": s.def.Name,
			"run":    opts.RunName,
		}),
	}, nil
}

var _ Engine = (*engine.Verlet)(nil)
