package mdrun

import (
	"fmt"
	"strconv"
)

// launchOptions is the parsed form of a context's argument tokens. Tokens the
// control plane does not recognize are collected in Extra and handed to the
// engine, whose rejection surfaces as a launch failure.
type launchOptions struct {
	StepsOverride int64
	NoAppend      bool
	RunName       string
	Extra         []string
}

func parseLaunchArgs(tokens []string) (*launchOptions, error) {
	opts := &launchOptions{
		StepsOverride: -1,
		RunName:       "md",
	}

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "-nsteps":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("%w: -nsteps requires a value", ErrInvalidArgument)
			}
			i++
			n, err := strconv.ParseInt(tokens[i], 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: -nsteps %q is not a step count", ErrInvalidArgument, tokens[i])
			}
			opts.StepsOverride = n
		case "-noappend":
			opts.NoAppend = true
		case "-deffnm":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("%w: -deffnm requires a value", ErrInvalidArgument)
			}
			i++
			opts.RunName = tokens[i]
		default:
			opts.Extra = append(opts.Extra, tokens[i])
		}
	}

	return opts, nil
}
