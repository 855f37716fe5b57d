// Package engine implements the compute collaborator driven by a session.
//
// The engine's contract is deliberately narrow: AdvanceOneUnit moves the
// simulation forward by exactly one step and reports whether more work
// remains. Everything the control plane needs for cooperative interruption
// happens between those calls, never inside one.
//
// The concrete engine integrates a 1-D harmonic chain with velocity Verlet.
// It is deterministic end to end: a run restored from a checkpoint produces
// the same trajectory as one that was never interrupted.
package engine
