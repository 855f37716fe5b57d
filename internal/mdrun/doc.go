// Package mdrun is the simulation control plane: it binds an immutable
// System to a mutable Context, launches a Session, and drives the engine
// until completion or a cooperatively observed stop request.
//
// The lifecycle is configure → launch → run → close:
//
//	sys, _ := mdrun.LoadSystem("chain.yaml")
//	ctx := mdrun.NewContext(nil)
//	ctx.SetArguments([]string{"-nsteps", "10", "-noappend"})
//	session, _ := sys.Launch(ctx)
//	defer session.Close()
//	status := session.Run()
//
// Interruption is cooperative: an asynchronous actor (the OS signal handler,
// the live monitor) sets a condition on the context's stop registry, and the
// running session honors it at the next step boundary. Launch clears the
// registry; Run and Close never do, so a finished run's stop condition stays
// observable until the next launch.
package mdrun
