package mdrun_test

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdlab/internal/config"
	"github.com/san-kum/mdlab/internal/mdrun"
	"github.com/san-kum/mdlab/internal/stopsignal"
	"github.com/san-kum/mdlab/internal/storage"
)

func testDefinition() *config.Definition {
	def := config.DefaultDefinition()
	def.Name = "chain8"
	def.Particles = 8
	def.Steps = 50
	def.OutputEvery = 5
	return def
}

// newContext builds a context with its own registry and a fresh workdir.
func newContext(args ...string) (*mdrun.Context, *stopsignal.Registry) {
	reg := stopsignal.NewRegistry()
	ctx := mdrun.NewContext(reg)
	Expect(ctx.SetWorkDir(GinkgoT().TempDir())).To(Succeed())
	Expect(ctx.SetArguments(args)).To(Succeed())
	return ctx, reg
}

var _ = Describe("Runner", func() {
	var system *mdrun.System

	BeforeEach(func() {
		var err error
		system, err = mdrun.NewSystem(testDefinition())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("BasicMD", func() {
		It("launches, runs, and closes a simple simulation", func() {
			ctx, _ := newContext("-nsteps", "10", "-noappend")

			session, err := system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(session).NotTo(BeNil())

			status := session.Run()
			Expect(status.Success()).To(BeTrue(), status.Message())

			status = session.Close()
			Expect(status.Success()).To(BeTrue(), status.Message())
		})
	})

	Describe("Reinitialize", func() {
		It("keeps a stop condition across a session but clears it on the next launch", func() {
			ctx, reg := newContext("-nsteps", "20", "-noappend")

			session, err := system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())

			// Simulate an interrupt before the run starts.
			reg.Set(stopsignal.NextCheckpoint)

			status := session.Run()
			Expect(status.Success()).To(BeTrue(), status.Message())

			// The run honored the stop but did not consume it.
			Expect(reg.Get()).NotTo(Equal(stopsignal.None))

			Expect(session.Close().Success()).To(BeTrue())

			// Still set after close: only a launch clears it.
			Expect(reg.Get()).NotTo(Equal(stopsignal.None))

			session, err = system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.Get()).To(Equal(stopsignal.None))

			status = session.Run()
			Expect(status.Success()).To(BeTrue(), status.Message())
			Expect(reg.Get()).To(Equal(stopsignal.None))

			Expect(session.Close().Success()).To(BeTrue())
		})
	})

	Describe("ContinuedMD", func() {
		It("extends a trajectory across two sessions on the same context", func() {
			ctx, _ := newContext("-nsteps", "10")

			session, err := system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Run().Success()).To(BeTrue())
			Expect(session.Close().Success()).To(BeTrue())

			// Reuse the context: a new session continues where the first
			// left off.
			Expect(ctx.SetArguments([]string{"-nsteps", "10"})).To(Succeed())
			session, err = system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Run().Success()).To(BeTrue())

			step, _, _ := session.Progress()
			Expect(step).To(Equal(int64(20)))
			Expect(session.Close().Success()).To(BeTrue())

			// The two-session trajectory matches one uninterrupted 20-step
			// run, frame for frame.
			straightCtx, _ := newContext("-nsteps", "20")
			straight, err := system.Launch(straightCtx)
			Expect(err).NotTo(HaveOccurred())
			Expect(straight.Run().Success()).To(BeTrue())
			Expect(straight.Close().Success()).To(BeTrue())

			continued := loadEnergies(ctx.WorkDir())
			uninterrupted := loadEnergies(straightCtx.WorkDir())
			Expect(continued).To(Equal(uninterrupted))
		})
	})

	Describe("clear-on-launch", func() {
		It("clears any prior registry state", func() {
			for _, cond := range []stopsignal.Condition{stopsignal.NextCheckpoint, stopsignal.Immediate} {
				ctx, reg := newContext("-nsteps", "1")
				reg.Set(cond)

				session, err := system.Launch(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(reg.Get()).To(Equal(stopsignal.None))
				Expect(session.Close().Success()).To(BeTrue())
			}
		})
	})

	Describe("idempotent close", func() {
		It("returns success on every close", func() {
			ctx, _ := newContext("-nsteps", "5")

			session, err := system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Run().Success()).To(BeTrue())

			Expect(session.Close().Success()).To(BeTrue())
			Expect(session.Close().Success()).To(BeTrue())
			Expect(session.State()).To(Equal(mdrun.StateClosed))
		})
	})

	Describe("graceful stop", func() {
		It("honors a stop requested during the run within a bounded number of steps", func() {
			ctx, reg := newContext("-nsteps", "2000000")

			session, err := system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())

			done := make(chan mdrun.Status, 1)
			go func() {
				done <- session.Run()
			}()

			// Wait until the engine has made progress, then interrupt.
			Eventually(func() int64 {
				step, _, _ := session.Progress()
				return step
			}).Should(BeNumerically(">", 0))

			reg.Set(stopsignal.NextCheckpoint)

			var status mdrun.Status
			Eventually(done, 10*time.Second).Should(Receive(&status))
			Expect(status.Success()).To(BeTrue(), status.Message())
			Expect(session.State()).To(Equal(mdrun.StateInterrupted))
			Expect(reg.Get()).To(Equal(stopsignal.NextCheckpoint))

			step, target, _ := session.Progress()
			Expect(step).To(BeNumerically("<", target))

			Expect(session.Close().Success()).To(BeTrue())
		})

		It("rejects argument changes while the run is in flight", func() {
			ctx, reg := newContext("-nsteps", "2000000")

			session, err := system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())

			done := make(chan mdrun.Status, 1)
			go func() {
				done <- session.Run()
			}()

			Eventually(func() int64 {
				step, _, _ := session.Progress()
				return step
			}).Should(BeNumerically(">", 0))

			Expect(ctx.SetArguments([]string{"-nsteps", "1"})).To(MatchError(mdrun.ErrInvalidArgument))

			reg.Set(stopsignal.Immediate)
			Eventually(done, 10*time.Second).Should(Receive())
			Expect(session.Close().Success()).To(BeTrue())

			// Mutable again once nothing is running.
			Expect(ctx.SetArguments([]string{"-nsteps", "1"})).To(Succeed())
		})
	})

	Describe("launch failures", func() {
		It("rejects malformed launch arguments", func() {
			ctx, _ := newContext("-nsteps", "many")
			session, err := system.Launch(ctx)
			Expect(err).To(MatchError(mdrun.ErrLaunch))
			Expect(session).To(BeNil())
		})

		It("rejects tokens the engine does not understand", func() {
			ctx, _ := newContext("-bogus")
			session, err := system.Launch(ctx)
			Expect(err).To(MatchError(mdrun.ErrLaunch))
			Expect(session).To(BeNil())
		})

		It("refuses to launch while a session on the context is running", func() {
			ctx, reg := newContext("-nsteps", "2000000")

			session, err := system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())

			done := make(chan mdrun.Status, 1)
			go func() {
				done <- session.Run()
			}()

			Eventually(func() int64 {
				step, _, _ := session.Progress()
				return step
			}).Should(BeNumerically(">", 0))

			_, err = system.Launch(ctx)
			Expect(err).To(MatchError(mdrun.ErrLaunch))

			reg.Set(stopsignal.Immediate)
			Eventually(done, 10*time.Second).Should(Receive())
			Expect(session.Close().Success()).To(BeTrue())
		})

		It("does not clear the registry when launch fails", func() {
			ctx, reg := newContext("-bogus")
			reg.Set(stopsignal.NextCheckpoint)

			_, err := system.Launch(ctx)
			Expect(err).To(HaveOccurred())
			Expect(reg.Get()).To(Equal(stopsignal.NextCheckpoint))
		})
	})

	Describe("run after close", func() {
		It("fails with an invalid-state status", func() {
			ctx, _ := newContext("-nsteps", "1")

			session, err := system.Launch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Close().Success()).To(BeTrue())

			status := session.Run()
			Expect(status.Success()).To(BeFalse())
			Expect(status.Err()).To(MatchError(mdrun.ErrInvalidState))
		})
	})

	Describe("LoadSystem", func() {
		It("loads a definition from disk", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "sys.yaml")
			Expect(config.Save(path, testDefinition())).To(Succeed())

			sys, err := mdrun.LoadSystem(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.Name()).To(Equal("chain8"))
		})

		It("surfaces missing files as a load error", func() {
			_, err := mdrun.LoadSystem(filepath.Join(GinkgoT().TempDir(), "nope.yaml"))
			Expect(err).To(MatchError(mdrun.ErrLoad))
		})

		It("surfaces invalid definitions as a load error", func() {
			def := testDefinition()
			def.Particles = 1
			_, err := mdrun.NewSystem(def)
			Expect(err).To(MatchError(mdrun.ErrLoad))
		})
	})
})

func loadEnergies(workDir string) []float64 {
	st := storage.New(workDir)
	_, epot, ekin, err := st.LoadEnergies("md")
	Expect(err).NotTo(HaveOccurred())

	etot := make([]float64, len(epot))
	for i := range epot {
		etot[i] = epot[i] + ekin[i]
	}
	return etot
}
