package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/mdlab/internal/analysis"
	"github.com/san-kum/mdlab/internal/config"
	"github.com/san-kum/mdlab/internal/mdrun"
	"github.com/san-kum/mdlab/internal/stopsignal"
	"github.com/san-kum/mdlab/internal/storage"
	"github.com/san-kum/mdlab/internal/tui"
)

var (
	workDir  string
	nsteps   int64
	noappend bool
	deffnm   string
	preset   string
	verbose  bool
	engineV  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdlab",
		Short: "molecular dynamics run controller",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&workDir, "workdir", ".mdlab", "run output directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [system.yaml]",
		Short: "run a simulation (ctrl+c stops at the next checkpoint)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Int64Var(&nsteps, "nsteps", -1, "override step count for this run")
	runCmd.Flags().BoolVar(&noappend, "noappend", false, "start a new trajectory part instead of appending")
	runCmd.Flags().StringVar(&deffnm, "deffnm", "md", "run output name")
	runCmd.Flags().StringVar(&preset, "preset", "", "use a built-in system preset")
	runCmd.Flags().BoolVarP(&engineV, "engine-verbose", "v", false, "per-frame engine logging")

	liveCmd := &cobra.Command{
		Use:   "live [system.yaml]",
		Short: "run with a live monitor (q requests a graceful stop)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Int64Var(&nsteps, "nsteps", -1, "override step count for this run")
	liveCmd.Flags().BoolVar(&noappend, "noappend", false, "start a new trajectory part instead of appending")
	liveCmd.Flags().StringVar(&deffnm, "deffnm", "md", "run output name")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use a built-in system preset")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run]",
		Short: "plot a run's total energy",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run]",
		Short: "energy conservation statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in system presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadSystem(args []string) (*mdrun.System, error) {
	if preset != "" {
		def := config.GetPreset(preset)
		if def == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
		return mdrun.NewSystem(def)
	}
	if len(args) == 0 {
		return nil, errors.New("a system.yaml or --preset is required")
	}
	return mdrun.LoadSystem(args[0])
}

func buildContext(reg *stopsignal.Registry) (*mdrun.Context, error) {
	ctx := mdrun.NewContext(reg)
	if err := ctx.SetWorkDir(workDir); err != nil {
		return nil, err
	}

	tokens := []string{"-deffnm", deffnm}
	if nsteps >= 0 {
		tokens = append(tokens, "-nsteps", fmt.Sprintf("%d", nsteps))
	}
	if noappend {
		tokens = append(tokens, "-noappend")
	}
	if engineV {
		tokens = append(tokens, "-v")
	}
	if err := ctx.SetArguments(tokens); err != nil {
		return nil, err
	}
	return ctx, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	system, err := loadSystem(args)
	if err != nil {
		return err
	}

	reg := stopsignal.Default()
	ctx, err := buildContext(reg)
	if err != nil {
		return err
	}

	// Bridge OS interrupts into the stop registry: first signal stops at
	// the next checkpoint, a second one stops immediately.
	sigCh := make(chan os.Signal, 2)
	notifySignals(sigCh)
	go func() {
		<-sigCh
		logrus.Warn("interrupt received, stopping at next checkpoint (send again to stop now)")
		reg.Set(stopsignal.NextCheckpoint)
		<-sigCh
		logrus.Warn("second interrupt, stopping immediately")
		reg.Set(stopsignal.Immediate)
	}()

	session, err := system.Launch(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	status := session.Run()
	if !status.Success() {
		return errors.New(status.Message())
	}
	fmt.Println(status.Message())

	if status = session.Close(); !status.Success() {
		return errors.New(status.Message())
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	system, err := loadSystem(args)
	if err != nil {
		return err
	}

	reg := stopsignal.NewRegistry()
	ctx, err := buildContext(reg)
	if err != nil {
		return err
	}

	session, err := system.Launch(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	status, err := tui.Run(system.Name(), session, reg)
	if err != nil {
		return err
	}
	if !status.Success() {
		return errors.New(status.Message())
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(workDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYSTEM\tSTEPS\tTIME\tINTERRUPTED\tUPDATED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%v\t%s\n",
			run.Name, run.System, run.Steps, run.SimTime, run.Interrupted,
			run.Updated.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(workDir)
	_, epot, ekin, err := st.LoadEnergies(args[0])
	if err != nil {
		return err
	}

	etot := make([]float64, len(epot))
	for i := range epot {
		etot[i] = epot[i] + ekin[i]
	}

	fmt.Println(asciigraph.Plot(etot,
		asciigraph.Height(15),
		asciigraph.Caption(fmt.Sprintf("%s: total energy (%d frames)", args[0], len(etot)))))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(workDir)
	_, epot, ekin, err := st.LoadEnergies(args[0])
	if err != nil {
		return err
	}

	etot := make([]float64, len(epot))
	for i := range epot {
		etot[i] = epot[i] + ekin[i]
	}

	stats := analysis.Energy(etot)
	fmt.Printf("frames:        %d\n", stats.Samples)
	fmt.Printf("initial:       %.6f\n", stats.Initial)
	fmt.Printf("final:         %.6f\n", stats.Final)
	fmt.Printf("mean:          %.6f\n", stats.Mean)
	fmt.Printf("rel drift:     %.3e\n", stats.RelDrift)
	fmt.Printf("max deviation: %.3e\n", stats.MaxDeviation)
	return nil
}
