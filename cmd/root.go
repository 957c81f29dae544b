package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cpusim/sim"
	"github.com/inference-sim/cpusim/sim/report"
	"github.com/inference-sim/cpusim/sim/scenario"
	"github.com/inference-sim/cpusim/sim/store"
)

var (
	// CLI flags for the run command
	scenarioPath string // YAML scenario file
	presetName   string // Built-in scenario used when no file is given
	algorithm    string // FIFO or RR
	quantum      int64  // RR time slice (multiple of 10)
	maxTicks     int    // Tick ceiling; 0 keeps the scenario value
	logLevel     string // Log verbosity level
	columns      int    // Occupancy columns per printed page
	csvPath      string // Event log CSV export
	outputPath   string // Full result YAML export
	runDBPath    string // Run history database; empty disables saving
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cpusim",
	Short: "Tick-based CPU scheduling simulator (FIFO and Round Robin)",
}

// runCmd executes a simulation using a scenario file or preset plus CLI overrides
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		spec, err := loadSpec()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applyOverrides(spec, cmd.Flags().Changed)

		if err := execute(cmd.Context(), spec, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// exampleCmd runs the predefined three-process example
var exampleCmd = &cobra.Command{
	Use:   "example [fifo|rr]",
	Short: "Run the predefined three-process example",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		alg := "fifo"
		if len(args) == 1 {
			alg = args[0]
		}
		spec := scenario.Predefined(sim.Algorithm(alg), quantum)
		if err := execute(cmd.Context(), spec, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadSpec reads --scenario when given, otherwise the --preset.
func loadSpec() (*scenario.Spec, error) {
	if scenarioPath != "" {
		return scenario.Load(scenarioPath)
	}
	return scenario.Preset(presetName, sim.Algorithm(algorithm), quantum)
}

// applyOverrides copies CLI values onto the scenario, but only for flags the
// user set explicitly, so scenario values survive flag defaults.
func applyOverrides(spec *scenario.Spec, changed func(name string) bool) {
	if changed("algorithm") {
		spec.Algorithm = algorithm
	}
	if changed("quantum") {
		spec.Quantum = quantum
	}
	if changed("max-ticks") {
		spec.MaxTicks = maxTicks
	}
}

// execute runs the scenario, prints the report and writes the requested exports.
func execute(ctx context.Context, spec *scenario.Spec, w io.Writer) error {
	result, err := simulate(spec)
	if err != nil {
		return err
	}
	render(w, result, columns)

	if csvPath != "" {
		if err := report.SaveEventsCSV(csvPath, result.Events); err != nil {
			return fmt.Errorf("exporting events: %w", err)
		}
		logrus.Infof("Events written to %s", csvPath)
	}
	if outputPath != "" {
		if err := report.SaveYAML(outputPath, result); err != nil {
			return fmt.Errorf("exporting result: %w", err)
		}
		logrus.Infof("Result written to %s", outputPath)
	}
	if runDBPath != "" {
		run, err := saveRun(ctx, runDBPath, result)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		fmt.Fprintf(w, "\nSaved as %s\n", run.ID)
	}
	return nil
}

// simulate builds an engine from the scenario, runs it and collects the report.
func simulate(spec *scenario.Spec) (*report.Result, error) {
	e, err := spec.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if _, err := e.Run(); err != nil {
		return nil, fmt.Errorf("running simulation: %w", err)
	}
	return report.Build(spec.Name, e), nil
}

func openStore(ctx context.Context, path string) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return st, nil
}

func saveRun(ctx context.Context, path string, result *report.Result) (*store.Run, error) {
	st, err := openStore(ctx, path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.SaveRun(ctx, result)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().IntVar(&columns, "columns", 20, "Occupancy table columns per page (0 prints one page)")

	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file")
	runCmd.Flags().StringVar(&presetName, "preset", "predefined", fmt.Sprintf("Built-in scenario when --scenario is not set %v", scenario.PresetNames()))
	runCmd.Flags().StringVar(&algorithm, "algorithm", "fifo", "Scheduling algorithm (fifo, rr); overrides the scenario file only when set")
	runCmd.Flags().IntVar(&maxTicks, "max-ticks", 0, fmt.Sprintf("Tick ceiling (0 = %d)", sim.DefaultMaxTicks))
	runCmd.Flags().StringVar(&csvPath, "csv", "", "Write the event log to this CSV file")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the full result to this YAML file")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "Save the run to this SQLite database")

	for _, c := range []*cobra.Command{runCmd, exampleCmd} {
		c.Flags().Int64Var(&quantum, "quantum", 0, "Round Robin quantum (multiple of 10)")
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exampleCmd)
}
