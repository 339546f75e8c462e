package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tbsim/tbsim/sim"
	_ "github.com/tbsim/tbsim/sim/designs"
)

var (
	// CLI flags for the run command
	design      string // registered design name
	maxSteps    uint64 // step ceiling
	traceDepth  int    // hierarchy levels bound to the trace
	traceFile   string // waveform destination
	noTrace     bool   // disable trace capability
	debugLevel  int    // model debug verbosity
	randReset   int    // 0 zeros, 1 ones, 2 seeded random
	seed        int64  // seed for rand-reset 2
	logLevel    string // Log verbosity level
	configPath  string // optional YAML run config
	resultsPath string // optional YAML run summary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tbsim",
	Short: "Step self-clocking device models and record VCD waveforms",
}

// runCmd drives one design until it finishes or hits the step ceiling
var runCmd = &cobra.Command{
	Use:   "run [plusargs...]",
	Short: "Run a design and write its waveform",
	Long: `Run constructs the selected design, binds its full signal hierarchy to a VCD
trace, and evaluates it once per step until the design signals completion or
--max-steps is reached. Positional arguments (e.g. +cycles=500) are forwarded
unexamined to the design.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptions{
			Design:      design,
			MaxSteps:    maxSteps,
			TraceDepth:  traceDepth,
			TraceFile:   traceFile,
			Trace:       !noTrace,
			Debug:       debugLevel,
			RandReset:   randReset,
			Seed:        seed,
			Log:         logLevel,
			ResultsPath: resultsPath,
		}
		if configPath != "" {
			cfg, err := loadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("Failed to load run config: %v", err)
			}
			opts = cfg.apply(opts, cmd.Flags().Changed)
		}
		opts.Args = append(opts.Args, args...)

		res, err := runSimulation(opts)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if res.Reason == sim.ReasonStepCeiling {
			logrus.Warnf("Step ceiling of %d reached before %s signalled completion", opts.MaxSteps, opts.Design)
		}
		logrus.Infof("Simulation complete: %d steps (%s)", res.Steps, res.Reason)
	},
}

// designsCmd lists the registered designs
var designsCmd = &cobra.Command{
	Use:   "designs",
	Short: "List built-in designs",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range sim.DesignNames() {
			d, _ := sim.LookupDesign(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", d.Name, d.Description)
		}
	},
}

// inspectCmd summarizes a VCD file
var inspectCmd = &cobra.Command{
	Use:   "inspect <waveform.vcd>",
	Short: "Summarize the signals and timestamps of a VCD waveform",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := inspectWaveform(cmd.OutOrStdout(), args[0]); err != nil {
			logrus.Fatalf("Failed to inspect %s: %v", args[0], err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&design, "design", "counter", "Design to simulate (see 'tbsim designs')")
	runCmd.Flags().Uint64Var(&maxSteps, "max-steps", sim.DefaultMaxSteps, "Step ceiling; the run stops here even if the design never finishes")
	runCmd.Flags().IntVar(&traceDepth, "trace-depth", sim.DefaultTraceDepth, "Hierarchy levels bound to the trace")
	runCmd.Flags().StringVar(&traceFile, "trace-file", sim.DefaultTraceFile, "VCD waveform destination")
	runCmd.Flags().BoolVar(&noTrace, "no-trace", false, "Disable tracing entirely")
	runCmd.Flags().IntVar(&debugLevel, "debug", 0, "Design debug verbosity (0 disables)")
	runCmd.Flags().IntVar(&randReset, "rand-reset", 0, "Initial register values: 0 zeros, 1 ones, 2 seeded random")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for --rand-reset 2")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run config; explicitly set flags take precedence")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "Write a YAML run summary to this path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(designsCmd)
	rootCmd.AddCommand(inspectCmd)
}
