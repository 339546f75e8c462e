package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/tbsim/tbsim/sim"
	"github.com/tbsim/tbsim/sim/vcd"
)

// runOptions is the resolved configuration of one run, after flags and the
// optional YAML config have been merged.
type runOptions struct {
	Design      string
	MaxSteps    uint64
	TraceDepth  int
	TraceFile   string
	Trace       bool
	Debug       int
	RandReset   int
	Seed        int64
	Log         string
	Args        []string // forwarded to the environment
	ResultsPath string
}

// runSummary is written to --results-path.
type runSummary struct {
	sim.Result `yaml:",inline"`
	Design     string   `yaml:"design"`
	MaxSteps   uint64   `yaml:"max_steps"`
	TraceFile  string   `yaml:"trace_file,omitempty"`
	Args       []string `yaml:"args,omitempty"`
}

// runSimulation configures the environment, then drives the selected design
// into a VCD sink.
func runSimulation(opts runOptions) (sim.Result, error) {
	level, err := logrus.ParseLevel(opts.Log)
	if err != nil {
		return sim.Result{}, errors.Errorf("invalid log level: %s", opts.Log)
	}
	logrus.SetLevel(level)

	d, err := sim.LookupDesign(opts.Design)
	if err != nil {
		return sim.Result{}, err
	}

	env, err := sim.NewEnvironment(opts.Args, sim.EnvOptions{
		Debug:       opts.Debug,
		RandReset:   sim.RandResetPolicy(opts.RandReset),
		Seed:        opts.Seed,
		TraceEverOn: opts.Trace,
	})
	if err != nil {
		return sim.Result{}, errors.Wrap(err, "configure environment")
	}
	if opts.Debug > 0 && !logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.WithField("run", env.RunID()).Infof("Design %s, rand-reset=%s, trace=%s (depth %d)",
		d.Name, env.RandReset(), traceTarget(opts), opts.TraceDepth)

	driver := sim.NewDriver(env)
	driver.MaxSteps = opts.MaxSteps
	driver.TraceDepth = opts.TraceDepth
	driver.TraceFile = opts.TraceFile

	res, err := driver.Run(d.New, vcd.NewSink)
	if err != nil {
		return res, err
	}

	if opts.ResultsPath != "" {
		if err := writeResults(opts.ResultsPath, runSummary{
			Result:    res,
			Design:    d.Name,
			MaxSteps:  opts.MaxSteps,
			TraceFile: traceTarget(opts),
			Args:      opts.Args,
		}); err != nil {
			return res, err
		}
	}
	return res, nil
}

func traceTarget(opts runOptions) string {
	if !opts.Trace {
		return ""
	}
	return opts.TraceFile
}

func writeResults(path string, s runSummary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshal results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write results %s", path)
	}
	logrus.Infof("Results written to %s", path)
	return nil
}
