package cmd

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RunConfig is the YAML form of the run flags. Absent keys leave the flag
// value alone. Unknown keys are rejected so typos fail loudly.
type RunConfig struct {
	Design      *string  `yaml:"design"`
	MaxSteps    *uint64  `yaml:"max_steps"`
	TraceDepth  *int     `yaml:"trace_depth"`
	TraceFile   *string  `yaml:"trace_file"`
	Trace       *bool    `yaml:"trace"`
	Debug       *int     `yaml:"debug"`
	RandReset   *int     `yaml:"rand_reset"`
	Seed        *int64   `yaml:"seed"`
	Log         *string  `yaml:"log"`
	ResultsPath *string  `yaml:"results_path"`
	PlusArgs    []string `yaml:"plusargs"`
}

// loadRunConfig parses a run config with strict field checking.
func loadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read run config")
	}
	var cfg RunConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "parse run config %s", path)
	}
	return &cfg, nil
}

// apply overlays the config onto opts. Flags the user set explicitly
// (changed returns true) win over the file. Config plusargs come first so
// that command-line plusargs override them.
func (c *RunConfig) apply(opts runOptions, changed func(flag string) bool) runOptions {
	set := func(flag string) bool { return !changed(flag) }

	if c.Design != nil && set("design") {
		opts.Design = *c.Design
	}
	if c.MaxSteps != nil && set("max-steps") {
		opts.MaxSteps = *c.MaxSteps
	}
	if c.TraceDepth != nil && set("trace-depth") {
		opts.TraceDepth = *c.TraceDepth
	}
	if c.TraceFile != nil && set("trace-file") {
		opts.TraceFile = *c.TraceFile
	}
	if c.Trace != nil && set("no-trace") {
		opts.Trace = *c.Trace
	}
	if c.Debug != nil && set("debug") {
		opts.Debug = *c.Debug
	}
	if c.RandReset != nil && set("rand-reset") {
		opts.RandReset = *c.RandReset
	}
	if c.Seed != nil && set("seed") {
		opts.Seed = *c.Seed
	}
	if c.Log != nil && set("log") {
		opts.Log = *c.Log
	}
	if c.ResultsPath != nil && set("results-path") {
		opts.ResultsPath = *c.ResultsPath
	}
	opts.Args = append(append([]string(nil), c.PlusArgs...), opts.Args...)
	return opts
}
