package sim

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxSteps bounds runs of models that never raise their
	// completion flag.
	DefaultMaxSteps uint64 = 300000000
	// DefaultTraceDepth captures every nested scope.
	DefaultTraceDepth = 99
	// DefaultTraceFile is the waveform destination.
	DefaultTraceFile = "waveform.vcd"
)

// TerminationReason says which loop-exit condition fired.
type TerminationReason string

const (
	// ReasonFinished means the model raised its completion flag.
	ReasonFinished TerminationReason = "finished"
	// ReasonStepCeiling means the run was cut off at MaxSteps.
	ReasonStepCeiling TerminationReason = "step-ceiling"
)

// Result summarizes a completed run.
type Result struct {
	RunID  string            `yaml:"run_id"`
	Steps  uint64            `yaml:"steps"`
	Reason TerminationReason `yaml:"reason"`
}

// Driver steps one device model and mirrors it into one trace sink.
type Driver struct {
	Env        *Environment
	MaxSteps   uint64 // step ceiling
	TraceDepth int    // hierarchy levels bound to the sink
	TraceFile  string // sink destination
}

// NewDriver returns a Driver with the default ceiling, depth and destination.
func NewDriver(env *Environment) *Driver {
	return &Driver{
		Env:        env,
		MaxSteps:   DefaultMaxSteps,
		TraceDepth: DefaultTraceDepth,
		TraceFile:  DefaultTraceFile,
	}
}

// Run acquires a model and a sink, steps the model until it finishes or the
// ceiling is reached, and releases both in reverse order on every exit path.
//
// The completion flag is checked before each evaluation, so a model that is
// finished at construction is never evaluated.
func (d *Driver) Run(newModel ModelFactory, newSink SinkFactory) (res Result, err error) {
	res.RunID = d.Env.RunID()
	log := logrus.WithField("run", res.RunID)

	model, err := newModel(d.Env)
	if err != nil {
		return res, errors.Wrap(err, "construct model")
	}
	defer func() {
		if c, ok := model.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "release model")
			}
		}
	}()

	var sink TraceSink = nopSink{}
	if d.Env.TraceEverOn() {
		if sink, err = newSink(d.Env); err != nil {
			return res, errors.Wrap(err, "construct trace sink")
		}
		model.Trace(LimitDepth(sink, d.TraceDepth))
	} else {
		log.Info("tracing disabled; no waveform will be written")
	}

	if err = sink.Open(d.TraceFile); err != nil {
		return res, errors.Wrapf(err, "open trace %s", d.TraceFile)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close trace")
		}
	}()

	log.Infof("Starting simulation, max steps=%d, trace depth=%d", d.MaxSteps, d.TraceDepth)
	for !model.Finished() && res.Steps < d.MaxSteps {
		model.Eval()
		if err = sink.Dump(res.Steps); err != nil {
			return res, errors.Wrapf(err, "capture step %d", res.Steps)
		}
		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			log.Tracef("[step %07d] evaluated", res.Steps)
		}
		res.Steps++
	}

	res.Reason = ReasonStepCeiling
	if model.Finished() {
		res.Reason = ReasonFinished
	}
	log.Infof("[step %07d] Simulation ended (%s)", res.Steps, res.Reason)
	return res, nil
}
