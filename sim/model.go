package sim

import "strings"

// DeviceModel is a self-clocking unit under simulation. It generates its own
// clock and reset sequence; the driver only asks it to settle once per step.
// Models that hold resources may also implement io.Closer.
type DeviceModel interface {
	// Eval advances the model by one evaluation and settles its logic.
	Eval()
	// Finished reports the completion flag. Once true it stays true.
	Finished() bool
	// Trace registers the model's signal hierarchy with scope.
	Trace(scope TraceScope)
}

// TraceScope is one level of a signal hierarchy being bound to a sink.
type TraceScope interface {
	// Scope returns the nested scope called name.
	Scope(name string) TraceScope
	// Signal declares a width-bit signal whose current value is read at each
	// capture.
	Signal(name string, width int, read func() uint64)
}

// TraceSink records the state of a bound model at each step.
type TraceSink interface {
	TraceScope
	// Open starts recording to dest.
	Open(dest string) error
	// Dump captures every bound signal at timestamp t.
	Dump(t uint64) error
	// Close flushes and finalizes the output.
	Close() error
}

// ModelFactory constructs a device model for env.
type ModelFactory func(env *Environment) (DeviceModel, error)

// SinkFactory constructs a trace sink for env.
type SinkFactory func(env *Environment) (TraceSink, error)

// LimitDepth wraps scope so that only signals at most levels deep are
// registered. Signals of the root scope are level 1, each nested scope adds one.
func LimitDepth(scope TraceScope, levels int) TraceScope {
	return &depthScope{inner: scope, remaining: levels}
}

type depthScope struct {
	inner     TraceScope
	remaining int
}

func (d *depthScope) Scope(name string) TraceScope {
	if d.remaining <= 1 {
		return discardScope{}
	}
	return &depthScope{inner: d.inner.Scope(name), remaining: d.remaining - 1}
}

func (d *depthScope) Signal(name string, width int, read func() uint64) {
	if d.remaining <= 0 {
		return
	}
	d.inner.Signal(name, width, read)
}

type discardScope struct{}

func (discardScope) Scope(string) TraceScope           { return discardScope{} }
func (discardScope) Signal(string, int, func() uint64) {}

// nopSink is used when tracing is disabled in the environment.
type nopSink struct{ discardScope }

func (nopSink) Open(string) error { return nil }
func (nopSink) Dump(uint64) error { return nil }
func (nopSink) Close() error      { return nil }

// JoinPath joins hierarchical names with '.'.
func JoinPath(parts ...string) string {
	return strings.Join(parts, ".")
}
