package trace

import (
	"github.com/pkg/errors"

	"github.com/tbsim/tbsim/sim"
)

// ErrBindAfterOpen is returned by Dump when a signal was bound after Open.
var ErrBindAfterOpen = errors.New("trace: signal bound after open")

// Recorder collects captures in memory. Signals bound after Open are
// dropped and the next Dump fails, so every capture covers every signal.
type Recorder struct {
	Signals     []SignalInfo
	Captures    []Capture
	Destination string // set by Open
	Opens       int
	Closes      int

	// FailAt makes Dump return an error at this timestamp when non-nil.
	FailAt *uint64

	readers []func() uint64
	err     error
}

// NewRecorder creates a Recorder ready for binding.
func NewRecorder() *Recorder {
	return &Recorder{
		Signals:  make([]SignalInfo, 0),
		Captures: make([]Capture, 0),
	}
}

// Factory adapts r to a sim.SinkFactory that always returns r.
func (r *Recorder) Factory() sim.SinkFactory {
	return func(*sim.Environment) (sim.TraceSink, error) { return r, nil }
}

// Scope implements sim.TraceScope.
func (r *Recorder) Scope(name string) sim.TraceScope {
	return &recorderScope{r: r, prefix: name}
}

// Signal implements sim.TraceScope for top-level signals.
func (r *Recorder) Signal(name string, width int, read func() uint64) {
	if r.Opens > 0 {
		r.err = errors.Wrapf(ErrBindAfterOpen, "signal %s", name)
		return
	}
	r.Signals = append(r.Signals, SignalInfo{Path: name, Width: width})
	r.readers = append(r.readers, read)
}

// Open implements sim.TraceSink.
func (r *Recorder) Open(dest string) error {
	r.Destination = dest
	r.Opens++
	return nil
}

// Dump implements sim.TraceSink.
func (r *Recorder) Dump(t uint64) error {
	if r.err != nil {
		return r.err
	}
	if r.FailAt != nil && *r.FailAt == t {
		return errors.Errorf("injected failure at %d", t)
	}
	vals := make([]uint64, len(r.readers))
	for i, read := range r.readers {
		vals[i] = read() & sim.WidthMask(r.Signals[i].Width)
	}
	r.Captures = append(r.Captures, Capture{Time: t, Values: vals})
	return nil
}

// Close implements sim.TraceSink.
func (r *Recorder) Close() error {
	r.Closes++
	return nil
}

// Timestamps returns the timestamps of all captures in order.
func (r *Recorder) Timestamps() []uint64 {
	ts := make([]uint64, len(r.Captures))
	for i, c := range r.Captures {
		ts[i] = c.Time
	}
	return ts
}

// Values returns the captured history of the signal at path, or nil if no
// such signal is bound.
func (r *Recorder) Values(path string) []uint64 {
	idx := -1
	for i, s := range r.Signals {
		if s.Path == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]uint64, len(r.Captures))
	for i, c := range r.Captures {
		out[i] = c.Values[idx]
	}
	return out
}

type recorderScope struct {
	r      *Recorder
	prefix string
}

func (s *recorderScope) Scope(name string) sim.TraceScope {
	return &recorderScope{r: s.r, prefix: sim.JoinPath(s.prefix, name)}
}

func (s *recorderScope) Signal(name string, width int, read func() uint64) {
	s.r.Signal(sim.JoinPath(s.prefix, name), width, read)
}
