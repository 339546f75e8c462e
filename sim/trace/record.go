// Package trace provides an in-memory trace sink that records every capture.
// It implements sim.TraceSink and is used as a test double and for run
// summaries. Captures are pure data: signal paths and the values read at each
// timestamp.
package trace

// Capture is the state of every bound signal at one timestamp.
type Capture struct {
	Time   uint64
	Values []uint64 // indexed like Recorder.Signals
}

// SignalInfo describes a bound signal.
type SignalInfo struct {
	Path  string // dotted hierarchical path, e.g. "tb.dut.count"
	Width int
}
