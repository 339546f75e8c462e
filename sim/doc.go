// Package sim provides the driver loop that steps a self-clocking device
// model and mirrors its signals into a waveform trace.
//
// # Reading Guide
//
//   - env.go: the immutable Environment (forwarded args, debug level,
//     rand-reset policy, trace enable) built once before any model exists
//   - model.go: DeviceModel, TraceScope and TraceSink, plus LimitDepth
//   - driver.go: the step/trace/terminate loop and its Result
//
// # Architecture
//
// The sim package defines interfaces; implementations live in sub-packages:
//   - sim/vcd/: VCD trace sink and reader
//   - sim/trace/: in-memory recorder used as a test double and for summaries
//   - sim/designs/: built-in self-clocking models (counter, lfsr)
//
// sim/designs registers its models via init() into the design registry
// (RegisterDesign), so the CLI can select them by name.
//
// # Loop semantics
//
// The completion flag is checked before every evaluation. Each evaluation is
// followed by exactly one capture stamped with the current step, and the run
// stops when the model finishes or MaxSteps is reached. Both collaborators are
// released on every exit path.
package sim
