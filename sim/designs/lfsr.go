package designs

import (
	"github.com/tbsim/tbsim/sim"
)

const (
	lfsrWidth = 16
	lfsrTaps  = 0xB400 // x^16 + x^14 + x^13 + x^11 + 1, Galois form
)

// LFSR is a free-running 16-bit Galois LFSR with no reset: its power-on
// state comes straight from the rand-reset policy. All-zeros is the lock-up
// state and is replaced by 1. The testbench never finishes unless +stop=N
// is given, in which case it finishes after N rising edges.
//
// Hierarchy: tb{clk; lfsr{state[16], bit}}.
type LFSR struct {
	env *sim.Environment

	stop    uint64 // 0 = never
	clk     clock
	state   reg
	lastBit uint64

	finished bool
}

// NewLFSR builds an LFSR from env.
func NewLFSR(env *sim.Environment) (sim.DeviceModel, error) {
	stop, err := env.PlusArgUint("stop", 0)
	if err != nil {
		return nil, err
	}
	l := &LFSR{
		env:   env,
		stop:  stop,
		state: newReg(env.NewInitializer(), "tb.lfsr.state", lfsrWidth),
	}
	if l.state.value() == 0 {
		l.state.latch(1)
	}
	env.Debugf("lfsr: power-on state %#04x (rand-reset %s)", l.state.value(), env.RandReset())
	return l, nil
}

// Eval implements sim.DeviceModel.
func (l *LFSR) Eval() {
	if l.finished || !l.clk.toggle() {
		return
	}
	s := l.state.value()
	l.lastBit = s & 1
	s >>= 1
	if l.lastBit == 1 {
		s ^= lfsrTaps
	}
	l.state.latch(s)

	if l.stop != 0 && l.clk.edges >= l.stop {
		l.finished = true
		l.env.Debugf("lfsr: $finish at cycle %d", l.clk.edges)
	}
}

// Finished implements sim.DeviceModel.
func (l *LFSR) Finished() bool { return l.finished }

// Trace implements sim.DeviceModel.
func (l *LFSR) Trace(scope sim.TraceScope) {
	tb := scope.Scope("tb")
	tb.Signal("clk", 1, l.clk.value)
	lf := tb.Scope("lfsr")
	lf.Signal("state", lfsrWidth, l.state.value)
	lf.Signal("bit", 1, func() uint64 { return l.lastBit })
}
