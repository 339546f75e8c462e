package designs

import (
	"github.com/tbsim/tbsim/sim"
)

const (
	counterWidth         = 8
	defaultCounterCycles = 100
	defaultResetCycles   = 2
)

// Counter is a testbench around an 8-bit up counter. The testbench holds
// reset for +reset_cycles rising edges, then lets the counter run and
// finishes once +cycles rising edges have been seen.
//
// Hierarchy: tb{clk, rst, done; dut{count[8], carry}}.
type Counter struct {
	env *sim.Environment

	cycles      uint64
	resetCycles uint64

	clk   clock
	rst   uint64
	done  uint64
	count reg
	carry reg

	finished bool
}

// NewCounter builds a Counter from env. A +cycles=0 plusarg yields a model
// that is finished before its first evaluation.
func NewCounter(env *sim.Environment) (sim.DeviceModel, error) {
	cycles, err := env.PlusArgUint("cycles", defaultCounterCycles)
	if err != nil {
		return nil, err
	}
	resetCycles, err := env.PlusArgUint("reset_cycles", defaultResetCycles)
	if err != nil {
		return nil, err
	}
	ini := env.NewInitializer()
	c := &Counter{
		env:         env,
		cycles:      cycles,
		resetCycles: resetCycles,
		rst:         1,
		count:       newReg(ini, "tb.dut.count", counterWidth),
		carry:       newReg(ini, "tb.dut.carry", 1),
	}
	if c.cycles == 0 {
		c.finish()
	}
	return c, nil
}

// Eval implements sim.DeviceModel.
func (c *Counter) Eval() {
	if c.finished || !c.clk.toggle() {
		return
	}

	// rising edge: dut registers latch first, then the testbench reacts
	if c.rst == 1 {
		c.count.latch(0)
		c.carry.latch(0)
	} else {
		next := c.count.value() + 1
		c.carry.latch(next >> counterWidth)
		c.count.latch(next)
	}

	if c.rst == 1 && c.clk.edges >= c.resetCycles {
		c.rst = 0
		c.env.Debugf("counter: reset released after %d cycles", c.clk.edges)
	}
	if c.clk.edges >= c.cycles {
		c.finish()
	}
}

func (c *Counter) finish() {
	c.done = 1
	c.finished = true
	c.env.Debugf("counter: $finish at cycle %d, count=%d", c.clk.edges, c.count.value())
}

// Finished implements sim.DeviceModel.
func (c *Counter) Finished() bool { return c.finished }

// Trace implements sim.DeviceModel.
func (c *Counter) Trace(scope sim.TraceScope) {
	tb := scope.Scope("tb")
	tb.Signal("clk", 1, c.clk.value)
	tb.Signal("rst", 1, func() uint64 { return c.rst })
	tb.Signal("done", 1, func() uint64 { return c.done })
	dut := tb.Scope("dut")
	dut.Signal("count", counterWidth, c.count.value)
	dut.Signal("carry", 1, c.carry.value)
}
