package designs

import "github.com/tbsim/tbsim/sim"

// clock is a free-running clock owned by a testbench. It starts low.
type clock struct {
	level uint64
	edges uint64 // rising edges seen so far
}

// toggle flips the clock and reports whether this was a rising edge.
func (c *clock) toggle() bool {
	c.level ^= 1
	if c.level == 1 {
		c.edges++
		return true
	}
	return false
}

func (c *clock) value() uint64 { return c.level }

// reg is a width-bit register. Its power-on value comes from the
// environment's rand-reset policy.
type reg struct {
	q     uint64
	width int
}

func newReg(ini *sim.Initializer, path string, width int) reg {
	return reg{q: ini.Value(path, width), width: width}
}

// latch stores d, truncated to the register width.
func (r *reg) latch(d uint64) { r.q = d & sim.WidthMask(r.width) }

func (r *reg) value() uint64 { return r.q }
