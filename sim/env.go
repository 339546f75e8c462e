package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RandResetPolicy selects how registers without an explicit reset value are
// initialized when a model is constructed.
type RandResetPolicy int

const (
	// RandResetZeros initializes every register to 0 (deterministic).
	RandResetZeros RandResetPolicy = 0
	// RandResetOnes initializes every register to all ones (deterministic).
	RandResetOnes RandResetPolicy = 1
	// RandResetRandom initializes registers from the seeded PartitionedRNG.
	// Still reproducible for a given seed.
	RandResetRandom RandResetPolicy = 2
)

func (p RandResetPolicy) String() string {
	switch p {
	case RandResetZeros:
		return "zeros"
	case RandResetOnes:
		return "ones"
	case RandResetRandom:
		return "random"
	}
	return fmt.Sprintf("RandResetPolicy(%d)", int(p))
}

// EnvOptions groups the one-time settings applied before any model exists.
type EnvOptions struct {
	Debug       int             // model debug verbosity; 0 disables
	RandReset   RandResetPolicy // initial register values
	Seed        int64           // seed for RandResetRandom
	TraceEverOn bool            // trace capability; false skips binding entirely
	RunID       string          // optional; generated when empty
}

// Environment is the immutable process-wide configuration handed to every
// model and sink constructor. Build it once with NewEnvironment.
type Environment struct {
	args []string
	opts EnvOptions
}

// NewEnvironment validates opts and captures args (the process argument
// vector, forwarded unexamined).
func NewEnvironment(args []string, opts EnvOptions) (*Environment, error) {
	if opts.Debug < 0 {
		return nil, errors.Errorf("debug level must be >= 0, got %d", opts.Debug)
	}
	switch opts.RandReset {
	case RandResetZeros, RandResetOnes, RandResetRandom:
	default:
		return nil, errors.Errorf("unknown rand-reset policy %d (want 0, 1 or 2)", int(opts.RandReset))
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Environment{
		args: append([]string(nil), args...),
		opts: opts,
	}, nil
}

// Args returns a copy of the forwarded argument vector.
func (e *Environment) Args() []string { return append([]string(nil), e.args...) }

// Debug returns the model debug level; zero silences Debugf.
func (e *Environment) Debug() int { return e.opts.Debug }

// RandReset returns the policy applied to state that has no explicit reset.
func (e *Environment) RandReset() RandResetPolicy { return e.opts.RandReset }

// Seed returns the seed behind RandResetRandom initial values.
func (e *Environment) Seed() int64 { return e.opts.Seed }

// TraceEverOn reports whether the run binds and writes a trace at all.
func (e *Environment) TraceEverOn() bool { return e.opts.TraceEverOn }

// RunID returns the uuid identifying this run in logs and trace headers.
func (e *Environment) RunID() string { return e.opts.RunID }

// PlusArg looks up a "+name=value" argument. A bare "+name" yields ("", true).
// The last occurrence wins.
func (e *Environment) PlusArg(name string) (string, bool) {
	var (
		val   string
		found bool
	)
	for _, a := range e.args {
		if !strings.HasPrefix(a, "+") {
			continue
		}
		k, v, _ := strings.Cut(a[1:], "=")
		if k == name {
			val, found = v, true
		}
	}
	return val, found
}

// PlusArgUint parses a decimal plusarg, returning def when it is absent.
// Leading zeros are ignored; prefixes such as 0x are rejected.
func (e *Environment) PlusArgUint(name string, def uint64) (uint64, error) {
	v, ok := e.PlusArg(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "plusarg +%s", name)
	}
	return n, nil
}

// Debugf logs a model debug message when the debug level is non-zero.
func (e *Environment) Debugf(format string, args ...any) {
	if e.opts.Debug > 0 {
		logrus.WithField("run", e.opts.RunID).Debugf(format, args...)
	}
}

// NewInitializer returns a register initializer honoring the rand-reset
// policy. Each model should own its own initializer.
func (e *Environment) NewInitializer() *Initializer {
	return &Initializer{
		policy: e.opts.RandReset,
		rng:    NewPartitionedRNG(NewSimulationKey(e.opts.Seed)),
	}
}

// Initializer produces the power-on value of uninitialized registers.
type Initializer struct {
	policy RandResetPolicy
	rng    *PartitionedRNG
}

// Value returns the initial value for the register at path, masked to width
// bits (1..64).
func (in *Initializer) Value(path string, width int) uint64 {
	mask := WidthMask(width)
	switch in.policy {
	case RandResetOnes:
		return mask
	case RandResetRandom:
		return in.rng.ForScope(path).Uint64() & mask
	}
	return 0
}

// WidthMask returns a mask with the low width bits set. Widths <= 0 yield 0.
func WidthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	if width <= 0 {
		return 0
	}
	return 1<<uint(width) - 1
}
