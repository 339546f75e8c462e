// Package testutil provides shared test infrastructure for the sim packages:
// driving a model into a real VCD file and reading the result back.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tbsim/tbsim/sim"
	"github.com/tbsim/tbsim/sim/vcd"
)

// FixedDate stamps waveforms written by RunVCD so output is byte-stable.
var FixedDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// RunVCD drives newModel for at most maxSteps into a VCD file under
// t.TempDir() and returns the result, the raw file and the parsed waveform.
func RunVCD(t *testing.T, env *sim.Environment, newModel sim.ModelFactory, maxSteps uint64) (sim.Result, []byte, *vcd.Waveform) {
	t.Helper()

	d := sim.NewDriver(env)
	d.MaxSteps = maxSteps
	d.TraceFile = filepath.Join(t.TempDir(), sim.DefaultTraceFile)
	res, err := d.Run(newModel, func(env *sim.Environment) (sim.TraceSink, error) {
		w := vcd.NewWriter(env)
		w.Now = func() time.Time { return FixedDate }
		return w, nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(d.TraceFile)
	if err != nil {
		t.Fatalf("read waveform: %v", err)
	}
	wf, err := vcd.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse waveform: %v", err)
	}
	return res, data, wf
}
