package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectWaveform_SummarizesRun(t *testing.T) {
	// GIVEN a waveform written by a counter run
	opts := testOptions(t)
	opts.Args = []string{"+cycles=10"}
	_, err := runSimulation(opts)
	require.NoError(t, err)

	// WHEN inspected
	var out bytes.Buffer
	require.NoError(t, inspectWaveform(&out, opts.TraceFile))

	// THEN the summary lists the hierarchy and time span
	s := out.String()
	assert.Contains(t, s, "=== Waveform ===")
	assert.Contains(t, s, "Signals     : 5")
	assert.Contains(t, s, "Time span   : 0..18 (19 timestamps)")
	assert.Contains(t, s, "TOP.tb.dut.count")
}

func TestInspectWaveform_MissingFile(t *testing.T) {
	err := inspectWaveform(&bytes.Buffer{}, filepath.Join(t.TempDir(), "none.vcd"))
	assert.Error(t, err)
}

func TestDesignsCmd_ListsBuiltins(t *testing.T) {
	var out bytes.Buffer
	designsCmd.SetOut(&out)
	designsCmd.Run(designsCmd, nil)
	assert.Contains(t, out.String(), "counter")
	assert.Contains(t, out.String(), "lfsr")
}
