package vcd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbsim/tbsim/sim"
)

var fixedDate = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestWriter() *Writer {
	w := NewWriter(nil)
	w.Now = func() time.Time { return fixedDate }
	return w
}

func TestWriter_HeaderAndChanges(t *testing.T) {
	// GIVEN a writer with one top-level scalar and one nested vector
	w := newTestWriter()
	var clk, count uint64
	w.Signal("clk", 1, func() uint64 { return clk })
	w.Scope("dut").Signal("count", 8, func() uint64 { return count })

	var buf bytes.Buffer
	require.NoError(t, w.OpenWriter(&buf))

	// WHEN four steps are dumped, one of them with no change
	require.NoError(t, w.Dump(0))
	clk = 1
	require.NoError(t, w.Dump(1))
	require.NoError(t, w.Dump(2))
	count = 5
	require.NoError(t, w.Dump(3))
	require.NoError(t, w.Close())

	// THEN the output holds the header, $dumpvars, a stamp per step and only real changes
	want := "$date\n\t" + fixedDate.Format(time.ANSIC) + "\n$end\n" +
		"$version\n\ttbsim\n$end\n" +
		"$timescale 1ns $end\n" +
		"$scope module TOP $end\n" +
		" $var wire 1 ! clk $end\n" +
		" $scope module dut $end\n" +
		"  $var wire 8 \" count [7:0] $end\n" +
		" $upscope $end\n" +
		"$upscope $end\n" +
		"$enddefinitions $end\n" +
		"#0\n$dumpvars\n0!\nb0 \"\n$end\n" +
		"#1\n1!\n" +
		"#2\n" +
		"#3\nb101 \"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_RunIDComment(t *testing.T) {
	env, err := sim.NewEnvironment(nil, sim.EnvOptions{TraceEverOn: true, RunID: "abc-123"})
	require.NoError(t, err)
	w := NewWriter(env)
	var buf bytes.Buffer
	require.NoError(t, w.OpenWriter(&buf))
	require.NoError(t, w.Close())
	assert.Contains(t, buf.String(), "$comment\n\trun abc-123\n$end\n")
}

func TestWriter_Open_WritesFile(t *testing.T) {
	// GIVEN a writer bound to one signal
	w := newTestWriter()
	w.Signal("x", 1, func() uint64 { return 1 })
	path := filepath.Join(t.TempDir(), "waveform.vcd")

	// WHEN opened against a path, dumped once and closed
	require.NoError(t, w.Open(path))
	require.NoError(t, w.Dump(0))
	require.NoError(t, w.Close())

	// THEN the file exists and contains the dump
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "#0\n$dumpvars\n1!\n$end\n"))
}

func TestWriter_Open_BadPath(t *testing.T) {
	w := newTestWriter()
	err := w.Open(filepath.Join(t.TempDir(), "missing", "dir", "w.vcd"))
	assert.Error(t, err)
}

func TestWriter_StateErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func(w *Writer) error
		want error
	}{
		{"dump before open", func(w *Writer) error { return w.Dump(0) }, ErrNotOpen},
		{"open twice", func(w *Writer) error {
			_ = w.OpenWriter(&bytes.Buffer{})
			return w.OpenWriter(&bytes.Buffer{})
		}, ErrAlreadyOpen},
		{"dump after close", func(w *Writer) error {
			_ = w.OpenWriter(&bytes.Buffer{})
			_ = w.Close()
			return w.Dump(0)
		}, ErrClosed},
		{"open after close", func(w *Writer) error {
			_ = w.Close()
			return w.OpenWriter(&bytes.Buffer{})
		}, ErrClosed},
		{"bind after open", func(w *Writer) error {
			_ = w.OpenWriter(&bytes.Buffer{})
			w.Signal("late", 1, func() uint64 { return 0 })
			return w.Dump(0)
		}, ErrBindAfterOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(newTestWriter())
			assert.Equal(t, tt.want, errors.Cause(err))
		})
	}
}

func TestWriter_Dump_DecreasingTimestamp(t *testing.T) {
	w := newTestWriter()
	require.NoError(t, w.OpenWriter(&bytes.Buffer{}))
	require.NoError(t, w.Dump(5))
	assert.Error(t, w.Dump(4))
}

func TestWriter_Close_Twice(t *testing.T) {
	w := newTestWriter()
	require.NoError(t, w.OpenWriter(&bytes.Buffer{}))
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWriter_Scope_ReusesExistingScope(t *testing.T) {
	// GIVEN two bindings into the same nested scope name
	w := newTestWriter()
	w.Scope("tb").Signal("a", 1, func() uint64 { return 0 })
	w.Scope("tb").Signal("b", 1, func() uint64 { return 0 })

	var buf bytes.Buffer
	require.NoError(t, w.OpenWriter(&buf))
	require.NoError(t, w.Close())

	// THEN the scope is declared once
	assert.Equal(t, 1, strings.Count(buf.String(), "$scope module tb $end"))
	assert.Equal(t, 2, w.SignalCount())
}

func TestIdentifier_UniqueAndPrintable(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20000; i++ {
		id := identifier(i)
		require.False(t, seen[id], "identifier %d repeats %q", i, id)
		seen[id] = true
		for _, c := range id {
			require.True(t, c >= '!' && c <= '~', "identifier %d has %q", i, c)
		}
	}
	assert.Equal(t, "!", identifier(0))
	assert.Equal(t, "~", identifier(93))
	assert.Equal(t, "!!", identifier(94))
}

// failAfter accepts limit bytes, then fails every write.
type failAfter struct {
	limit int
	n     int
}

func (f *failAfter) Write(p []byte) (int, error) {
	if f.n+len(p) > f.limit {
		return 0, errors.New("disk full")
	}
	f.n += len(p)
	return len(p), nil
}

func TestWriter_Dump_SurfacesWriteErrorBeforeClose(t *testing.T) {
	// GIVEN a destination that fails shortly after the header
	w := newTestWriter()
	v := uint64(0)
	w.Signal("v", 1, func() uint64 { return v })
	require.NoError(t, w.OpenWriter(&failAfter{limit: 1024}))

	// WHEN many steps are dumped
	var err error
	step := uint64(0)
	for ; step < 100000 && err == nil; step++ {
		v ^= 1
		err = w.Dump(step)
	}

	// THEN Dump itself reports the failure long before the loop ends
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Less(t, step, uint64(2000))
	assert.Error(t, w.Dump(step), "error is sticky")
}

func TestWriter_Dump_StampsQuietSteps(t *testing.T) {
	// GIVEN a constant signal
	w := newTestWriter()
	w.Signal("c", 1, func() uint64 { return 1 })
	var buf bytes.Buffer
	require.NoError(t, w.OpenWriter(&buf))

	// WHEN five steps are dumped
	for step := uint64(0); step < 5; step++ {
		require.NoError(t, w.Dump(step))
	}
	require.NoError(t, w.Close())

	// THEN every step appears on the time axis
	wf, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, wf.Times)
}
