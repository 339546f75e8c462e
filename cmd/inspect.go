package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/tbsim/tbsim/sim/vcd"
)

// inspectWaveform prints the header, signal table and time span of a VCD.
func inspectWaveform(out io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open waveform")
	}
	defer f.Close()

	wf, err := vcd.Read(f)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Waveform ===")
	fmt.Fprintf(out, "File        : %s\n", path)
	if wf.Comment != "" {
		fmt.Fprintf(out, "Comment     : %s\n", wf.Comment)
	}
	fmt.Fprintf(out, "Timescale   : %s\n", wf.Timescale)
	fmt.Fprintf(out, "Signals     : %d\n", len(wf.Signals))
	if n := len(wf.Times); n > 0 {
		fmt.Fprintf(out, "Time span   : %d..%d (%d timestamps)\n", wf.Times[0], wf.Times[n-1], n)
	} else {
		fmt.Fprintln(out, "Time span   : empty")
	}
	for _, s := range wf.Signals {
		fmt.Fprintf(out, "  %-30s %3d bit  %6d changes\n", s.Path, s.Width, len(wf.Changes[s.ID]))
	}
	return nil
}
