// Package vcd implements a Value Change Dump (IEEE 1364) trace sink and a
// minimal reader for the files it produces.
package vcd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tbsim/tbsim/sim"
)

var (
	ErrAlreadyOpen   = errors.New("vcd: already open")
	ErrNotOpen       = errors.New("vcd: not open")
	ErrClosed        = errors.New("vcd: closed")
	ErrBindAfterOpen = errors.New("vcd: signal bound after open")
)

// TopScope wraps every bound signal so that top-level signals still live in a
// module scope.
const TopScope = "TOP"

type signal struct {
	id    string
	name  string
	width int
	read  func() uint64
	last  uint64
}

type scopeNode struct {
	name     string
	signals  []*signal
	children []*scopeNode
	byName   map[string]*scopeNode
}

func newScopeNode(name string) *scopeNode {
	return &scopeNode{name: name, byName: make(map[string]*scopeNode)}
}

// Writer is a sim.TraceSink that encodes captures as VCD.
type Writer struct {
	// Now stamps the $date section. Defaults to time.Now.
	Now func() time.Time
	// Version is written in the $version section.
	Version string

	env     *sim.Environment
	root    *scopeNode
	signals []*signal

	closer   io.Closer
	sink     *errWriter
	bw       *bufio.Writer
	open     bool
	closed   bool
	dumped   bool
	lastTime uint64
	err      error
}

// NewWriter returns a Writer for env. env may be nil, in which case no run id
// is written.
func NewWriter(env *sim.Environment) *Writer {
	return &Writer{
		Now:     time.Now,
		Version: "tbsim",
		env:     env,
		root:    newScopeNode(TopScope),
	}
}

// NewSink is a sim.SinkFactory producing VCD writers.
func NewSink(env *sim.Environment) (sim.TraceSink, error) {
	return NewWriter(env), nil
}

// Scope implements sim.TraceScope.
func (w *Writer) Scope(name string) sim.TraceScope {
	return (&writerScope{w: w, node: w.root}).Scope(name)
}

// Signal implements sim.TraceScope.
func (w *Writer) Signal(name string, width int, read func() uint64) {
	(&writerScope{w: w, node: w.root}).Signal(name, width, read)
}

// SignalCount returns the number of bound signals.
func (w *Writer) SignalCount() int { return len(w.signals) }

// Open creates the file at path and writes the VCD header.
func (w *Writer) Open(path string) error {
	if err := w.checkOpenable(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "vcd: create")
	}
	if err := w.OpenWriter(f); err != nil {
		f.Close()
		return err
	}
	w.closer = f
	return nil
}

// OpenWriter starts writing to out instead of a file. Close does not close
// out.
func (w *Writer) OpenWriter(out io.Writer) error {
	if err := w.checkOpenable(); err != nil {
		return err
	}
	w.sink = &errWriter{w: out}
	w.bw = bufio.NewWriter(w.sink)
	w.open = true
	w.writeHeader()
	return w.flushErr()
}

func (w *Writer) checkOpenable() error {
	switch {
	case w.closed:
		return ErrClosed
	case w.open:
		return ErrAlreadyOpen
	}
	return w.err
}

func (w *Writer) writeHeader() {
	fmt.Fprintf(w.bw, "$date\n\t%s\n$end\n", w.Now().Format(time.ANSIC))
	fmt.Fprintf(w.bw, "$version\n\t%s\n$end\n", w.Version)
	if w.env != nil {
		fmt.Fprintf(w.bw, "$comment\n\trun %s\n$end\n", w.env.RunID())
	}
	fmt.Fprint(w.bw, "$timescale 1ns $end\n")
	w.writeScope(w.root, 0)
	fmt.Fprint(w.bw, "$enddefinitions $end\n")
}

func (w *Writer) writeScope(n *scopeNode, indent int) {
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(w.bw, "%s$scope module %s $end\n", pad, n.name)
	for _, s := range n.signals {
		if s.width == 1 {
			fmt.Fprintf(w.bw, "%s $var wire 1 %s %s $end\n", pad, s.id, s.name)
		} else {
			fmt.Fprintf(w.bw, "%s $var wire %d %s %s [%d:0] $end\n", pad, s.width, s.id, s.name, s.width-1)
		}
	}
	for _, c := range n.children {
		w.writeScope(c, indent+1)
	}
	fmt.Fprintf(w.bw, "%s$upscope $end\n", pad)
}

// Dump writes timestamp t followed by the values that changed since the
// previous dump. Every call advances the time axis, even when nothing
// changed. The first dump writes every value inside $dumpvars. Timestamps
// must not decrease.
func (w *Writer) Dump(t uint64) error {
	switch {
	case w.err != nil:
		return w.err
	case w.closed:
		return ErrClosed
	case !w.open:
		return ErrNotOpen
	}

	if !w.dumped {
		fmt.Fprintf(w.bw, "#%d\n$dumpvars\n", t)
		for _, s := range w.signals {
			s.last = s.read() & sim.WidthMask(s.width)
			w.writeValue(s)
		}
		fmt.Fprint(w.bw, "$end\n")
		w.dumped = true
		w.lastTime = t
		return w.flushErr()
	}

	if t < w.lastTime {
		return errors.Errorf("vcd: timestamp %d before %d", t, w.lastTime)
	}
	if t > w.lastTime {
		fmt.Fprintf(w.bw, "#%d\n", t)
	}
	for _, s := range w.signals {
		v := s.read() & sim.WidthMask(s.width)
		if v == s.last {
			continue
		}
		s.last = v
		w.writeValue(s)
	}
	w.lastTime = t
	return w.writeErr()
}

func (w *Writer) writeValue(s *signal) {
	if s.width == 1 {
		fmt.Fprintf(w.bw, "%d%s\n", s.last, s.id)
		return
	}
	fmt.Fprintf(w.bw, "b%s %s\n", strconv.FormatUint(s.last, 2), s.id)
}

// writeErr reports a failure of the underlying writer as soon as bufio hits
// it, without forcing a flush on every step.
func (w *Writer) writeErr() error {
	if w.err == nil && w.sink.err != nil {
		w.err = errors.Wrap(w.sink.err, "vcd: write")
	}
	return w.err
}

// flushErr records write errors so they surface on the next call.
func (w *Writer) flushErr() error {
	if err := w.bw.Flush(); err != nil && w.err == nil {
		w.err = errors.Wrap(err, "vcd: write")
	}
	return w.err
}

// Close flushes buffered output and closes the file opened by Open. Closing
// twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if !w.open {
		return nil
	}
	w.open = false
	err := w.flushErr()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "vcd: close")
		}
	}
	return err
}

// errWriter remembers the first error of the wrapped writer.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

type writerScope struct {
	w    *Writer
	node *scopeNode
}

func (s *writerScope) Scope(name string) sim.TraceScope {
	child, ok := s.node.byName[name]
	if !ok {
		child = newScopeNode(name)
		s.node.byName[name] = child
		s.node.children = append(s.node.children, child)
	}
	return &writerScope{w: s.w, node: child}
}

func (s *writerScope) Signal(name string, width int, read func() uint64) {
	if s.w.open || s.w.closed {
		s.w.err = ErrBindAfterOpen
		return
	}
	if width < 1 {
		width = 1
	}
	if width > 64 {
		width = 64
	}
	sig := &signal{id: identifier(len(s.w.signals)), name: name, width: width, read: read}
	s.node.signals = append(s.node.signals, sig)
	s.w.signals = append(s.w.signals, sig)
}

// identifier encodes n in the printable VCD identifier alphabet '!'..'~'.
func identifier(n int) string {
	const base = '~' - '!' + 1
	var b []byte
	for {
		b = append(b, byte('!'+n%base))
		n /= base
		if n == 0 {
			break
		}
		n--
	}
	return string(b)
}
