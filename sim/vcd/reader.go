package vcd

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Signal is a declared variable in a waveform.
type Signal struct {
	ID    string
	Path  string // dotted, including the top scope
	Width int
}

// Change is one value change of a signal.
type Change struct {
	Time  uint64
	Value uint64
}

// Waveform is the parsed content of a VCD file.
type Waveform struct {
	Date      string
	Version   string
	Comment   string
	Timescale string
	Signals   []Signal
	Times     []uint64            // every #timestamp in file order
	Changes   map[string][]Change // keyed by signal ID
}

// Read parses a VCD stream. It understands the subset produced by Writer:
// two-state scalars and binary vectors.
func Read(r io.Reader) (*Waveform, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	wf := &Waveform{Changes: make(map[string][]Change)}
	var (
		scopes []string
		now    uint64
	)

	// section collects words up to the matching $end.
	section := func(kw string) ([]string, error) {
		var words []string
		for sc.Scan() {
			if sc.Text() == "$end" {
				return words, nil
			}
			words = append(words, sc.Text())
		}
		return nil, errors.Errorf("vcd: unterminated %s", kw)
	}

	for sc.Scan() {
		tok := sc.Text()
		switch {
		case tok == "$date", tok == "$version", tok == "$comment", tok == "$timescale":
			words, err := section(tok)
			if err != nil {
				return nil, err
			}
			text := strings.Join(words, " ")
			switch tok {
			case "$date":
				wf.Date = text
			case "$version":
				wf.Version = text
			case "$comment":
				wf.Comment = text
			default:
				wf.Timescale = text
			}
		case tok == "$scope":
			words, err := section(tok)
			if err != nil {
				return nil, err
			}
			if len(words) != 2 {
				return nil, errors.Errorf("vcd: malformed $scope %v", words)
			}
			scopes = append(scopes, words[1])
		case tok == "$upscope":
			if _, err := section(tok); err != nil {
				return nil, err
			}
			if len(scopes) == 0 {
				return nil, errors.New("vcd: $upscope without $scope")
			}
			scopes = scopes[:len(scopes)-1]
		case tok == "$var":
			words, err := section(tok)
			if err != nil {
				return nil, err
			}
			if len(words) < 4 {
				return nil, errors.Errorf("vcd: malformed $var %v", words)
			}
			width, err := strconv.Atoi(words[1])
			if err != nil {
				return nil, errors.Wrapf(err, "vcd: $var %s width", words[3])
			}
			path := strings.Join(append(append([]string(nil), scopes...), words[3]), ".")
			wf.Signals = append(wf.Signals, Signal{ID: words[2], Path: path, Width: width})
		case tok == "$enddefinitions", tok == "$dumpvars":
			if tok == "$enddefinitions" {
				if _, err := section(tok); err != nil {
					return nil, err
				}
			}
		case tok == "$end":
			// closes $dumpvars
		case strings.HasPrefix(tok, "#"):
			t, err := strconv.ParseUint(tok[1:], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "vcd: timestamp %q", tok)
			}
			now = t
			wf.Times = append(wf.Times, t)
		case tok[0] == 'b' || tok[0] == 'B':
			if !sc.Scan() {
				return nil, errors.Errorf("vcd: vector %q without identifier", tok)
			}
			v, err := strconv.ParseUint(tok[1:], 2, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "vcd: vector value %q", tok)
			}
			wf.Changes[sc.Text()] = append(wf.Changes[sc.Text()], Change{Time: now, Value: v})
		case tok[0] == '0' || tok[0] == '1':
			id := tok[1:]
			if id == "" {
				return nil, errors.Errorf("vcd: scalar %q without identifier", tok)
			}
			wf.Changes[id] = append(wf.Changes[id], Change{Time: now, Value: uint64(tok[0] - '0')})
		default:
			return nil, errors.Errorf("vcd: unexpected token %q", tok)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "vcd: read")
	}
	return wf, nil
}

// Lookup returns the signal declared at path.
func (wf *Waveform) Lookup(path string) (Signal, bool) {
	for _, s := range wf.Signals {
		if s.Path == path {
			return s, true
		}
	}
	return Signal{}, false
}

// ValueAt returns the value of the signal at path at time t, i.e. the last
// change at or before t.
func (wf *Waveform) ValueAt(path string, t uint64) (uint64, bool) {
	s, ok := wf.Lookup(path)
	if !ok {
		return 0, false
	}
	ch := wf.Changes[s.ID]
	i := sort.Search(len(ch), func(i int) bool { return ch[i].Time > t })
	if i == 0 {
		return 0, false
	}
	return ch[i-1].Value, true
}
