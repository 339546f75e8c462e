package trace

// TraceSummary aggregates statistics from a Recorder.
type TraceSummary struct {
	Captures   int
	FirstTime  uint64
	LastTime   uint64
	Signals    int
	Contiguous bool // timestamps are exactly 0, 1, ..., Captures-1
	Closes     int
}

// Summarize computes aggregate statistics from a Recorder.
// Safe for nil or empty recorders (returns zero-value fields, Contiguous=true).
func Summarize(r *Recorder) *TraceSummary {
	summary := &TraceSummary{Contiguous: true}
	if r == nil {
		return summary
	}
	summary.Signals = len(r.Signals)
	summary.Closes = r.Closes
	summary.Captures = len(r.Captures)
	if summary.Captures == 0 {
		return summary
	}
	summary.FirstTime = r.Captures[0].Time
	summary.LastTime = r.Captures[len(r.Captures)-1].Time
	for i, c := range r.Captures {
		if c.Time != uint64(i) {
			summary.Contiguous = false
			break
		}
	}
	return summary
}
