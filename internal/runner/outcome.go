package runner

import "time"

// Status is the final disposition of one test case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"

	// StatusUnresolved marks comparisons that could not be decided,
	// e.g. malformed engine output.
	StatusUnresolved Status = "unresolved"

	// StatusError marks configuration and execution errors: missing
	// files, engine crash or start failure.
	StatusError Status = "error"

	// StatusTimeout marks an engine invocation that exceeded its bound.
	StatusTimeout Status = "timeout"
)

// Outcome attributes one disposition to one test, whatever order the
// batch completed in.
type Outcome struct {
	Name       string        `json:"name"`
	URI        string        `json:"uri,omitempty"`
	Status     Status        `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Diagnostic string        `json:"diagnostic,omitempty"`
	Stderr     string        `json:"stderr,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// Summary aggregates a batch.
type Summary struct {
	Outcomes   []Outcome `json:"outcomes"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Unresolved int       `json:"unresolved"`
	Errored    int       `json:"errored"`
	TimedOut   int       `json:"timed_out"`
	Total      int       `json:"total"`
}

// add records one outcome in the tally.
func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	s.Total++
	switch o.Status {
	case StatusPassed:
		s.Passed++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	case StatusUnresolved:
		s.Unresolved++
	case StatusError:
		s.Errored++
	case StatusTimeout:
		s.TimedOut++
	}
}

// Clean reports whether nothing failed, errored, or went unresolved.
func (s *Summary) Clean() bool {
	return s.Failed == 0 && s.Unresolved == 0 && s.Errored == 0 && s.TimedOut == 0
}
