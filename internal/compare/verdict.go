package compare

// Outcome is the comparison outcome category.
type Outcome string

const (
	// OutcomeMatch means the results are semantically equivalent.
	OutcomeMatch Outcome = "match"

	// OutcomeMismatch means both results are well-formed but semantically
	// unequal. The normal failure path; always carries a diagnostic.
	OutcomeMismatch Outcome = "mismatch"

	// OutcomeUnresolved means the comparison could not be decided, e.g.
	// malformed output or a comparator tool failure. Never conflated
	// with mismatch.
	OutcomeUnresolved Outcome = "unresolved"
)

// Verdict is the comparator's answer for one expected/actual pair.
type Verdict struct {
	Outcome Outcome

	// Diagnostic is human-readable expected-vs-actual content for
	// mismatches, truncated if large.
	Diagnostic string

	// Reason explains an unresolved outcome.
	Reason string
}

// Matched reports whether the verdict is a match.
func (v Verdict) Matched() bool { return v.Outcome == OutcomeMatch }

// Match is the successful verdict.
func Match() Verdict {
	return Verdict{Outcome: OutcomeMatch}
}

// Mismatch builds a failure verdict with a diagnostic.
func Mismatch(diagnostic string) Verdict {
	return Verdict{Outcome: OutcomeMismatch, Diagnostic: diagnostic}
}

// Unresolved builds an undecidable verdict with a reason.
func Unresolved(reason string) Verdict {
	return Verdict{Outcome: OutcomeUnresolved, Reason: reason}
}
