// Package classify maps declared test-type identifiers to execution
// behavior and decides, with a fixed precedence, whether a test is skipped.
package classify

// Vocabulary IRIs for the recognized test types.
const (
	mfNS = "http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#"
	utNS = "http://www.w3.org/2009/sparql/tests/test-update#"

	TypePositiveSyntax         = mfNS + "PositiveSyntaxTest"
	TypePositiveSyntax11       = mfNS + "PositiveSyntaxTest11"
	TypeNegativeSyntax         = mfNS + "NegativeSyntaxTest"
	TypeNegativeSyntax11       = mfNS + "NegativeSyntaxTest11"
	TypePositiveUpdateSyntax11 = mfNS + "PositiveUpdateSyntaxTest11"
	TypeNegativeUpdateSyntax11 = mfNS + "NegativeUpdateSyntaxTest11"
	TypeQueryEvaluation        = mfNS + "QueryEvaluationTest"
	TypeCSVResultFormat        = mfNS + "CSVResultFormatTest"
	TypeTSVResultFormat        = mfNS + "TSVResultFormatTest"
	TypeUpdateEvaluation       = utNS + "UpdateEvaluationTest"
	TypeMFUpdateEvaluation     = mfNS + "UpdateEvaluationTest"
	TypeProtocol               = mfNS + "ProtocolTest"
	TypeServiceDescription     = mfNS + "ServiceDescriptionTest"
	TypeService                = mfNS + "ServiceTest"
)

// Outcome is the outcome a behavior expects from its test.
type Outcome string

const (
	ExpectPassed  Outcome = "passed"
	ExpectFailed  Outcome = "failed"
	ExpectSkipped Outcome = "skipped"
)

// Dialect tags for the language variant a test exercises.
const (
	DialectBase     = "sparql"
	DialectSPARQL11 = "sparql11"
	DialectUpdate   = "sparql11-update"
)

// Behavior is the (should-execute, expected-outcome, dialect) triple a
// test-type identifier resolves to.
type Behavior struct {
	// Execute reports whether the query engine runs at all. Syntax-only
	// tests never execute; their outcome comes from the parse phase.
	Execute bool

	// Expect is the outcome the harness expects when the test runs (or,
	// for negative syntax tests, the outcome "engine rejects input").
	Expect Outcome

	// Dialect selects the language variant passed to the engine.
	Dialect string
}

// DefaultBehavior is the documented fallback for unrecognized or absent
// test-type identifiers: execute, expect passed, base dialect.
var DefaultBehavior = Behavior{Execute: true, Expect: ExpectPassed, Dialect: DialectBase}

// behaviors is the fixed classification table. It is resolved once at
// package initialization; unknown identifiers take DefaultBehavior.
var behaviors = map[string]Behavior{
	// Syntax-only tests never execute. Positive variants expect the
	// engine's parser to accept, negative variants to reject.
	TypePositiveSyntax:         {Execute: false, Expect: ExpectPassed, Dialect: DialectBase},
	TypePositiveSyntax11:       {Execute: false, Expect: ExpectPassed, Dialect: DialectSPARQL11},
	TypeNegativeSyntax:         {Execute: false, Expect: ExpectFailed, Dialect: DialectBase},
	TypeNegativeSyntax11:       {Execute: false, Expect: ExpectFailed, Dialect: DialectSPARQL11},
	TypePositiveUpdateSyntax11: {Execute: false, Expect: ExpectPassed, Dialect: DialectUpdate},
	TypeNegativeUpdateSyntax11: {Execute: false, Expect: ExpectFailed, Dialect: DialectUpdate},

	// Evaluation tests execute and expect a matching result.
	TypeQueryEvaluation: {Execute: true, Expect: ExpectPassed, Dialect: DialectBase},

	// Result-format tests execute under the SPARQL 1.1 dialect.
	TypeCSVResultFormat: {Execute: true, Expect: ExpectPassed, Dialect: DialectSPARQL11},
	TypeTSVResultFormat: {Execute: true, Expect: ExpectPassed, Dialect: DialectSPARQL11},

	// Service invocation executes under SPARQL 1.1 and is expected to
	// pass where a remote endpoint is available.
	TypeService: {Execute: true, Expect: ExpectPassed, Dialect: DialectSPARQL11},

	// Unsupported categories are always skipped regardless of any
	// execute flag.
	TypeUpdateEvaluation:   {Execute: false, Expect: ExpectSkipped, Dialect: DialectUpdate},
	TypeMFUpdateEvaluation: {Execute: false, Expect: ExpectSkipped, Dialect: DialectUpdate},
	TypeProtocol:           {Execute: false, Expect: ExpectSkipped, Dialect: DialectSPARQL11},
	TypeServiceDescription: {Execute: false, Expect: ExpectSkipped, Dialect: DialectSPARQL11},
}

// Lookup resolves a test-type identifier to its behavior triple. Every
// identifier resolves to exactly one behavior; unrecognized identifiers
// and the empty identifier take DefaultBehavior.
func Lookup(testType string) Behavior {
	if b, ok := behaviors[testType]; ok {
		return b
	}
	return DefaultBehavior
}

// Unsupported reports whether the identifier is in the always-skipped set.
func Unsupported(testType string) bool {
	return Lookup(testType).Expect == ExpectSkipped
}

// Flags carries the per-test skip inputs derived during manifest
// resolution, plus the run-level approval-filtering switch.
type Flags struct {
	Approved        bool
	Withdrawn       bool
	HasEntailment   bool
	RequireApproval bool
}

// SkipReason names why a test is skipped; empty means it runs.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipWithdrawn       SkipReason = "withdrawn"
	SkipNotApproved     SkipReason = "not approved"
	SkipEntailment      SkipReason = "entailment regime"
	SkipUnsupportedType SkipReason = "unsupported test type"
)

// Skip applies the skip-condition precedence chain and returns the first
// matching reason. The precedence is total: withdrawn always wins; among
// non-withdrawn tests, not-approved (when approval filtering is requested)
// outranks entailment-regime exclusion, which outranks unsupported-type
// exclusion.
func Skip(testType string, f Flags) SkipReason {
	switch {
	case f.Withdrawn:
		return SkipWithdrawn
	case f.RequireApproval && !f.Approved:
		return SkipNotApproved
	case f.HasEntailment:
		return SkipEntailment
	case Unsupported(testType):
		return SkipUnsupportedType
	default:
		return SkipNone
	}
}

// ShouldRun reports whether the test proceeds per its behavior triple.
// ShouldRun(t, f) is true exactly when Skip(t, f) returns no reason.
func ShouldRun(testType string, f Flags) bool {
	return Skip(testType, f) == SkipNone
}
