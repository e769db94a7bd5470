package runner

import (
	"errors"
	"fmt"
)

// HarnessError categorizes a per-test failure that is not a semantic
// mismatch. The category keeps configuration problems, engine-process
// problems, and malformed output apart in reports.
type HarnessError struct {
	Code    ErrorCode
	Message string
	Test    string
	Err     error
}

// ErrorCode identifies the error category.
type ErrorCode string

const (
	// ErrCodeConfig covers missing manifest/test/data files. Fatal to
	// that test only; the test is reported and skipped.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeExecution covers an engine process that failed to start,
	// crashed, or timed out.
	ErrCodeExecution ErrorCode = "EXECUTION_ERROR"

	// ErrCodeParse covers malformed serialized output. Surfaces as an
	// unresolved outcome, never as mismatch or match.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
)

// Error implements the error interface.
func (e *HarnessError) Error() string {
	if e.Test != "" {
		return fmt.Sprintf("%s: %s (test=%s)", e.Code, e.Message, e.Test)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *HarnessError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is a configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var he *HarnessError
	return errors.As(err, &he) && he.Code == ErrCodeConfig
}

// NewConfigError builds a configuration error for one test.
func NewConfigError(test, message string, err error) *HarnessError {
	return &HarnessError{Code: ErrCodeConfig, Message: message, Test: test, Err: err}
}

// NewExecError builds an engine-process error for one test.
func NewExecError(test, message string, err error) *HarnessError {
	return &HarnessError{Code: ErrCodeExecution, Message: message, Test: test, Err: err}
}

// NewParseError builds a malformed-output error for one test.
func NewParseError(test, message string, err error) *HarnessError {
	return &HarnessError{Code: ErrCodeParse, Message: message, Test: test, Err: err}
}
