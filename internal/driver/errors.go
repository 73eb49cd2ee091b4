// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package driver

import "fmt"

// Kind classifies a HarnessError.
type Kind int

const (
	// ExpectedCompileErrorAbsent means compilation succeeded although it was
	// declared to fail.
	ExpectedCompileErrorAbsent Kind = iota
	// UnexpectedRuntimeFailure means the runtime failed although the test
	// was declared to pass.
	UnexpectedRuntimeFailure
	// ExpectedRuntimeFailureAbsent means the runtime succeeded although it
	// was declared to fail.
	ExpectedRuntimeFailureAbsent
	// OutputMismatch means the runtime output differs from the expectation.
	OutputMismatch
	// ExpectedOutputMismatchAbsent means the runtime output matched although
	// it was declared to differ.
	ExpectedOutputMismatchAbsent
	// CheckFailed means the custom check script of a test rejected the
	// runtime output.
	CheckFailed
	// MissingSpecification means a test has no fixture for the default
	// runtime.
	MissingSpecification
)

func (k Kind) String() string {
	switch k {
	case ExpectedCompileErrorAbsent:
		return "expected_compile_error_absent"
	case UnexpectedRuntimeFailure:
		return "unexpected_runtime_failure"
	case ExpectedRuntimeFailureAbsent:
		return "expected_runtime_failure_absent"
	case OutputMismatch:
		return "output_mismatch"
	case ExpectedOutputMismatchAbsent:
		return "expected_output_mismatch_absent"
	case CheckFailed:
		return "check_failed"
	case MissingSpecification:
		return "missing_specification"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// HarnessError reports that a test did not behave as declared.
type HarnessError struct {
	Kind Kind
	Test string
	Msg  string
	// Detail holds diagnostics such as process output and diffs.
	Detail string
}

func (e *HarnessError) Error() string {
	if e.Test == "" {
		return e.Msg
	}
	return e.Test + ": " + e.Msg
}
