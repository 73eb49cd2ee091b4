// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package report records the results of a compatibility run.
package report

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/driver"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/spec"
	"go.chromium.org/dexcompat/internal/toolchain"
)

// Verdicts of a Result.
const (
	VerdictPass = "pass"
	VerdictFail = "fail"
	VerdictSkip = "skip"
)

// Error kinds beyond those of driver.HarnessError.
const (
	KindCompileError   = "compile_error"
	KindInfrastructure = "infrastructure"
)

// NewRunID returns a new lexically sortable run ID for a run started at t.
func NewRunID(t time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t.UTC()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Run is the content of a results file.
type Run struct {
	ID      string    `json:"id"`
	Runtime string    `json:"runtime"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Results []*Result `json:"results"`
}

// Error describes why a test did not behave as declared.
type Error struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Result is the result of a single pass of a test.
type Result struct {
	Name     string `json:"name"`
	Tool     string `json:"tool"`
	Compiler string `json:"compiler"`
	Runtime  string `json:"runtime"`
	Mode     string `json:"mode"`

	Verdict string `json:"verdict"`
	// State is the last state reached by the driver.
	State string `json:"state,omitempty"`
	Note  string `json:"note,omitempty"`
	// Errors is empty unless Verdict is VerdictFail.
	Errors  []Error                  `json:"errors,omitempty"`
	Timings map[string]time.Duration `json:"timings,omitempty"`
}

// ID returns a name identifying r among the results of a run.
func (r *Result) ID() string {
	return r.Name + "[" + r.Tool + "," + r.Compiler + "," + r.Runtime + "," + r.Mode + "]"
}

// FromDriver converts a pass run by the driver and the error it returned.
func FromDriver(res *driver.Result, err error) *Result {
	s := res.Spec
	r := &Result{
		Name:     s.Name,
		Tool:     s.Tool.String(),
		Compiler: s.Compiler.String(),
		Runtime:  s.Runtime.String(),
		Mode:     s.Mode.String(),
		State:    res.State.String(),
		Note:     res.Note,
		Timings:  res.Timings,
	}
	switch {
	case err != nil:
		r.Verdict = VerdictFail
		r.Errors = []Error{convertError(err)}
	case res.State == driver.Skipped || res.State == driver.SkippedRuntime:
		r.Verdict = VerdictSkip
	default:
		r.Verdict = VerdictPass
	}
	return r
}

// Failed returns the result of a test that failed before a pass could be
// run.
func Failed(name string, tool axis.Tool, env spec.Env, err error) *Result {
	return &Result{
		Name:     name,
		Tool:     tool.String(),
		Compiler: env.Compiler.String(),
		Runtime:  env.Runtime.String(),
		Mode:     env.Mode.String(),
		Verdict:  VerdictFail,
		Errors:   []Error{convertError(err)},
	}
}

func convertError(err error) Error {
	var he *driver.HarnessError
	if errors.As(err, &he) {
		return Error{Kind: he.Kind.String(), Reason: he.Msg, Detail: he.Detail}
	}
	var ce *toolchain.CompileError
	if errors.As(err, &ce) {
		return Error{Kind: KindCompileError, Reason: ce.Error(), Detail: ce.Result.String()}
	}
	return Error{Kind: KindInfrastructure, Reason: err.Error()}
}

// Summary counts results by verdict.
type Summary struct {
	Passed, Failed, Skipped int
}

// Summarize counts the verdicts of results.
func Summarize(results []*Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Verdict {
		case VerdictPass:
			s.Passed++
		case VerdictFail:
			s.Failed++
		case VerdictSkip:
			s.Skipped++
		}
	}
	return s
}
