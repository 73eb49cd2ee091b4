// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package spec builds the complete description of a single test run from
// the expectations registry and the fixture layout.
package spec

import (
	"fmt"
	"strings"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/outcome"
)

// FlakyPolicy decides what happens to tests declared flaky on the runtime.
type FlakyPolicy int

const (
	// FlakyRun executes flaky tests but never compares their output.
	FlakyRun FlakyPolicy = iota
	// FlakySkip compiles flaky tests but does not execute them.
	FlakySkip
)

func (p FlakyPolicy) String() string {
	switch p {
	case FlakyRun:
		return "run"
	case FlakySkip:
		return "skip"
	default:
		return fmt.Sprintf("flaky_policy(%d)", int(p))
	}
}

// ParseFlakyPolicy returns the FlakyPolicy named s.
func ParseFlakyPolicy(s string) (FlakyPolicy, error) {
	switch s {
	case "run":
		return FlakyRun, nil
	case "skip":
		return FlakySkip, nil
	}
	return 0, errors.Errorf("unknown flaky policy %q (want run or skip)", s)
}

// Env is the part of the axis space that is fixed for a whole run.
type Env struct {
	Compiler axis.Compiler
	Runtime  axis.Runtime
	Mode     axis.Mode
}

func (e Env) String() string {
	return fmt.Sprintf("%v/%v/%v", e.Compiler, e.Runtime, e.Mode)
}

// Spec describes how one test is compiled, run and verified for one
// combination of axis values. A Spec is built immediately before it is
// used and must not be modified.
type Spec struct {
	Name     string
	Tool     axis.Tool
	Compiler axis.Compiler
	Runtime  axis.Runtime
	Mode     axis.Mode
	// Dir is the fixture directory of the test.
	Dir string

	CompileOutcome outcome.Outcome
	RunOutcome     outcome.Outcome

	// SkipTest means neither the compiler nor the runtime is run.
	SkipTest bool
	// SkipRun means the test is compiled but not executed.
	SkipRun bool
	// ExpectCompileError means compilation must fail with a compile error.
	ExpectCompileError bool
	// ExpectOutputDiff means the runtime output must differ from the
	// expectation.
	ExpectOutputDiff bool
	// ReferenceFails means the reference artifact fails on the runtime, so
	// rerunning it to refresh the expected output must fail.
	ReferenceFails bool
	// OutputMayDiffer accepts any runtime output.
	OutputMayDiffer bool

	// NativeLibrary is the name of a native library the test loads, if any.
	NativeLibrary string
	// MinAPI is the API level floor passed to the compiler.
	MinAPI int
	// InterfaceDesugaring enables desugaring of interface methods.
	InterfaceDesugaring bool
	// ExtraInputs are absolute paths of inputs borrowed from other tests.
	ExtraInputs []string

	// SkipReasons explains SkipTest and SkipRun for reports.
	SkipReasons []string
}

// Env returns the run-wide axis values of s.
func (s *Spec) Env() Env {
	return Env{Compiler: s.Compiler, Runtime: s.Runtime, Mode: s.Mode}
}

// ID returns a name identifying s among all specs of a run.
func (s *Spec) ID() string {
	return fmt.Sprintf("%s[%v,%v,%v,%v]", s.Name, s.Tool, s.Compiler, s.Runtime, s.Mode)
}

// SkipReason joins SkipReasons for display.
func (s *Spec) SkipReason() string {
	return strings.Join(s.SkipReasons, "; ")
}

// VerifyOutput reports whether the runtime output is compared at all.
func (s *Spec) VerifyOutput() bool {
	return !s.OutputMayDiffer && s.RunOutcome != outcome.TimesOut && s.RunOutcome != outcome.Flaky
}
