// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package expectations holds the declared behavior of every test: which
// axis combinations fail to compile, fail or misbehave on the runtime, or
// must be skipped, plus static per-test facts such as native library needs.
//
// A Registry is loaded once per run and is read-only afterwards. It is
// always passed explicitly to its consumers.
package expectations

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/condition"
	"go.chromium.org/dexcompat/internal/outcome"
)

// Names of the condition tables, as used in expectation files.
const (
	TableCompileFails   = "compile_fails"
	TableRunFails       = "run_fails"
	TableRunTimesOut    = "run_times_out"
	TableRunFlaky       = "run_flaky"
	TableOutputDiffers  = "output_differs"
	TableReferenceFails = "reference_fails"
	TableSkip           = "skip"
	TableSkipRun        = "skip_run"
)

// Facts are static properties of a single test.
type Facts struct {
	// MinAPI overrides the API level floor derived from the runtime.
	MinAPI int `yaml:"min_api"`
	// InterfaceDesugaring asks the compiler to desugar default and static
	// interface methods.
	InterfaceDesugaring bool `yaml:"interface_desugaring"`
	// NativeLibrary is the name of a native library loaded by the test.
	NativeLibrary string `yaml:"native_library"`
	// OutputMayDiffer accepts any output from the runtime.
	OutputMayDiffer bool `yaml:"output_may_differ"`
	// ExtraInputs are files, relative to the fixture root, added to the
	// compiler inputs.
	ExtraInputs []string `yaml:"extra_inputs"`
	// SkipAlways skips the test in every configuration.
	SkipAlways bool `yaml:"skip_always"`
	// NoInput marks tests without class file inputs; they are skipped for
	// the tool "none".
	NoInput bool `yaml:"no_input"`
}

// Registry is the immutable set of expectations for a run.
type Registry struct {
	compile *outcome.Resolver
	run     *outcome.Resolver
	tables  map[string]*condition.Table
	reasons map[string]map[string]string // table -> test -> reason
	facts   map[string]Facts
}

// Compile returns the resolver for compile-time outcomes.
func (r *Registry) Compile() *outcome.Resolver { return r.compile }

// Run returns the resolver for run-time outcomes.
func (r *Registry) Run() *outcome.Resolver { return r.run }

// Table returns the table called name. Unknown names yield an empty table.
func (r *Registry) Table(name string) *condition.Table {
	if t, ok := r.tables[name]; ok {
		return t
	}
	return condition.NewTable(name)
}

// Matches reports whether test matches the table called name under the
// given axis values.
func (r *Registry) Matches(name, test string, tool axis.Tool, comp axis.Compiler, rt axis.Runtime, m axis.Mode) bool {
	t, ok := r.tables[name]
	return ok && t.Matches(test, tool, comp, rt, m)
}

// Reason returns the reason recorded for test in the table called name, or
// an empty string.
func (r *Registry) Reason(name, test string) string {
	return r.reasons[name][test]
}

// Facts returns the static facts of test. Tests without facts get the zero
// value.
func (r *Registry) Facts(test string) Facts {
	return r.facts[test]
}

// Tests returns every test name mentioned anywhere in r, sorted.
func (r *Registry) Tests() []string {
	seen := make(map[string]struct{})
	for _, t := range r.tables {
		for _, n := range t.Tests() {
			seen[n] = struct{}{}
		}
	}
	for n := range r.facts {
		seen[n] = struct{}{}
	}
	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}

// TableNames returns the names of all tables, sorted.
func (r *Registry) TableNames() []string {
	names := maps.Keys(r.tables)
	slices.Sort(names)
	return names
}
