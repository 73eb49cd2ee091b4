// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package spec

import (
	"fmt"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/expectations"
	"go.chromium.org/dexcompat/internal/fixture"
	"go.chromium.org/dexcompat/internal/outcome"
)

// ErrNoFixture is wrapped by Build when a test has no fixture for the
// default runtime.
var ErrNoFixture = errors.New("no fixture")

// Builder builds Specs. It holds only immutable data and is safe for
// concurrent use.
type Builder struct {
	reg      *expectations.Registry
	fixtures *fixture.Layout
	flaky    FlakyPolicy
}

// NewBuilder returns a Builder reading expectations from reg and fixtures
// from fixtures.
func NewBuilder(reg *expectations.Registry, fixtures *fixture.Layout, flaky FlakyPolicy) *Builder {
	return &Builder{reg: reg, fixtures: fixtures, flaky: flaky}
}

// Build returns the Spec of test name for tool under env.
//
// A test without a fixture is skipped on numbered runtimes, which predate
// many tests, and is an error wrapping ErrNoFixture on the default runtime.
// Conflicting expectations yield a *outcome.ConflictError.
func (b *Builder) Build(name string, tool axis.Tool, env Env) (*Spec, error) {
	s := &Spec{
		Name:     name,
		Tool:     tool,
		Compiler: env.Compiler,
		Runtime:  env.Runtime,
		Mode:     env.Mode,
		Dir:      b.fixtures.Dir(name, tool, env.Runtime),
	}

	var err error
	if s.CompileOutcome, err = b.reg.Compile().Resolve(name, tool, env.Compiler, env.Runtime, env.Mode); err != nil {
		return nil, err
	}
	if s.RunOutcome, err = b.reg.Run().Resolve(name, tool, env.Compiler, env.Runtime, env.Mode); err != nil {
		return nil, err
	}
	s.ExpectCompileError = s.CompileOutcome == outcome.FailsExpectedly

	match := func(table string) bool {
		return b.reg.Matches(table, name, tool, env.Compiler, env.Runtime, env.Mode)
	}
	reason := func(table, fallback string) string {
		if r := b.reg.Reason(table, name); r != "" {
			return fmt.Sprintf("%s: %s", fallback, r)
		}
		return fallback
	}
	facts := b.reg.Facts(name)

	switch {
	case match(expectations.TableSkip):
		s.SkipTest = true
		s.SkipReasons = append(s.SkipReasons, reason(expectations.TableSkip, "skipped"))
	case facts.SkipAlways:
		s.SkipTest = true
		s.SkipReasons = append(s.SkipReasons, "skipped in every configuration")
	case facts.NoInput && tool == axis.ToolNone:
		s.SkipTest = true
		s.SkipReasons = append(s.SkipReasons, "no class file input")
	case !b.fixtures.Exists(name, tool, env.Runtime):
		if env.Runtime.IsDefault() {
			return nil, errors.Wrapf(ErrNoFixture, "%s for tool %v", name, tool)
		}
		s.SkipTest = true
		s.SkipReasons = append(s.SkipReasons, fmt.Sprintf("no fixture for runtime %v", env.Runtime))
	}

	if match(expectations.TableSkipRun) {
		s.SkipRun = true
		s.SkipReasons = append(s.SkipReasons, reason(expectations.TableSkipRun, "runtime skipped"))
	}
	if s.ExpectCompileError {
		s.SkipRun = true
		s.SkipReasons = append(s.SkipReasons, reason(expectations.TableCompileFails, "compilation expected to fail"))
	}
	switch s.RunOutcome {
	case outcome.TimesOut:
		s.SkipRun = true
		s.SkipReasons = append(s.SkipReasons, reason(expectations.TableRunTimesOut, "times out on runtime"))
	case outcome.Flaky:
		if b.flaky == FlakySkip {
			s.SkipRun = true
			s.SkipReasons = append(s.SkipReasons, reason(expectations.TableRunFlaky, "flaky on runtime"))
		}
	}

	s.ExpectOutputDiff = match(expectations.TableOutputDiffers)
	s.ReferenceFails = match(expectations.TableReferenceFails)
	s.OutputMayDiffer = facts.OutputMayDiffer
	s.NativeLibrary = facts.NativeLibrary
	s.InterfaceDesugaring = facts.InterfaceDesugaring
	s.MinAPI = axis.MinAPILevel(env.Runtime)
	if facts.MinAPI > s.MinAPI {
		s.MinAPI = facts.MinAPI
	}
	for _, rel := range facts.ExtraInputs {
		p, err := b.fixtures.Resolve(rel, env.Runtime)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: bad extra input %s", name, rel)
		}
		s.ExtraInputs = append(s.ExtraInputs, p)
	}
	return s, nil
}

// PipelineSpecs returns the Specs of the passes needed to test name under env.
//
// Most compilers need a single pass. R8 after D8 is tested in two passes:
// D8 compiles the fixture in debug mode, then R8 compiles the D8 output,
// again in debug mode. The second pass is described as a dx-produced input
// since its input is dex code.
func (b *Builder) PipelineSpecs(name string, tool axis.Tool, env Env) ([]*Spec, error) {
	if env.Compiler != axis.R8AfterD8 {
		s, err := b.Build(name, tool, env)
		if err != nil {
			return nil, err
		}
		return []*Spec{s}, nil
	}

	first, err := b.Build(name, tool, Env{Compiler: axis.D8, Runtime: env.Runtime, Mode: axis.Debug})
	if err != nil {
		return nil, err
	}
	second, err := b.Build(name, axis.ToolDX, Env{Compiler: axis.R8AfterD8, Runtime: env.Runtime, Mode: axis.Debug})
	if err != nil {
		return nil, err
	}
	return []*Spec{first, second}, nil
}
