// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package expectations

import (
	"os"

	"gopkg.in/yaml.v2"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/condition"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/outcome"
)

// entry is one row of a condition table in an expectations file. Omitted
// axes match every value.
type entry struct {
	Test          string   `yaml:"test"`
	Tools         []string `yaml:"tools"`
	Compilers     []string `yaml:"compilers"`
	Runtimes      []string `yaml:"runtimes"`
	RuntimeBefore string   `yaml:"runtime_before"`
	Modes         []string `yaml:"modes"`
	Reason        string   `yaml:"reason"`
}

type file struct {
	CompileFails   []entry          `yaml:"compile_fails"`
	RunFails       []entry          `yaml:"run_fails"`
	RunTimesOut    []entry          `yaml:"run_times_out"`
	RunFlaky       []entry          `yaml:"run_flaky"`
	OutputDiffers  []entry          `yaml:"output_differs"`
	ReferenceFails []entry          `yaml:"reference_fails"`
	Skip           []entry          `yaml:"skip"`
	SkipRun        []entry          `yaml:"skip_run"`
	Tests          map[string]Facts `yaml:"tests"`
}

// LoadFile reads and parses the expectations file at path.
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return reg, nil
}

// Parse parses an expectations document. The document is validated against
// the embedded schema, axis names are checked, and the outcome tables are
// checked for overlapping conditions.
func Parse(b []byte) (*Registry, error) {
	var doc interface{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse expectations")
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var f file
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse expectations")
	}

	reg := &Registry{
		tables:  make(map[string]*condition.Table),
		reasons: make(map[string]map[string]string),
		facts:   f.Tests,
	}
	if reg.facts == nil {
		reg.facts = make(map[string]Facts)
	}
	for _, src := range []struct {
		name    string
		entries []entry
	}{
		{TableCompileFails, f.CompileFails},
		{TableRunFails, f.RunFails},
		{TableRunTimesOut, f.RunTimesOut},
		{TableRunFlaky, f.RunFlaky},
		{TableOutputDiffers, f.OutputDiffers},
		{TableReferenceFails, f.ReferenceFails},
		{TableSkip, f.Skip},
		{TableSkipRun, f.SkipRun},
	} {
		t, reasons, err := buildTable(src.name, src.entries)
		if err != nil {
			return nil, err
		}
		reg.tables[src.name] = t
		reg.reasons[src.name] = reasons
	}

	var err error
	if reg.compile, err = outcome.NewResolver(
		outcome.Entry{Outcome: outcome.FailsExpectedly, Table: reg.tables[TableCompileFails]},
	); err != nil {
		return nil, err
	}
	if reg.run, err = outcome.NewResolver(
		outcome.Entry{Outcome: outcome.FailsExpectedly, Table: reg.tables[TableRunFails]},
		outcome.Entry{Outcome: outcome.TimesOut, Table: reg.tables[TableRunTimesOut]},
		outcome.Entry{Outcome: outcome.Flaky, Table: reg.tables[TableRunFlaky]},
	); err != nil {
		return nil, err
	}
	return reg, nil
}

func buildTable(name string, entries []entry) (*condition.Table, map[string]string, error) {
	t := condition.NewTable(name)
	reasons := make(map[string]string)
	for i, e := range entries {
		c, err := e.condition()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s[%d] (%s)", name, i, e.Test)
		}
		if err := t.Add(e.Test, c); err != nil {
			return nil, nil, err
		}
		if _, ok := reasons[e.Test]; !ok && e.Reason != "" {
			reasons[e.Test] = e.Reason
		}
	}
	return t, reasons, nil
}

func (e *entry) condition() (condition.Condition, error) {
	var opts []condition.Option
	if e.Tools != nil {
		var ts []axis.Tool
		for _, s := range e.Tools {
			v, err := axis.ParseTool(s)
			if err != nil {
				return condition.Condition{}, err
			}
			ts = append(ts, v)
		}
		opts = append(opts, condition.Tools(ts...))
	}
	if e.Compilers != nil {
		var cs []axis.Compiler
		for _, s := range e.Compilers {
			v, err := axis.ParseCompiler(s)
			if err != nil {
				return condition.Condition{}, err
			}
			cs = append(cs, v)
		}
		opts = append(opts, condition.Compilers(cs...))
	}
	switch {
	case e.Runtimes != nil && e.RuntimeBefore != "":
		return condition.Condition{}, errors.New("runtimes and runtime_before are mutually exclusive")
	case e.Runtimes != nil:
		var rs []axis.Runtime
		for _, s := range e.Runtimes {
			v, err := axis.ParseRuntime(s)
			if err != nil {
				return condition.Condition{}, err
			}
			rs = append(rs, v)
		}
		opts = append(opts, condition.Runtimes(rs...))
	case e.RuntimeBefore != "":
		v, err := axis.ParseRuntime(e.RuntimeBefore)
		if err != nil {
			return condition.Condition{}, err
		}
		opts = append(opts, condition.Runtimes(axis.RuntimesBefore(v)...))
	}
	if e.Modes != nil {
		var ms []axis.Mode
		for _, s := range e.Modes {
			v, err := axis.ParseMode(s)
			if err != nil {
				return condition.Condition{}, err
			}
			ms = append(ms, v)
		}
		opts = append(opts, condition.Modes(ms...))
	}
	return condition.New(opts...)
}
