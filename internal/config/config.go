// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config holds the configuration of a compatibility run.
package config

import (
	"flag"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/xyproto/env/v2"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/fixture"
	"go.chromium.org/dexcompat/internal/spec"
)

// Environment variables supplying defaults for flags.
const (
	EnvRuntime           = "DEX_VM"
	EnvToolsDir          = "DEXCOMPAT_TOOLS"
	EnvFixturesDir       = "DEXCOMPAT_FIXTURES"
	EnvLegacyFixturesDir = "DEXCOMPAT_LEGACY_FIXTURES"
	EnvExpectations      = "DEXCOMPAT_EXPECTATIONS"
	EnvD8                = "DEXCOMPAT_D8"
	EnvR8                = "DEXCOMPAT_R8"
	EnvInspector         = "DEXCOMPAT_DEXDUMP"
	EnvParallelism       = "DEXCOMPAT_PARALLELISM"
	EnvFlaky             = "DEXCOMPAT_FLAKY"
	EnvResultsDir        = "DEXCOMPAT_RESULTS"
)

const (
	defaultToolsDir          = "tools"
	defaultFixturesDir       = "tests/2017-07-07/art"
	defaultLegacyFixturesDir = "tests/2016-12-19/art"
	defaultExpectations      = "expectations/art.yaml"
	defaultResultsDir        = "out/results"
)

// Config contains the configuration of a run. Fields are filled from the
// environment by Load, overridden by flags registered with SetFlags, and
// checked by DeriveDefaults.
type Config struct {
	// Runtime is the runtime version tests run on.
	Runtime axis.Runtime
	// Compilers and Tools select the configurations to run. Empty means all.
	Compilers []axis.Compiler
	Tools     []axis.Tool

	ToolsDir          string // directory holding runtime builds
	FixturesDir       string // fixture root for the default runtime
	LegacyFixturesDir string // fixture root for older runtimes
	ExpectationsPath  string // YAML expectations file

	D8Path        string // D8 compiler executable
	R8Path        string // R8 compiler executable
	InspectorPath string // dex dump executable; empty disables structural diffs
	Libraries     []string

	Parallelism int
	FlakyPolicy spec.FlakyPolicy
	// ResultsDir is the directory results are written to. A timestamped
	// subdirectory of the default is used if empty.
	ResultsDir string

	runtimeName   string
	flakyName     string
	compilerNames string
	toolNames     string
	libraries     string
}

// Load returns a Config populated from the environment.
func Load() *Config {
	return &Config{
		runtimeName:       env.Str(EnvRuntime, axis.ARTDefault.String()),
		ToolsDir:          env.Str(EnvToolsDir, defaultToolsDir),
		FixturesDir:       env.Str(EnvFixturesDir, defaultFixturesDir),
		LegacyFixturesDir: env.Str(EnvLegacyFixturesDir, defaultLegacyFixturesDir),
		ExpectationsPath:  env.Str(EnvExpectations, defaultExpectations),
		D8Path:            env.Str(EnvD8),
		R8Path:            env.Str(EnvR8),
		InspectorPath:     env.Str(EnvInspector),
		Parallelism:       env.Int(EnvParallelism, runtime.NumCPU()),
		flakyName:         env.Str(EnvFlaky, "run"),
		ResultsDir:        env.Str(EnvResultsDir),
	}
}

// SetFlags adds flags to f that store values in c. Values already in c,
// typically from Load, are used as defaults.
func (c *Config) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.runtimeName, "runtime", c.runtimeName,
		fmt.Sprintf("runtime version (%s)", quoted(axis.AllRuntimes())))
	f.StringVar(&c.compilerNames, "compilers", "",
		fmt.Sprintf("comma-separated compilers to run (%s); all if empty", quoted(axis.AllCompilers())))
	f.StringVar(&c.toolNames, "tools", "",
		fmt.Sprintf("comma-separated input tools to run (%s); all if empty", quoted(axis.AllTools())))
	f.StringVar(&c.ToolsDir, "toolsdir", c.ToolsDir, "directory holding runtime builds")
	f.StringVar(&c.FixturesDir, "fixtures", c.FixturesDir, "fixture root for the default runtime")
	f.StringVar(&c.LegacyFixturesDir, "legacyfixtures", c.LegacyFixturesDir, "fixture root for older runtimes")
	f.StringVar(&c.ExpectationsPath, "expectations", c.ExpectationsPath, "path to expectations YAML file")
	f.StringVar(&c.D8Path, "d8", c.D8Path, "D8 compiler executable")
	f.StringVar(&c.R8Path, "r8", c.R8Path, "R8 compiler executable")
	f.StringVar(&c.InspectorPath, "dexdump", c.InspectorPath, "dex dump executable used to explain mismatches")
	f.StringVar(&c.libraries, "libs", strings.Join(c.Libraries, ","), "comma-separated library archives passed to compilers")
	f.IntVar(&c.Parallelism, "parallelism", c.Parallelism, "number of tests run concurrently")
	f.StringVar(&c.flakyName, "flaky", c.flakyName, `handling of flaky tests ("run" or "skip")`)
	f.StringVar(&c.ResultsDir, "resultsdir", c.ResultsDir, "directory where results are written")
}

// DeriveDefaults parses flag values and sets derived defaults. It should be
// called after flags are parsed.
func (c *Config) DeriveDefaults() error {
	var err error
	if c.Runtime, err = axis.ParseRuntime(c.runtimeName); err != nil {
		return err
	}
	if c.FlakyPolicy, err = spec.ParseFlakyPolicy(c.flakyName); err != nil {
		return err
	}
	if c.Compilers, err = parseList(c.compilerNames, axis.ParseCompiler); err != nil {
		return errors.Wrap(err, "bad -compilers")
	}
	if c.Tools, err = parseList(c.toolNames, axis.ParseTool); err != nil {
		return errors.Wrap(err, "bad -tools")
	}
	if c.libraries != "" {
		c.Libraries = strings.Split(c.libraries, ",")
	}
	if c.Parallelism < 1 {
		return errors.Errorf("parallelism must be positive; got %d", c.Parallelism)
	}
	if c.ResultsDir == "" {
		c.ResultsDir = filepath.Join(defaultResultsDir, time.Now().Format("20060102-150405"))
	}
	return nil
}

// SelectedCompilers returns the compilers to run.
func (c *Config) SelectedCompilers() []axis.Compiler {
	if len(c.Compilers) == 0 {
		return axis.AllCompilers()
	}
	return c.Compilers
}

// SelectedTools returns the input tools to run.
func (c *Config) SelectedTools() []axis.Tool {
	if len(c.Tools) == 0 {
		return axis.AllTools()
	}
	return c.Tools
}

// Fixtures returns the fixture layout described by c.
func (c *Config) Fixtures() *fixture.Layout {
	return &fixture.Layout{Root: c.FixturesDir, LegacyRoot: c.LegacyFixturesDir}
}

func parseList[T any](s string, parse func(string) (T, error)) ([]T, error) {
	if s == "" {
		return nil, nil
	}
	var vs []T
	for _, p := range strings.Split(s, ",") {
		v, err := parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func quoted[T fmt.Stringer](vs []T) string {
	var qs []string
	for _, v := range vs {
		qs = append(qs, fmt.Sprintf("%q", v.String()))
	}
	return strings.Join(qs, ", ")
}
