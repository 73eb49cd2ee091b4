// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/config"
	"go.chromium.org/dexcompat/internal/driver"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/logging"
	"go.chromium.org/dexcompat/internal/process"
	"go.chromium.org/dexcompat/internal/report"
	"go.chromium.org/dexcompat/internal/spec"
	"go.chromium.org/dexcompat/internal/toolchain"
)

const (
	fullLogName = "full.txt" // file in the results directory containing full output
)

// runCmd implements subcommands.Command to support running tests.
type runCmd struct {
	cfg          *config.Config
	failForTests bool // exit with 1 if any individual tests fail

	// runner starts subprocesses. Tests replace it.
	runner process.Runner
	// platform overrides the detected host platform if non-empty.
	platform string
	// color reports whether results are printed with colors.
	color func() bool
}

var _ = subcommands.Command(&runCmd{})

func newRunCmd(cfg *config.Config) *runCmd {
	return &runCmd{
		cfg:    cfg,
		runner: process.Exec{},
		color:  func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
	}
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run tests" }
func (*runCmd) Usage() string {
	return `Usage: run [flag]... [pattern]...

Description:
    Compiles the tests matched by the patterns with every selected tool and
    compiler and runs them on the selected runtime. All tests are run if no
    pattern is given. Patterns are globs matched against test names.

    Exits with 0 if all tests were executed, even if some of them did not
    behave as declared. Callers should examine results.json for failing
    tests. -failfortests can be supplied to override this behavior.

Flag:
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.failForTests, "failfortests", false, "exit with 1 if any tests fail")
	r.cfg.SetFlags(f)
}

// job is a test to run with one tool and compiler.
type job struct {
	name string
	tool axis.Tool
	env  spec.Env
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := r.cfg.DeriveDefaults(); err != nil {
		logging.Info(ctx, "Failed to derive defaults: ", err)
		return subcommands.ExitUsageError
	}
	if err := os.MkdirAll(r.cfg.ResultsDir, 0755); err != nil {
		logging.Info(ctx, err)
		return subcommands.ExitFailure
	}

	// Log the full output of the command to disk.
	fullLog, err := os.Create(filepath.Join(r.cfg.ResultsDir, fullLogName))
	if err != nil {
		logging.Info(ctx, err)
		return subcommands.ExitFailure
	}
	defer fullLog.Close()
	loggers := logging.NewMultiLogger()
	ctx = logging.AttachLogger(ctx, loggers)
	fullLogger := logging.NewSinkLogger(logging.LevelDebug, true, logging.NewWriterSink(fullLog))
	loggers.AddLogger(fullLogger)
	defer loggers.RemoveLogger(fullLogger)

	logging.Info(ctx, "Command line: ", strings.Join(os.Args, " "))
	logging.Info(ctx, "Writing results to ", r.cfg.ResultsDir)

	run, err := r.run(ctx, f.Args())
	if err != nil {
		logging.Infof(ctx, "Failed to run tests: %v", err)
		return subcommands.ExitFailure
	}
	if err := report.WriteResults(r.cfg.ResultsDir, run); err != nil {
		logging.Info(ctx, "Failed to write results: ", err)
		return subcommands.ExitFailure
	}
	report.WriteResultsToLogs(ctx, run.Results, r.color())

	if r.failForTests && report.Summarize(run.Results).Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// run runs the tests matched by patterns and returns their results.
func (r *runCmd) run(ctx context.Context, patterns []string) (*report.Run, error) {
	start := time.Now()
	id, err := report.NewRunID(start)
	if err != nil {
		return nil, err
	}
	logging.Info(ctx, "Run ID: ", id)

	_, b, err := loadBuilder(ctx, r.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load expectations")
	}
	names, err := fixtureTests(r.cfg)
	if err != nil {
		return nil, err
	}
	if names, err = matchTests(names, patterns); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Errorf("no tests matched by pattern(s) %v", patterns)
	}

	d, err := r.newDriver(ctx)
	if err != nil {
		return nil, err
	}

	var jobs []job
	for _, name := range names {
		for _, tool := range r.cfg.SelectedTools() {
			for _, comp := range r.cfg.SelectedCompilers() {
				jobs = append(jobs, job{name: name, tool: tool, env: envFor(r.cfg, comp)})
			}
		}
	}
	logging.Infof(ctx, "Running %d tests in %d configurations", len(names), len(jobs))

	sw, err := report.NewStreamedWriter(filepath.Join(r.cfg.ResultsDir, report.StreamedResultsFilename))
	if err != nil {
		return nil, err
	}
	defer sw.Close()

	results := make([][]*report.Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(r.cfg.Parallelism)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			results[i] = runJob(ctx, d, b, j)
			for _, res := range results[i] {
				if err := sw.Write(res); err != nil {
					return errors.Wrap(err, "failed to write streamed result")
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &report.Run{ID: id, Runtime: r.cfg.Runtime.String(), Start: start, End: time.Now()}
	for _, rs := range results {
		out.Results = append(out.Results, rs...)
	}
	return out, nil
}

// runJob runs j and converts its passes into results. The error of a
// failed pipeline belongs to its last pass.
func runJob(ctx context.Context, d *driver.Driver, b *spec.Builder, j job) []*report.Result {
	passes, err := d.RunTest(ctx, b, j.name, j.tool, j.env)
	if len(passes) == 0 {
		if err == nil {
			return nil
		}
		return []*report.Result{report.Failed(j.name, j.tool, j.env, err)}
	}
	var results []*report.Result
	for i, p := range passes {
		var perr error
		if i == len(passes)-1 {
			perr = err
		}
		results = append(results, report.FromDriver(p, perr))
	}
	return results
}

// newDriver returns a driver using the programs named by r.cfg.
func (r *runCmd) newDriver(ctx context.Context) (*driver.Driver, error) {
	platform := r.platform
	if platform == "" {
		var err error
		if platform, err = toolchain.HostPlatform(ctx); err != nil {
			return nil, err
		}
	}
	if !toolchain.PlatformSupported(platform) {
		logging.Infof(ctx, "Runtime is not supported on %s; tests will only be compiled", platform)
	}

	compilers := make(map[axis.Compiler]toolchain.Compiler)
	if r.cfg.D8Path != "" {
		compilers[axis.D8] = &toolchain.ProcessCompiler{Name: "d8", Args: []string{r.cfg.D8Path}, Runner: r.runner}
	}
	if r.cfg.R8Path != "" {
		compilers[axis.R8] = &toolchain.ProcessCompiler{Name: "r8", Args: []string{r.cfg.R8Path}, Runner: r.runner}
	}

	cfg := driver.Config{
		Runner:    r.runner,
		Compilers: compilers,
		Libraries: r.cfg.Libraries,
		ToolsDir:  r.cfg.ToolsDir,
		Platform:  platform,
		Fixtures:  r.cfg.Fixtures(),
	}
	if r.cfg.InspectorPath != "" {
		cfg.Inspector = &toolchain.ProcessInspector{Args: []string{r.cfg.InspectorPath}, Runner: r.runner}
	}
	return driver.New(cfg), nil
}
