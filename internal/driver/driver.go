// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package driver compiles and runs a single test according to its Spec and
// checks that it behaves as declared.
//
// A run moves through the states
//
//	NotStarted -> Compiled -> Executed -> Verified
//
// and may stop early in Skipped (nothing run) or SkippedRuntime (compiled
// but not executed). A run that stops in Compiled or Executed has met a
// declared compile or runtime failure.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/diff"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/fixture"
	"go.chromium.org/dexcompat/internal/logging"
	"go.chromium.org/dexcompat/internal/outcome"
	"go.chromium.org/dexcompat/internal/process"
	"go.chromium.org/dexcompat/internal/spec"
	"go.chromium.org/dexcompat/internal/toolchain"
)

// State is the progress of a test run.
type State int

const (
	NotStarted State = iota
	Compiled
	Executed
	Verified
	Skipped
	SkippedRuntime
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Compiled:
		return "compiled"
	case Executed:
		return "executed"
	case Verified:
		return "verified"
	case Skipped:
		return "skipped"
	case SkippedRuntime:
		return "skipped_runtime"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MainClass is the entry point of every test program.
const MainClass = "Main"

// Stage names used in Result.Timings.
const (
	StageCompile = "compile"
	StageRun     = "run"
	StageVerify  = "verify"
)

// Config holds the collaborators of a Driver.
type Config struct {
	Runner process.Runner
	// Compilers maps a compiler stage to its implementation. The second
	// pass of R8 after D8 uses the R8 compiler.
	Compilers map[axis.Compiler]toolchain.Compiler
	// Libraries are passed to every compiler as library references.
	Libraries []string
	// ToolsDir holds the runtime builds.
	ToolsDir string
	// Platform is the host operating system. The runtime is skipped on
	// unsupported platforms.
	Platform string
	Archiver toolchain.Archiver
	// Inspector, if set, is used to explain output mismatches.
	Inspector toolchain.Inspector
	Fixtures  *fixture.Layout
	// Clock measures stage durations. Defaults to the real clock.
	Clock clock.Clock
	// TempDir is the parent of per-run scratch directories. Empty means the
	// system default.
	TempDir string
}

// Driver runs tests. It is safe for concurrent use as long as its
// collaborators are.
type Driver struct {
	cfg    Config
	differ *diff.Differ
}

// New returns a Driver using cfg.
func New(cfg Config) *Driver {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}
	if cfg.Archiver == nil {
		cfg.Archiver = toolchain.ZipArchiver{}
	}
	return &Driver{
		cfg:    cfg,
		differ: &diff.Differ{Runner: cfg.Runner, TempDir: cfg.TempDir},
	}
}

// Result describes a finished test run.
type Result struct {
	Spec  *spec.Spec
	State State
	// Outputs holds the compiled dex files. They are deleted when the run
	// returns.
	Outputs []string
	// Run is the result of the runtime, if it was executed.
	Run *process.Result
	// Note explains how the run ended, e.g. why output was not compared.
	Note string
	// Final is set when the run ended on a declared failure. Later passes
	// of a pipeline must not run.
	Final   bool
	Timings map[string]time.Duration
}

func (r *Result) record(stage string, d time.Duration) {
	if r.Timings == nil {
		r.Timings = make(map[string]time.Duration)
	}
	r.Timings[stage] += d
}

// Run compiles and runs the test described by s.
//
// A nil error means the test behaved as declared. A *HarnessError means it
// did not. A *toolchain.CompileError is returned as is when compilation
// fails unexpectedly. Other errors are infrastructure failures.
func (d *Driver) Run(ctx context.Context, s *spec.Spec) (*Result, error) {
	if s.SkipTest {
		return d.skip(ctx, s), nil
	}
	scratch, err := os.MkdirTemp(d.cfg.TempDir, "dexcompat.")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scratch directory")
	}
	defer os.RemoveAll(scratch)
	return d.run(ctx, s, nil, scratch)
}

// RunPipeline runs the passes returned by spec.Builder.PipelineSpecs in
// order, feeding the dex files of each pass to the next one. It stops at the
// first pass that fails or is skipped. It also stops at a pass that ended on a
// declared compile or runtime failure.
func (d *Driver) RunPipeline(ctx context.Context, specs []*spec.Spec) ([]*Result, error) {
	if len(specs) == 0 {
		return nil, errors.New("no passes to run")
	}
	if specs[0].SkipTest {
		return []*Result{d.skip(ctx, specs[0])}, nil
	}
	scratch, err := os.MkdirTemp(d.cfg.TempDir, "dexcompat.")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scratch directory")
	}
	defer os.RemoveAll(scratch)

	var results []*Result
	var inputs []string
	for i, s := range specs {
		if i > 0 && s.SkipTest {
			results = append(results, d.skip(ctx, s))
			break
		}
		res, err := d.run(ctx, s, inputs, scratch)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
		if res.Final || len(res.Outputs) == 0 {
			break
		}
		inputs = res.Outputs
	}
	return results, nil
}

// RunTest builds the passes of test name for tool under env and runs them.
// A test without a fixture on the default runtime yields a *HarnessError of
// kind MissingSpecification.
func (d *Driver) RunTest(ctx context.Context, b *spec.Builder, name string, tool axis.Tool, env spec.Env) ([]*Result, error) {
	specs, err := b.PipelineSpecs(name, tool, env)
	if errors.Is(err, spec.ErrNoFixture) {
		return nil, &HarnessError{
			Kind:   MissingSpecification,
			Test:   name,
			Msg:    fmt.Sprintf("no specification for tool %v", tool),
			Detail: err.Error(),
		}
	}
	if err != nil {
		return nil, err
	}
	return d.RunPipeline(ctx, specs)
}

func (d *Driver) skip(ctx context.Context, s *spec.Spec) *Result {
	logging.Infof(ctx, "%s: skipped: %s", s.ID(), s.SkipReason())
	return &Result{Spec: s, State: Skipped, Note: s.SkipReason()}
}

// run executes s inside scratch. If inputs is nil, inputs are taken from
// the fixture.
func (d *Driver) run(ctx context.Context, s *spec.Spec, inputs []string, scratch string) (*Result, error) {
	ctx = logging.WithPrefix(ctx, s.ID()+": ")
	res := &Result{Spec: s, State: NotStarted}

	art, done, err := d.compile(ctx, s, inputs, scratch, res)
	if err != nil || done {
		return res, err
	}
	res.State = Compiled
	res.Outputs = art.Files

	if !toolchain.PlatformSupported(d.cfg.Platform) {
		res.State = SkippedRuntime
		res.Note = fmt.Sprintf("runtime not supported on %q", d.cfg.Platform)
		logging.Info(ctx, res.Note)
		return res, nil
	}
	if s.SkipRun {
		res.State = SkippedRuntime
		res.Note = s.SkipReason()
		logging.Infof(ctx, "Runtime skipped: %s", res.Note)
		return res, nil
	}

	processed, done, err := d.execute(ctx, s, art, res)
	if err != nil || done {
		return res, err
	}
	res.State = Executed

	start := d.cfg.Clock.Now()
	err = d.verify(ctx, s, processed, scratch, res)
	res.record(StageVerify, d.cfg.Clock.Since(start))
	if err != nil {
		return res, err
	}
	res.State = Verified
	return res, nil
}

// compile runs the compiler. done is true if the run ended as declared
// without producing output.
func (d *Driver) compile(ctx context.Context, s *spec.Spec, inputs []string, scratch string, res *Result) (art *toolchain.Artifact, done bool, err error) {
	stage := s.Compiler
	if stage == axis.R8AfterD8 {
		stage = axis.R8
	}
	c, ok := d.cfg.Compilers[stage]
	if !ok {
		return nil, false, errors.Errorf("no compiler configured for %v", stage)
	}

	if inputs == nil {
		if inputs, err = fixture.Inputs(s.Dir, s.Tool); err != nil {
			return nil, false, err
		}
	}
	inputs = append(append([]string(nil), inputs...), s.ExtraInputs...)

	outDir := filepath.Join(scratch, stage.String()+"-output")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, false, errors.Wrap(err, "failed to create output directory")
	}

	logging.Infof(ctx, "Compiling %d inputs with %v (%v)", len(inputs), stage, s.Mode)
	start := d.cfg.Clock.Now()
	art, err = c.Compile(ctx, inputs, toolchain.CompileOptions{
		OutputDir:           outDir,
		Mode:                s.Mode,
		MinAPI:              s.MinAPI,
		Libraries:           d.cfg.Libraries,
		InterfaceDesugaring: s.InterfaceDesugaring,
	})
	res.record(StageCompile, d.cfg.Clock.Since(start))

	var ce *toolchain.CompileError
	isCompileError := errors.As(err, &ce)
	if s.ExpectCompileError {
		if isCompileError {
			res.State = Compiled
			res.Note = "compilation failed as expected"
			res.Final = true
			logging.Info(ctx, "Compilation failed as expected: ", ce)
			return nil, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		return nil, false, &HarnessError{
			Kind: ExpectedCompileErrorAbsent,
			Test: s.Name,
			Msg:  "should have failed compilation",
		}
	}
	if isCompileError {
		return nil, false, ce
	}
	if err != nil {
		return nil, false, err
	}
	if art == nil || len(art.Files) == 0 {
		return nil, false, errors.Errorf("%v produced no dex files", stage)
	}
	return art, false, nil
}

// execute runs the compiled artifact on the runtime and returns the path
// that was run. done is true if the run ended as declared after a runtime
// failure.
func (d *Driver) execute(ctx context.Context, s *spec.Spec, art *toolchain.Artifact, res *Result) (processed string, done bool, err error) {
	processed = art.Files[0]
	if len(art.Files) > 1 {
		processed = filepath.Join(art.Dir, s.Name+".jar")
		if err := d.cfg.Archiver.Archive(art.Files, processed); err != nil {
			return "", false, errors.Wrap(err, "failed to package dex files")
		}
	}

	logging.Infof(ctx, "Running on runtime %v", s.Runtime)
	start := d.cfg.Clock.Now()
	pr, err := d.runOnRuntime(ctx, s, processed)
	res.record(StageRun, d.cfg.Clock.Since(start))
	if err != nil {
		return "", false, err
	}
	res.Run = pr

	if !pr.Success() {
		switch s.RunOutcome {
		case outcome.FailsExpectedly:
			res.State = Executed
			res.Note = "runtime failed as expected"
			res.Final = true
			return processed, true, nil
		case outcome.Flaky:
			res.State = Executed
			res.Note = "flaky test failed on runtime"
			res.Final = true
			return processed, true, nil
		}
		return "", false, &HarnessError{
			Kind:   UnexpectedRuntimeFailure,
			Test:   s.Name,
			Msg:    "unexpected runtime failure",
			Detail: pr.String() + d.dexDiff(ctx, s, processed),
		}
	}
	if s.RunOutcome == outcome.FailsExpectedly {
		return "", false, &HarnessError{
			Kind:   ExpectedRuntimeFailureAbsent,
			Test:   s.Name,
			Msg:    "should have failed run on runtime",
			Detail: pr.String(),
		}
	}
	return processed, false, nil
}

// verify compares the runtime output with the expectation.
func (d *Driver) verify(ctx context.Context, s *spec.Spec, processed, scratch string, res *Result) error {
	switch {
	case s.OutputMayDiffer:
		res.Note = "output not compared: output may differ"
		return nil
	case s.RunOutcome == outcome.TimesOut || s.RunOutcome == outcome.Flaky:
		res.Note = fmt.Sprintf("output not compared: declared %v", s.RunOutcome)
		return nil
	}
	actual := res.Run.Stdout

	if check, ok := fixture.CheckScript(s.Dir); ok {
		return d.verifyWithCheck(ctx, s, check, processed, scratch, actual)
	}

	expected, err := fixture.ExpectedOutput(s.Dir)
	if err != nil {
		return errors.Wrap(err, "failed to read expected output")
	}
	if expected != actual {
		// The expected output file may have been produced by a different
		// runtime build; the reference artifact's output on this runtime is
		// authoritative.
		if ref, ok := fixture.ReferenceArtifact(s.Dir, s.Name); ok {
			logging.Info(ctx, "Output differs from expected file; rerunning reference artifact")
			rr, err := d.runOnRuntime(ctx, s, ref)
			if err != nil {
				return err
			}
			if s.ReferenceFails {
				if !rr.Success() {
					res.Note = "reference artifact failed as expected"
					return nil
				}
				return &HarnessError{
					Kind:   ExpectedRuntimeFailureAbsent,
					Test:   s.Name,
					Msg:    "reference artifact should have failed run on runtime",
					Detail: rr.String(),
				}
			}
			if !rr.Success() {
				return &HarnessError{
					Kind:   UnexpectedRuntimeFailure,
					Test:   s.Name,
					Msg:    "reference artifact failed on runtime",
					Detail: rr.String(),
				}
			}
			expected = rr.Stdout
		}
	}

	if s.ExpectOutputDiff {
		if expected == actual {
			return &HarnessError{
				Kind: ExpectedOutputMismatchAbsent,
				Test: s.Name,
				Msg:  "should have failed output comparison",
			}
		}
		res.Note = "output differs as expected"
		return nil
	}
	if expected == actual {
		return nil
	}

	out, err := d.differ.Diff(ctx, expected, actual)
	if err != nil {
		logging.Infof(ctx, "Failed to diff output: %v", err)
		out = diff.Lines(expected, actual)
	}
	return &HarnessError{
		Kind:   OutputMismatch,
		Test:   s.Name,
		Msg:    "output mismatch",
		Detail: out + d.dexDiff(ctx, s, processed),
	}
}

func (d *Driver) verifyWithCheck(ctx context.Context, s *spec.Spec, check, processed, scratch, actual string) error {
	actualPath := filepath.Join(scratch, fmt.Sprintf("%v-actual.txt", s.Compiler))
	if err := os.WriteFile(actualPath, []byte(actual), 0644); err != nil {
		return errors.Wrap(err, "failed to write runtime output")
	}
	cr, err := d.cfg.Runner.Run(ctx, &process.Command{
		Args: []string{check, filepath.Join(s.Dir, fixture.ExpectedFile), actualPath},
		Dir:  s.Dir,
	})
	if err != nil {
		return errors.Wrap(err, "failed to run check script")
	}
	switch {
	case !cr.Success() && !s.ExpectOutputDiff:
		return &HarnessError{
			Kind:   CheckFailed,
			Test:   s.Name,
			Msg:    "check script failed",
			Detail: cr.String() + d.dexDiff(ctx, s, processed),
		}
	case cr.Success() && s.ExpectOutputDiff:
		return &HarnessError{
			Kind: ExpectedOutputMismatchAbsent,
			Test: s.Name,
			Msg:  "should have failed output comparison",
		}
	}
	return nil
}

// runOnRuntime runs artifact on the runtime of s.
func (d *Driver) runOnRuntime(ctx context.Context, s *spec.Spec, artifact string) (*process.Result, error) {
	rc := &toolchain.RuntimeCommand{
		Runtime:   s.Runtime,
		ToolsDir:  d.cfg.ToolsDir,
		Platform:  d.cfg.Platform,
		Classpath: []string{artifact},
		MainClass: MainClass,
	}
	if s.NativeLibrary != "" {
		// All native libraries live in one directory per fixture root.
		dir, err := filepath.Abs(d.cfg.Fixtures.NativeLibraryDir(s.Runtime))
		if err != nil {
			return nil, err
		}
		rc.SetProperty("java.library.path", dir)
		rc.Args = append(rc.Args, s.NativeLibrary)
	}
	cmd, err := rc.Command()
	if err != nil {
		return nil, err
	}
	pr, err := d.cfg.Runner.Run(ctx, cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to run runtime")
	}
	return pr, nil
}

// dexDiff renders a structural diff between the reference dex file of s and
// processed. It returns an empty string if no diff can be produced.
func (d *Driver) dexDiff(ctx context.Context, s *spec.Spec, processed string) string {
	if d.cfg.Inspector == nil {
		return ""
	}
	ref, ok := fixture.ReferenceDexFile(s.Dir)
	if !ok {
		return ""
	}
	want, err := d.cfg.Inspector.Dump(ctx, ref)
	if err != nil {
		logging.Infof(ctx, "Failed to dump %s: %v", ref, err)
		return ""
	}
	got, err := d.cfg.Inspector.Dump(ctx, processed)
	if err != nil {
		logging.Infof(ctx, "Failed to dump %s: %v", processed, err)
		return ""
	}
	out, err := d.differ.Diff(ctx, want, got)
	if err != nil || out == "" {
		return ""
	}
	return "\nStructural diff of reference and processed dex:\n" + strings.TrimRight(out, "\n") + "\n"
}
