// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/google/go-cmp/cmp"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/expectations"
	"go.chromium.org/dexcompat/internal/fixture"
	"go.chromium.org/dexcompat/internal/logging"
	"go.chromium.org/dexcompat/internal/logging/loggingtest"
	"go.chromium.org/dexcompat/internal/outcome"
	"go.chromium.org/dexcompat/internal/process"
	"go.chromium.org/dexcompat/internal/spec"
	"go.chromium.org/dexcompat/internal/testutil"
	"go.chromium.org/dexcompat/internal/toolchain"
)

const testName = "001-hello"

// fakeWorld scripts the behavior of the external programs seen by a Driver.
type fakeWorld struct {
	t      *testing.T
	root   string // fixture root
	clk    *fakeclock.FakeClock
	rec    *process.Recorder
	driver *Driver

	// Compiler behavior.
	compileExit int
	dexFiles    []string

	// Runtime behavior for the compiled artifact and the reference archive.
	runExit   int
	runStdout string
	runStderr string
	refExit   int
	refStdout string

	checkExit int

	mu        sync.Mutex
	compileIn [][]string // inputs of each compiler invocation
}

func newFakeWorld(t *testing.T, files map[string]string) *fakeWorld {
	t.Helper()
	root := testutil.TempDir(t)
	all := map[string]string{
		"dx/" + testName + "/classes/Main.class": "class",
		"dx/" + testName + "/expected.txt":       "hello\n",
	}
	for k, v := range files {
		all[k] = v
	}
	if err := testutil.WriteFiles(root, all); err != nil {
		t.Fatal(err)
	}

	w := &fakeWorld{
		t:         t,
		root:      root,
		clk:       fakeclock.NewFakeClock(time.Unix(0, 0)),
		dexFiles:  []string{"classes.dex"},
		runStdout: "hello\n",
	}
	w.rec = process.NewRecorder(process.Func(w.run))
	w.driver = New(Config{
		Runner: w.rec,
		Compilers: map[axis.Compiler]toolchain.Compiler{
			axis.D8: &toolchain.ProcessCompiler{Name: "d8", Args: []string{"d8"}, Runner: w.rec},
			axis.R8: &toolchain.ProcessCompiler{Name: "r8", Args: []string{"r8"}, Runner: w.rec},
		},
		ToolsDir: "tools",
		Platform: "linux",
		Fixtures: &fixture.Layout{Root: root},
		Clock:    w.clk,
		TempDir:  testutil.TempDir(t),
	})
	return w
}

func (w *fakeWorld) run(ctx context.Context, cmd *process.Command) (*process.Result, error) {
	switch prog := cmd.Args[0]; {
	case prog == "d8" || prog == "r8":
		w.clk.Increment(time.Second)
		var out string
		var inputs []string
		for i := 1; i < len(cmd.Args); i++ {
			switch a := cmd.Args[i]; {
			case a == "--output" || a == "--min-api" || a == "--lib":
				if a == "--output" {
					out = cmd.Args[i+1]
				}
				i++
			case strings.HasPrefix(a, "--"):
			default:
				inputs = append(inputs, a)
			}
		}
		w.mu.Lock()
		w.compileIn = append(w.compileIn, inputs)
		w.mu.Unlock()
		if w.compileExit != 0 {
			return &process.Result{ExitCode: w.compileExit, Stderr: "Compilation failed"}, nil
		}
		for _, f := range w.dexFiles {
			if err := os.WriteFile(filepath.Join(out, f), []byte(prog), 0644); err != nil {
				return nil, err
			}
		}
		return &process.Result{}, nil
	case prog == "/bin/bash":
		w.clk.Increment(2 * time.Second)
		cp := cmd.Args[indexOf(cmd.Args, "-cp")+1]
		if strings.HasPrefix(cp, w.root+string(filepath.Separator)) {
			return &process.Result{ExitCode: w.refExit, Stdout: w.refStdout}, nil
		}
		return &process.Result{ExitCode: w.runExit, Stdout: w.runStdout, Stderr: w.runStderr}, nil
	case filepath.Base(prog) == fixture.CheckFile:
		return &process.Result{ExitCode: w.checkExit}, nil
	case prog == "diff":
		return nil, errors.New("diff not available")
	}
	w.t.Errorf("Unexpected command %v", cmd.Args)
	return nil, errors.New("unexpected command")
}

func indexOf(args []string, s string) int {
	for i, a := range args {
		if a == s {
			return i
		}
	}
	return -1
}

func (w *fakeWorld) spec(mod func(s *spec.Spec)) *spec.Spec {
	s := &spec.Spec{
		Name:     testName,
		Tool:     axis.ToolNone,
		Compiler: axis.D8,
		Runtime:  axis.ARTDefault,
		Mode:     axis.Debug,
		Dir:      filepath.Join(w.root, "dx", testName),
	}
	if mod != nil {
		mod(s)
	}
	return s
}

func (w *fakeWorld) programs() []string {
	var progs []string
	for _, c := range w.rec.Commands() {
		progs = append(progs, filepath.Base(c.Args[0]))
	}
	return progs
}

func harnessKind(t *testing.T, err error) Kind {
	t.Helper()
	var he *HarnessError
	if !errors.As(err, &he) {
		t.Fatalf("Run returned %v; want *HarnessError", err)
	}
	return he.Kind
}

func TestRunSkipTest(t *testing.T) {
	w := newFakeWorld(t, nil)
	res, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) {
		s.SkipTest = true
		s.SkipReasons = []string{"skipped"}
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.State != Skipped {
		t.Errorf("State = %v; want %v", res.State, Skipped)
	}
	if n := w.rec.Len(); n != 0 {
		t.Errorf("%d subprocesses run for a skipped test; want 0", n)
	}
	ents, err := os.ReadDir(w.driver.cfg.TempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 0 {
		t.Errorf("scratch directory created for a skipped test: %v", ents)
	}
}

func TestRunPasses(t *testing.T) {
	w := newFakeWorld(t, nil)
	logger := loggingtest.NewLogger(t, logging.LevelInfo)
	ctx := logging.AttachLogger(context.Background(), logger)

	res, err := w.driver.Run(ctx, w.spec(nil))
	if err != nil {
		t.Fatalf("Run failed: %+v", err)
	}
	if res.State != Verified {
		t.Errorf("State = %v; want %v", res.State, Verified)
	}
	if diff := cmp.Diff(w.programs(), []string{"d8", "bash"}); diff != "" {
		t.Errorf("programs mismatch (-got +want):\n%s", diff)
	}
	rt := w.rec.Commands()[1].Args
	if len(rt) != 5 || rt[1] != "tools/linux/art/bin/art" || rt[2] != "-cp" || filepath.Base(rt[3]) != "classes.dex" || rt[4] != MainClass {
		t.Errorf("runtime command = %v", rt)
	}
	wantIn := [][]string{{filepath.Join(w.root, "dx", testName, "classes", "Main.class")}}
	if diff := cmp.Diff(w.compileIn, wantIn); diff != "" {
		t.Errorf("compiler inputs mismatch (-got +want):\n%s", diff)
	}
	wantTimings := map[string]time.Duration{StageCompile: time.Second, StageRun: 2 * time.Second, StageVerify: 0}
	if diff := cmp.Diff(res.Timings, wantTimings); diff != "" {
		t.Errorf("Timings mismatch (-got +want):\n%s", diff)
	}
	if !strings.Contains(logger.String(), testName) {
		t.Errorf("log does not mention the test: %q", logger.String())
	}
}

func TestRunExpectedCompileError(t *testing.T) {
	w := newFakeWorld(t, nil)
	w.compileExit = 1
	s := w.spec(func(s *spec.Spec) {
		s.ExpectCompileError = true
		s.SkipRun = true
	})
	res, err := w.driver.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.State != Compiled {
		t.Errorf("State = %v; want %v", res.State, Compiled)
	}
	if diff := cmp.Diff(w.programs(), []string{"d8"}); diff != "" {
		t.Errorf("programs mismatch (-got +want):\n%s", diff)
	}
}

func TestRunExpectedCompileErrorAbsent(t *testing.T) {
	w := newFakeWorld(t, nil)
	s := w.spec(func(s *spec.Spec) {
		s.ExpectCompileError = true
		s.SkipRun = true
	})
	_, err := w.driver.Run(context.Background(), s)
	if k := harnessKind(t, err); k != ExpectedCompileErrorAbsent {
		t.Errorf("Kind = %v; want %v", k, ExpectedCompileErrorAbsent)
	}
	if !strings.Contains(err.Error(), "should have failed compilation") {
		t.Errorf("error %q does not mention the expected compile failure", err.Error())
	}
}

func TestRunUnexpectedCompileError(t *testing.T) {
	w := newFakeWorld(t, nil)
	w.compileExit = 1
	_, err := w.driver.Run(context.Background(), w.spec(nil))
	var ce *toolchain.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Run returned %v; want *toolchain.CompileError", err)
	}
	if _, ok := err.(*toolchain.CompileError); !ok {
		t.Errorf("Run wrapped the compile error: %T", err)
	}
}

func TestRunOutputMismatch(t *testing.T) {
	w := newFakeWorld(t, nil)
	w.runStdout = "goodbye\n"
	_, err := w.driver.Run(context.Background(), w.spec(nil))
	if k := harnessKind(t, err); k != OutputMismatch {
		t.Errorf("Kind = %v; want %v", k, OutputMismatch)
	}
	var he *HarnessError
	errors.As(err, &he)
	if !strings.Contains(he.Detail, "hello") || !strings.Contains(he.Detail, "goodbye") {
		t.Errorf("Detail = %q; want a diff of both outputs", he.Detail)
	}
}

func TestRunOutputMayDiffer(t *testing.T) {
	for _, stdout := range []string{"", "completely different\n", "hello\n"} {
		w := newFakeWorld(t, nil)
		w.runStdout = stdout
		res, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) { s.OutputMayDiffer = true }))
		if err != nil {
			t.Errorf("Run with output %q failed: %v", stdout, err)
			continue
		}
		if res.State != Verified {
			t.Errorf("State = %v; want %v", res.State, Verified)
		}
	}
}

func TestRunDeclaredOutcomes(t *testing.T) {
	for _, tc := range []struct {
		name      string
		outcome   outcome.Outcome
		runExit   int
		wantState State
		wantKind  *Kind
	}{
		{"fails as declared", outcome.FailsExpectedly, 1, Executed, nil},
		{"fails declared but passes", outcome.FailsExpectedly, 0, NotStarted, kindPtr(ExpectedRuntimeFailureAbsent)},
		{"passes declared but fails", outcome.Passes, 1, NotStarted, kindPtr(UnexpectedRuntimeFailure)},
		{"flaky fails", outcome.Flaky, 1, Executed, nil},
		{"flaky passes with other output", outcome.Flaky, 0, Verified, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := newFakeWorld(t, nil)
			w.runExit = tc.runExit
			w.runStdout = "other\n"
			w.runStderr = "java.lang.VerifyError"
			res, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) { s.RunOutcome = tc.outcome }))
			if tc.wantKind != nil {
				if k := harnessKind(t, err); k != *tc.wantKind {
					t.Errorf("Kind = %v; want %v", k, *tc.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if res.State != tc.wantState {
				t.Errorf("State = %v; want %v", res.State, tc.wantState)
			}
		})
	}
}

func kindPtr(k Kind) *Kind { return &k }

func TestRunUnexpectedRuntimeFailureDetail(t *testing.T) {
	w := newFakeWorld(t, nil)
	w.runExit = 1
	w.runStderr = "java.lang.VerifyError: Main"
	_, err := w.driver.Run(context.Background(), w.spec(nil))
	var he *HarnessError
	if !errors.As(err, &he) {
		t.Fatalf("Run returned %v; want *HarnessError", err)
	}
	if !strings.Contains(he.Detail, "EXIT CODE: 1") || !strings.Contains(he.Detail, "java.lang.VerifyError: Main") {
		t.Errorf("Detail = %q; want runtime output attached", he.Detail)
	}
}

func TestRunSkipRuntime(t *testing.T) {
	w := newFakeWorld(t, nil)
	res, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) {
		s.SkipRun = true
		s.RunOutcome = outcome.TimesOut
		s.SkipReasons = []string{"times out on runtime"}
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.State != SkippedRuntime || res.Note != "times out on runtime" {
		t.Errorf("State, Note = %v, %q; want %v, %q", res.State, res.Note, SkippedRuntime, "times out on runtime")
	}
	if diff := cmp.Diff(w.programs(), []string{"d8"}); diff != "" {
		t.Errorf("programs mismatch (-got +want):\n%s", diff)
	}
}

func TestRunUnsupportedPlatform(t *testing.T) {
	w := newFakeWorld(t, nil)
	w.driver.cfg.Platform = "windows"
	res, err := w.driver.Run(context.Background(), w.spec(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.State != SkippedRuntime {
		t.Errorf("State = %v; want %v", res.State, SkippedRuntime)
	}
}

func TestRunReferenceRerun(t *testing.T) {
	files := map[string]string{"dx/" + testName + "/" + testName + ".jar": "jar"}

	t.Run("reference agrees", func(t *testing.T) {
		w := newFakeWorld(t, files)
		w.runStdout = "hello from this runtime\n"
		w.refStdout = "hello from this runtime\n"
		if _, err := w.driver.Run(context.Background(), w.spec(nil)); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if diff := cmp.Diff(w.programs(), []string{"d8", "bash", "bash"}); diff != "" {
			t.Errorf("programs mismatch (-got +want):\n%s", diff)
		}
	})

	t.Run("reference disagrees", func(t *testing.T) {
		w := newFakeWorld(t, files)
		w.runStdout = "processed\n"
		w.refStdout = "reference\n"
		_, err := w.driver.Run(context.Background(), w.spec(nil))
		if k := harnessKind(t, err); k != OutputMismatch {
			t.Errorf("Kind = %v; want %v", k, OutputMismatch)
		}
	})

	t.Run("reference fails as declared", func(t *testing.T) {
		w := newFakeWorld(t, files)
		w.runStdout = "processed\n"
		w.refExit = 1
		res, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) { s.ReferenceFails = true }))
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if res.State != Verified {
			t.Errorf("State = %v; want %v", res.State, Verified)
		}
	})

	t.Run("reference passes although declared failing", func(t *testing.T) {
		w := newFakeWorld(t, files)
		w.runStdout = "processed\n"
		_, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) { s.ReferenceFails = true }))
		if k := harnessKind(t, err); k != ExpectedRuntimeFailureAbsent {
			t.Errorf("Kind = %v; want %v", k, ExpectedRuntimeFailureAbsent)
		}
	})
}

func TestRunExpectOutputDiff(t *testing.T) {
	w := newFakeWorld(t, nil)
	w.runStdout = "different\n"
	if _, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) { s.ExpectOutputDiff = true })); err != nil {
		t.Errorf("Run with differing output failed: %v", err)
	}

	w = newFakeWorld(t, nil)
	_, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) { s.ExpectOutputDiff = true }))
	if k := harnessKind(t, err); k != ExpectedOutputMismatchAbsent {
		t.Errorf("Kind = %v; want %v", k, ExpectedOutputMismatchAbsent)
	}
}

func TestRunCheckScript(t *testing.T) {
	files := map[string]string{"dx/" + testName + "/check": "#!/bin/sh\n"}

	w := newFakeWorld(t, files)
	w.runStdout = "anything\n"
	if _, err := w.driver.Run(context.Background(), w.spec(nil)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	cmds := w.rec.Commands()
	check := cmds[len(cmds)-1].Args
	dir := filepath.Join(w.root, "dx", testName)
	if len(check) != 3 || check[0] != filepath.Join(dir, "check") || check[1] != filepath.Join(dir, "expected.txt") {
		t.Fatalf("check command = %v", check)
	}
	if _, err := os.Stat(check[2]); !os.IsNotExist(err) {
		t.Errorf("actual output file %s survived the run", check[2])
	}

	w = newFakeWorld(t, files)
	w.checkExit = 1
	_, err := w.driver.Run(context.Background(), w.spec(nil))
	if k := harnessKind(t, err); k != CheckFailed {
		t.Errorf("Kind = %v; want %v", k, CheckFailed)
	}
}

func TestRunMultipleDexFiles(t *testing.T) {
	w := newFakeWorld(t, nil)
	w.dexFiles = []string{"classes.dex", "classes2.dex"}
	res, err := w.driver.Run(context.Background(), w.spec(nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Outputs) != 2 {
		t.Errorf("Outputs = %v; want 2 files", res.Outputs)
	}
	rt := w.rec.Commands()[1].Args
	if cp := rt[indexOf(rt, "-cp")+1]; filepath.Base(cp) != testName+".jar" {
		t.Errorf("runtime classpath = %q; want the packaged archive", cp)
	}
}

func TestRunNativeLibrary(t *testing.T) {
	w := newFakeWorld(t, nil)
	if _, err := w.driver.Run(context.Background(), w.spec(func(s *spec.Spec) { s.NativeLibrary = "arttest" })); err != nil {
		t.Fatal(err)
	}
	rt := w.rec.Commands()[1].Args
	want := "-Djava.library.path=" + filepath.Join(w.root, "lib64")
	if indexOf(rt, want) < 0 || rt[len(rt)-1] != "arttest" || rt[len(rt)-2] != MainClass {
		t.Errorf("runtime command = %v; want %s and the library name after %s", rt, want, MainClass)
	}
}

func TestRunScratchRemoved(t *testing.T) {
	for _, tc := range []struct {
		name        string
		compileExit int
		runStdout   string
	}{
		{"pass", 0, "hello\n"},
		{"compile error", 1, "hello\n"},
		{"mismatch", 0, "bye\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := newFakeWorld(t, nil)
			w.compileExit = tc.compileExit
			w.runStdout = tc.runStdout
			w.driver.Run(context.Background(), w.spec(nil))
			ents, err := os.ReadDir(w.driver.cfg.TempDir)
			if err != nil {
				t.Fatal(err)
			}
			if len(ents) != 0 {
				t.Errorf("scratch directory left behind: %v", ents)
			}
		})
	}
}

func TestRunPipeline(t *testing.T) {
	w := newFakeWorld(t, nil)
	first := w.spec(nil)
	second := w.spec(func(s *spec.Spec) {
		s.Tool = axis.ToolDX
		s.Compiler = axis.R8AfterD8
	})
	results, err := w.driver.RunPipeline(context.Background(), []*spec.Spec{first, second})
	if err != nil {
		t.Fatalf("RunPipeline failed: %v", err)
	}
	if len(results) != 2 || results[0].State != Verified || results[1].State != Verified {
		t.Fatalf("RunPipeline results = %+v", results)
	}
	if diff := cmp.Diff(w.programs(), []string{"d8", "bash", "r8", "bash"}); diff != "" {
		t.Errorf("programs mismatch (-got +want):\n%s", diff)
	}
	if len(w.compileIn) != 2 || len(w.compileIn[1]) != 1 || filepath.Base(w.compileIn[1][0]) != "classes.dex" ||
		filepath.Base(filepath.Dir(w.compileIn[1][0])) != "d8-output" {
		t.Errorf("second pass inputs = %v; want the first pass output", w.compileIn)
	}
}

func TestRunPipelineStopsAfterExpectedCompileError(t *testing.T) {
	w := newFakeWorld(t, nil)
	w.compileExit = 1
	first := w.spec(func(s *spec.Spec) { s.ExpectCompileError = true })
	second := w.spec(func(s *spec.Spec) { s.Compiler = axis.R8AfterD8 })
	results, err := w.driver.RunPipeline(context.Background(), []*spec.Spec{first, second})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].State != Compiled || !results[0].Final {
		t.Errorf("RunPipeline results = %+v; want one final compiled pass", results)
	}
}

func TestRunPipelineStopsAfterExpectedRuntimeFailure(t *testing.T) {
	for _, tc := range []struct {
		name string
		out  outcome.Outcome
		note string
	}{
		{"fails", outcome.FailsExpectedly, "runtime failed as expected"},
		{"flaky", outcome.Flaky, "flaky test failed on runtime"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := newFakeWorld(t, nil)
			w.runExit = 1
			first := w.spec(func(s *spec.Spec) { s.RunOutcome = tc.out })
			second := w.spec(func(s *spec.Spec) {
				s.Tool = axis.ToolDX
				s.Compiler = axis.R8AfterD8
			})
			results, err := w.driver.RunPipeline(context.Background(), []*spec.Spec{first, second})
			if err != nil {
				t.Fatalf("RunPipeline failed: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("RunPipeline returned %d results; want 1", len(results))
			}
			if res := results[0]; res.State != Executed || res.Note != tc.note || !res.Final {
				t.Errorf("State, Note, Final = %v, %q, %v; want %v, %q, true", res.State, res.Note, res.Final, Executed, tc.note)
			}
			if diff := cmp.Diff(w.programs(), []string{"d8", "bash"}); diff != "" {
				t.Errorf("programs mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

type compilerFunc func(ctx context.Context, inputs []string, opts toolchain.CompileOptions) (*toolchain.Artifact, error)

func (f compilerFunc) Compile(ctx context.Context, inputs []string, opts toolchain.CompileOptions) (*toolchain.Artifact, error) {
	return f(ctx, inputs, opts)
}

func TestRunCompilerWithoutOutput(t *testing.T) {
	for _, tc := range []struct {
		name string
		art  *toolchain.Artifact
	}{
		{"nil", nil},
		{"empty", &toolchain.Artifact{Dir: "out"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := newFakeWorld(t, nil)
			w.driver.cfg.Compilers[axis.D8] = compilerFunc(func(context.Context, []string, toolchain.CompileOptions) (*toolchain.Artifact, error) {
				return tc.art, nil
			})
			res, err := w.driver.Run(context.Background(), w.spec(nil))
			if err == nil {
				t.Fatal("Run succeeded; want an error")
			}
			var he *HarnessError
			if errors.As(err, &he) {
				t.Errorf("Run returned %v; want an infrastructure error", err)
			}
			if !strings.Contains(err.Error(), "produced no dex files") {
				t.Errorf("Run returned %q; want it to mention the missing dex files", err)
			}
			if res.State != NotStarted {
				t.Errorf("State = %v; want %v", res.State, NotStarted)
			}
			if progs := w.programs(); len(progs) != 0 {
				t.Errorf("Ran %v; want nothing", progs)
			}
		})
	}
}

func TestRunTestMissingSpecification(t *testing.T) {
	w := newFakeWorld(t, nil)
	reg, err := expectations.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	b := spec.NewBuilder(reg, w.driver.cfg.Fixtures, spec.FlakyRun)
	env := spec.Env{Compiler: axis.D8, Runtime: axis.ARTDefault, Mode: axis.Debug}

	_, err = w.driver.RunTest(context.Background(), b, "404-missing", axis.ToolDX, env)
	if k := harnessKind(t, err); k != MissingSpecification {
		t.Errorf("Kind = %v; want %v", k, MissingSpecification)
	}

	results, err := w.driver.RunTest(context.Background(), b, testName, axis.ToolNone, env)
	if err != nil {
		t.Fatalf("RunTest failed: %v", err)
	}
	if len(results) != 1 || results[0].State != Verified {
		t.Errorf("RunTest results = %+v", results)
	}
}

func TestRunInspectorDiff(t *testing.T) {
	w := newFakeWorld(t, map[string]string{"dx/" + testName + "/classes.dex": "ref"})
	w.driver.cfg.Inspector = inspectorFunc(func(ctx context.Context, path string) (string, error) {
		if strings.HasPrefix(path, w.root+string(filepath.Separator)) {
			return "method a\nmethod b\n", nil
		}
		return "method a\n", nil
	})
	w.runStdout = "bye\n"
	_, err := w.driver.Run(context.Background(), w.spec(nil))
	var he *HarnessError
	if !errors.As(err, &he) {
		t.Fatalf("Run returned %v; want *HarnessError", err)
	}
	if !strings.Contains(he.Detail, "Structural diff") || !strings.Contains(he.Detail, "method b") {
		t.Errorf("Detail = %q; want structural diff", he.Detail)
	}
}

type inspectorFunc func(ctx context.Context, path string) (string, error)

func (f inspectorFunc) Dump(ctx context.Context, path string) (string, error) { return f(ctx, path) }
