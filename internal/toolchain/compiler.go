// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package toolchain wraps the external programs a test run depends on: the
// compilers under test, the runtime, the archive packager and the dex
// inspector.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/process"
)

// CompileOptions holds per-invocation compiler settings.
type CompileOptions struct {
	// OutputDir receives the produced dex files. It must exist.
	OutputDir string
	Mode      axis.Mode
	// MinAPI is the API level floor. Levels at or below
	// axis.APILevelDefault are not passed on.
	MinAPI int
	// Libraries are passed as library references, not compiled.
	Libraries []string
	// InterfaceDesugaring enables desugaring of interface methods.
	InterfaceDesugaring bool
}

// Artifact is the output of a successful compilation.
type Artifact struct {
	Dir string
	// Files holds the produced dex files, sorted.
	Files []string
}

// Compiler compiles a set of input files.
//
// A compiler that runs but rejects its input returns a *CompileError. Any
// other error means the compiler could not be run at all.
type Compiler interface {
	Compile(ctx context.Context, inputs []string, opts CompileOptions) (*Artifact, error)
}

// CompileError is returned when a compiler reports a compilation failure.
type CompileError struct {
	Compiler string
	Result   *process.Result
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s failed with exit code %d", e.Compiler, e.Result.ExitCode)
	if s := strings.TrimSpace(e.Result.Stderr); s != "" {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[:i]
		}
		msg += ": " + s
	}
	return msg
}

// ProcessCompiler is a Compiler running an external program.
//
// The program is invoked as
//
//	<Args...> --output <dir> --debug|--release [--min-api N] [--lib L]...
//	    [--desugar-interface-methods] <inputs...>
type ProcessCompiler struct {
	// Name identifies the compiler in messages.
	Name string
	// Args holds the program and fixed leading arguments.
	Args   []string
	Runner process.Runner
}

var _ Compiler = &ProcessCompiler{}

// Compile runs the compiler on inputs.
func (c *ProcessCompiler) Compile(ctx context.Context, inputs []string, opts CompileOptions) (*Artifact, error) {
	if len(c.Args) == 0 {
		return nil, errors.Errorf("%s: no program configured", c.Name)
	}
	if opts.OutputDir == "" {
		return nil, errors.Errorf("%s: no output directory", c.Name)
	}
	if len(inputs) == 0 {
		return nil, errors.Errorf("%s: no inputs", c.Name)
	}

	args := append([]string(nil), c.Args...)
	args = append(args, "--output", opts.OutputDir)
	if opts.Mode == axis.Release {
		args = append(args, "--release")
	} else {
		args = append(args, "--debug")
	}
	if opts.MinAPI > axis.APILevelDefault {
		args = append(args, "--min-api", strconv.Itoa(opts.MinAPI))
	}
	for _, l := range opts.Libraries {
		args = append(args, "--lib", l)
	}
	if opts.InterfaceDesugaring {
		args = append(args, "--desugar-interface-methods")
	}
	args = append(args, inputs...)

	res, err := c.Runner.Run(ctx, &process.Command{Args: args})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to run %s", c.Name)
	}
	if res.ExitCode != 0 {
		return nil, &CompileError{Compiler: c.Name, Result: res}
	}

	files, err := DexFiles(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("%s produced no dex files in %s", c.Name, opts.OutputDir)
	}
	return &Artifact{Dir: opts.OutputDir, Files: files}, nil
}

// DexFiles returns the .dex files directly inside dir, sorted.
func DexFiles(dir string) ([]string, error) {
	ms, err := doublestar.Glob(os.DirFS(dir), "*.dex", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list dex files in %s", dir)
	}
	sort.Strings(ms)
	files := make([]string, len(ms))
	for i, m := range ms {
		files[i] = filepath.Join(dir, m)
	}
	return files, nil
}
