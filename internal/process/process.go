// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package process runs external programs and captures their output.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/logging"
	"go.chromium.org/dexcompat/internal/shutil"
)

// Command describes a process to run.
type Command struct {
	// Args holds the program and its arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra "key=value" pairs appended to the current environment.
	Env []string
}

func (c *Command) String() string {
	return shutil.EscapeSlice(c.Args)
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	// ExitCode is the exit status, or -1 if the process was killed by a
	// signal.
	ExitCode int
	// Signal names the signal that killed the process, if any.
	Signal string
	Stdout string
	Stderr string
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "EXIT CODE: %d\n", r.ExitCode)
	if r.Signal != "" {
		fmt.Fprintf(&b, "SIGNAL: %s\n", r.Signal)
	}
	fmt.Fprintf(&b, "STDOUT: \n%s\n", r.Stdout)
	fmt.Fprintf(&b, "STDERR: \n%s\n", r.Stderr)
	return b.String()
}

// Runner runs commands. Implementations must be safe for concurrent use.
//
// Run returns an error only if the process could not be run or its output
// could not be read. A non-zero exit status is reported in Result and is
// left to the caller to interpret.
type Runner interface {
	Run(ctx context.Context, cmd *Command) (*Result, error)
}

// Exec is a Runner starting local processes.
type Exec struct{}

var _ Runner = Exec{}

// Run runs cmd and waits for it to exit. Stdout and stderr are drained
// concurrently so that the process never blocks on a full pipe.
// Cancelling ctx kills the process.
func (Exec) Run(ctx context.Context, c *Command) (*Result, error) {
	if len(c.Args) == 0 {
		return nil, errors.New("empty command")
	}
	logging.Debugf(ctx, "Running %s", c)

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to set up stdout of %s", c.Args[0])
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to set up stderr of %s", c.Args[0])
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", c.Args[0])
	}

	var outBuf, errBuf []byte
	var g errgroup.Group
	g.Go(func() error {
		var err error
		outBuf, err = io.ReadAll(stdout)
		return err
	})
	g.Go(func() error {
		var err error
		errBuf, err = io.ReadAll(stderr)
		return err
	})
	drainErr := g.Wait()
	waitErr := cmd.Wait()

	if drainErr != nil {
		return nil, errors.Wrapf(drainErr, "failed to read output of %s", c.Args[0])
	}
	if waitErr != nil {
		var ee *exec.ExitError
		if !errors.As(waitErr, &ee) {
			return nil, errors.Wrapf(waitErr, "failed to wait for %s", c.Args[0])
		}
	}

	res := &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   string(outBuf),
		Stderr:   string(errBuf),
	}
	if sig, ok := signalName(cmd.ProcessState); ok {
		res.ExitCode = -1
		res.Signal = sig
	}
	logging.Debugf(ctx, "%s exited with status %d", c.Args[0], res.ExitCode)
	return res, nil
}
