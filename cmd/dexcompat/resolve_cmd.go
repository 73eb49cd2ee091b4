// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"

	"go.chromium.org/dexcompat/internal/config"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/logging"
	"go.chromium.org/dexcompat/internal/outcome"
	"go.chromium.org/dexcompat/internal/spec"
)

// resolveCmd implements subcommands.Command to print how tests would be run.
type resolveCmd struct {
	cfg    *config.Config
	stdout io.Writer
}

var _ = subcommands.Command(&resolveCmd{})

func newResolveCmd(stdout io.Writer, cfg *config.Config) *resolveCmd {
	return &resolveCmd{cfg: cfg, stdout: stdout}
}

func (*resolveCmd) Name() string     { return "resolve" }
func (*resolveCmd) Synopsis() string { return "print the resolved expectations of tests" }
func (*resolveCmd) Usage() string {
	return `Usage: resolve [flag]... <test>...

Description:
    Prints the declared outcome and handling of each named test for every
    selected tool and compiler on the selected runtime, one line per pass.

Flag:
`
}

func (rc *resolveCmd) SetFlags(f *flag.FlagSet) {
	rc.cfg.SetFlags(f)
}

func (rc *resolveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(f.Args()) == 0 {
		logging.Info(ctx, "Missing test names.\n\n"+rc.Usage())
		return subcommands.ExitUsageError
	}
	if err := rc.cfg.DeriveDefaults(); err != nil {
		logging.Info(ctx, "Failed to derive defaults: ", err)
		return subcommands.ExitUsageError
	}
	_, b, err := loadBuilder(ctx, rc.cfg)
	if err != nil {
		logging.Info(ctx, "Failed to load expectations: ", err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	for _, name := range f.Args() {
		for _, tool := range rc.cfg.SelectedTools() {
			for _, comp := range rc.cfg.SelectedCompilers() {
				env := envFor(rc.cfg, comp)
				specs, err := b.PipelineSpecs(name, tool, env)
				if err != nil {
					if errors.Is(err, spec.ErrNoFixture) {
						fmt.Fprintf(rc.stdout, "%s[%v,%v,%v,%v] no fixture\n", name, tool, env.Compiler, env.Runtime, env.Mode)
						continue
					}
					logging.Info(ctx, err)
					status = subcommands.ExitFailure
					continue
				}
				for _, s := range specs {
					fmt.Fprintln(rc.stdout, describe(s))
				}
			}
		}
	}
	return status
}

// describe returns a one-line summary of s.
func describe(s *spec.Spec) string {
	parts := []string{s.ID()}
	if s.SkipTest {
		parts = append(parts, fmt.Sprintf("skip (%s)", s.SkipReason()))
		return strings.Join(parts, " ")
	}
	parts = append(parts, "compile="+s.CompileOutcome.String(), "run="+s.RunOutcome.String())
	if s.SkipRun {
		parts = append(parts, fmt.Sprintf("skip_run (%s)", s.SkipReason()))
	}
	if s.ExpectOutputDiff {
		parts = append(parts, "output_differs")
	}
	if s.ReferenceFails {
		parts = append(parts, "reference_fails")
	}
	if s.OutputMayDiffer {
		parts = append(parts, "output_may_differ")
	}
	if s.RunOutcome == outcome.Flaky && !s.SkipRun {
		parts = append(parts, "output_not_compared")
	}
	if s.MinAPI > 1 {
		parts = append(parts, fmt.Sprintf("min_api=%d", s.MinAPI))
	}
	if s.NativeLibrary != "" {
		parts = append(parts, "native="+s.NativeLibrary)
	}
	return strings.Join(parts, " ")
}
