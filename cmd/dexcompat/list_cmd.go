// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"go.chromium.org/dexcompat/internal/config"
	"go.chromium.org/dexcompat/internal/logging"
)

// listCmd implements subcommands.Command to support listing tests.
type listCmd struct {
	json     bool // print names as a JSON array
	declared bool // list tests named in expectations instead of fixtures
	cfg      *config.Config
	stdout   io.Writer
	stderr   io.Writer
}

var _ = subcommands.Command(&listCmd{})

func newListCmd(stdout io.Writer, cfg *config.Config) *listCmd {
	return &listCmd{cfg: cfg, stdout: stdout, stderr: os.Stderr}
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list tests" }
func (*listCmd) Usage() string {
	return `Usage: list [flag]... [pattern]...

Description:
    Lists tests with a fixture for the selected tools on the selected runtime.
    Patterns are globs matched against test names, e.g. '0*-*'.

Flag:
`
}

func (lc *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&lc.json, "json", false, "print test names as JSON")
	f.BoolVar(&lc.declared, "declared", false, "list tests named in the expectations file instead of fixtures")
	lc.cfg.SetFlags(f)
}

func (lc *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := lc.cfg.DeriveDefaults(); err != nil {
		logging.Info(ctx, "Failed to derive defaults: ", err)
		return subcommands.ExitUsageError
	}
	if lc.json {
		// Keep logs out of the JSON written to stdout.
		logger := logging.NewSinkLogger(logging.LevelInfo, false, logging.NewWriterSink(lc.stderr))
		ctx = logging.AttachLoggerNoPropagation(ctx, logger)
	}

	var names []string
	var err error
	if lc.declared {
		reg, _, lerr := loadBuilder(ctx, lc.cfg)
		if lerr != nil {
			logging.Info(ctx, "Failed to load expectations: ", lerr)
			return subcommands.ExitFailure
		}
		names = reg.Tests()
	} else if names, err = fixtureTests(lc.cfg); err != nil {
		logging.Info(ctx, err)
		return subcommands.ExitFailure
	}
	if names, err = matchTests(names, f.Args()); err != nil {
		logging.Info(ctx, err)
		return subcommands.ExitUsageError
	}

	if err := lc.printTests(names); err != nil {
		logging.Info(ctx, "Failed to write tests: ", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printTests writes the supplied test names to lc.stdout.
func (lc *listCmd) printTests(names []string) error {
	if lc.json {
		if names == nil {
			names = []string{}
		}
		enc := json.NewEncoder(lc.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	}
	for _, n := range names {
		if _, err := fmt.Fprintln(lc.stdout, n); err != nil {
			return err
		}
	}
	return nil
}
