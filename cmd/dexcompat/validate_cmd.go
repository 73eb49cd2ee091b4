// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/config"
	"go.chromium.org/dexcompat/internal/logging"
)

// validateCmd implements subcommands.Command to check an expectations file.
type validateCmd struct {
	strict bool // fail on tests without fixtures
	cfg    *config.Config
	stdout io.Writer
}

var _ = subcommands.Command(&validateCmd{})

func newValidateCmd(stdout io.Writer, cfg *config.Config) *validateCmd {
	return &validateCmd{cfg: cfg, stdout: stdout}
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check the expectations file" }
func (*validateCmd) Usage() string {
	return `Usage: validate [flag]...

Description:
    Loads the expectations file, checking it against its schema and checking
    that no test is declared with two different outcomes for the same
    configuration. Tests named in the file without any fixture are reported.

Flag:
`
}

func (vc *validateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&vc.strict, "strict", false, "fail if a declared test has no fixture")
	vc.cfg.SetFlags(f)
}

func (vc *validateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := vc.cfg.DeriveDefaults(); err != nil {
		logging.Info(ctx, "Failed to derive defaults: ", err)
		return subcommands.ExitUsageError
	}
	reg, _, err := loadBuilder(ctx, vc.cfg)
	if err != nil {
		fmt.Fprintf(vc.stdout, "%s: %v\n", vc.cfg.ExpectationsPath, err)
		return subcommands.ExitFailure
	}

	layout := vc.cfg.Fixtures()
	var missing int
	for _, name := range reg.Tests() {
		found := false
		for _, tool := range axis.AllTools() {
			if layout.Exists(name, tool, axis.ARTDefault) {
				found = true
				break
			}
		}
		if !found {
			fmt.Fprintf(vc.stdout, "%s: %s has no fixture\n", vc.cfg.ExpectationsPath, name)
			missing++
		}
	}
	fmt.Fprintf(vc.stdout, "%s: %d tables, %d tests\n", vc.cfg.ExpectationsPath, len(reg.TableNames()), len(reg.Tests()))
	if vc.strict && missing > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
