// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"context"

	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/process"
)

// Inspector renders a textual dump of the classes and methods in a dex file
// or archive. Dumps are only used to explain output mismatches.
type Inspector interface {
	Dump(ctx context.Context, path string) (string, error)
}

// ProcessInspector is an Inspector running an external dump program as
// <Args...> <path>.
type ProcessInspector struct {
	Args   []string
	Runner process.Runner
}

var _ Inspector = &ProcessInspector{}

// Dump runs the dump program on path and returns its stdout.
func (i *ProcessInspector) Dump(ctx context.Context, path string) (string, error) {
	if len(i.Args) == 0 {
		return "", errors.New("no inspector configured")
	}
	args := append(append([]string(nil), i.Args...), path)
	res, err := i.Runner.Run(ctx, &process.Command{Args: args})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", errors.Errorf("inspector failed on %s:\n%s", path, res)
	}
	return res.Stdout, nil
}
