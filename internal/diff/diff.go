// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package diff computes differences between strings.
package diff

import (
	"context"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/logging"
	"go.chromium.org/dexcompat/internal/process"
)

// writeTempFile creates a temp file in dir containing the given s. Returns
// the name of the created temp file.
func writeTempFile(dir, s string) (string, error) {
	f, err := os.CreateTemp(dir, "diff.")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(s); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Differ computes unified diffs with the diff command.
type Differ struct {
	Runner process.Runner
	// TempDir holds temporary input files. Empty means the system default.
	TempDir string
}

// Diff takes the diff between orig and expect. Returns empty string if equals,
// otherwise returns the diff in unified diff format.
//
// If the diff command can not be run, a line-based diff rendered by go-cmp
// is returned instead.
func (d *Differ) Diff(ctx context.Context, orig, expect string) (string, error) {
	if orig == expect {
		return "", nil
	}

	f1, err := writeTempFile(d.TempDir, orig)
	if err != nil {
		return "", err
	}
	defer os.Remove(f1)

	f2, err := writeTempFile(d.TempDir, expect)
	if err != nil {
		return "", err
	}
	defer os.Remove(f2)

	// diff exits with status 1 when the inputs differ.
	res, err := d.Runner.Run(ctx, &process.Command{Args: []string{"diff", "-ua", f1, f2}})
	if err != nil {
		logging.Debugf(ctx, "diff unavailable, using line diff: %v", err)
		return Lines(orig, expect), nil
	}
	if res.ExitCode > 1 || res.ExitCode < 0 {
		return "", errors.Errorf("diff failed:\n%s", res)
	}

	// Strip leading two lines, which are temp file name.
	parts := strings.SplitN(res.Stdout, "\n", 3)
	if len(parts) < 3 {
		return "", errors.New("unexpected diff output")
	}
	return parts[2], nil
}

// Lines returns a line-based diff of orig and expect, or an empty string if
// they are equal.
func Lines(orig, expect string) string {
	return cmp.Diff(strings.Split(orig, "\n"), strings.Split(expect, "\n"))
}
