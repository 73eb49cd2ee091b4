// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/dexcompat/internal/logging"
	"go.chromium.org/dexcompat/internal/logging/loggingtest"
)

func TestMultiLogger(t *testing.T) {
	logger1 := loggingtest.NewLogger(t, logging.LevelInfo)
	logger2 := loggingtest.NewLogger(t, logging.LevelInfo)

	logger := logging.NewMultiLogger(logger1)
	logger.Log(logging.LevelInfo, time.Time{}, "aaa")
	logger.AddLogger(logger2)
	logger.Log(logging.LevelInfo, time.Time{}, "bbb")
	logger.RemoveLogger(logger1)
	logger.Log(logging.LevelInfo, time.Time{}, "ccc")

	if diff := cmp.Diff(logger1.Logs(), []string{"aaa", "bbb"}); diff != "" {
		t.Errorf("Messages mismatch for logger1 (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(logger2.Logs(), []string{"bbb", "ccc"}); diff != "" {
		t.Errorf("Messages mismatch for logger2 (-got +want):\n%s", diff)
	}
}

func TestSinkLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSinkLogger(logging.LevelInfo, false, logging.NewWriterSink(&buf))
	logger.Log(logging.LevelDebug, time.Time{}, "debug")
	logger.Log(logging.LevelInfo, time.Time{}, "info")

	if got, want := buf.String(), "info\n"; got != want {
		t.Errorf("Written logs = %q; want %q", got, want)
	}
}

func TestSinkLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSinkLogger(logging.LevelDebug, true, logging.NewWriterSink(&buf))
	logger.Log(logging.LevelInfo, time.Date(2026, 10, 15, 1, 2, 3, 4000, time.UTC), "compiled")

	if got, want := buf.String(), "2026-10-15T01:02:03.000004Z compiled\n"; got != want {
		t.Errorf("Written logs = %q; want %q", got, want)
	}
}

func TestContextPropagation(t *testing.T) {
	parent := loggingtest.NewLogger(t, logging.LevelDebug)
	child := loggingtest.NewLogger(t, logging.LevelDebug)
	isolated := loggingtest.NewLogger(t, logging.LevelDebug)

	ctx := logging.AttachLogger(context.Background(), parent)
	logging.Info(ctx, "run ", 1)

	childCtx := logging.WithPrefix(logging.AttachLogger(ctx, child), "[001-HelloWorld] ")
	logging.Debugf(childCtx, "exit code %d", 0)

	isoCtx := logging.AttachLoggerNoPropagation(ctx, isolated)
	logging.Infof(isoCtx, "quiet")

	if diff := cmp.Diff(parent.Logs(), []string{"run 1", "[001-HelloWorld] exit code 0"}); diff != "" {
		t.Errorf("Parent logs mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(child.Logs(), []string{"[001-HelloWorld] exit code 0"}); diff != "" {
		t.Errorf("Child logs mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(isolated.Logs(), []string{"quiet"}); diff != "" {
		t.Errorf("Isolated logs mismatch (-got +want):\n%s", diff)
	}
}

func TestNoLogger(t *testing.T) {
	// Must not panic.
	logging.Info(context.Background(), "dropped")
}

func TestSinkLoggerMultiLine(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSinkLogger(logging.LevelInfo, true, logging.NewWriterSink(&buf))
	logger.Log(logging.LevelInfo, time.Date(2026, 10, 15, 1, 2, 3, 0, time.UTC), "output mismatch:\n-a\n+b\n")

	const want = "2026-10-15T01:02:03.000000Z output mismatch:\n" +
		"                            -a\n" +
		"                            +b\n"
	if diff := cmp.Diff(buf.String(), want); diff != "" {
		t.Errorf("Written logs mismatch (-got +want):\n%s", diff)
	}
}
