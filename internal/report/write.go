// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.chromium.org/dexcompat/internal/logging"
)

const (
	// ResultsFilename is the name of the file written by WriteResults.
	ResultsFilename = "results.json"
	// StreamedResultsFilename is a file name to be used with StreamedWriter.
	StreamedResultsFilename = "streamed_results.jsonl"
)

// WriteResults writes run to ResultsFilename in dir, creating dir if needed.
func WriteResults(dir string, run *Run) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, ResultsFilename))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return err
	}
	return f.Close()
}

// StreamedWriter appends JSON-marshaled results to a file as tests finish.
// It is safe for concurrent use.
type StreamedWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// NewStreamedWriter creates a StreamedWriter writing to path. If the file
// already exists, new results are appended to it.
func NewStreamedWriter(path string) (*StreamedWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return &StreamedWriter{f: f, enc: json.NewEncoder(f)}, nil
}

// Close closes the underlying file.
func (w *StreamedWriter) Close() error {
	return w.f.Close()
}

// Write writes the JSON-marshaled representation of res as one line.
func (w *StreamedWriter) Write(res *Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(res)
}

// WriteResultsToLogs writes a line per result and a summary via ctx. color
// enables ANSI colors for terminals.
func WriteResultsToLogs(ctx context.Context, results []*Result, color bool) {
	ml := 0
	for _, r := range results {
		if n := len(r.ID()); n > ml {
			ml = n
		}
	}

	const (
		red    = "\033[1;31m"
		green  = "\033[1;32m"
		yellow = "\033[1;33m"
		reset  = "\033[0m"
	)
	label := func(s, clr string) string {
		if color {
			return clr + s + reset
		}
		return s
	}

	logging.Info(ctx, strings.Repeat("-", 80))
	for _, r := range results {
		pn := fmt.Sprintf("%-*s ", ml, r.ID())
		switch r.Verdict {
		case VerdictPass:
			logging.Info(ctx, pn+label("[ PASS ]", green))
		case VerdictSkip:
			logging.Info(ctx, pn+label("[ SKIP ]", yellow)+" "+r.Note)
		default:
			for i, e := range r.Errors {
				if i == 0 {
					logging.Info(ctx, pn+label("[ FAIL ]", red)+" "+e.Reason)
				} else {
					logging.Info(ctx, strings.Repeat(" ", ml+10)+e.Reason)
				}
			}
		}
	}
	logging.Info(ctx, strings.Repeat("-", 80))
	s := Summarize(results)
	logging.Infof(ctx, "%d passed, %d failed, %d skipped", s.Passed, s.Failed, s.Skipped)
}
