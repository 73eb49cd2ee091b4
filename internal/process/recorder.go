// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package process

import (
	"context"
	"sync"
)

// Recorder is a Runner that remembers every command passed to it before
// delegating to another Runner.
type Recorder struct {
	r Runner

	mu   sync.Mutex
	cmds []*Command
}

var _ Runner = &Recorder{}

// NewRecorder returns a Recorder delegating to r.
func NewRecorder(r Runner) *Recorder {
	return &Recorder{r: r}
}

// Run records cmd and runs it with the underlying Runner.
func (r *Recorder) Run(ctx context.Context, cmd *Command) (*Result, error) {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmd)
	r.mu.Unlock()
	return r.r.Run(ctx, cmd)
}

// Commands returns the commands run so far, in order.
func (r *Recorder) Commands() []*Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Command(nil), r.cmds...)
}

// Len returns the number of commands run so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cmds)
}

// Func adapts a function to a Runner.
type Func func(ctx context.Context, cmd *Command) (*Result, error)

// Run calls f.
func (f Func) Run(ctx context.Context, cmd *Command) (*Result, error) {
	return f(ctx, cmd)
}
