// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package outcome

import (
	"fmt"
	"strings"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/condition"
	"go.chromium.org/dexcompat/internal/errors"
)

// Entry associates a non-default Outcome with the table declaring it.
type Entry struct {
	Outcome Outcome
	Table   *condition.Table
}

// ConflictError is returned when more than one table declares an Outcome for
// the same test and axis values. It always indicates a mistake in the
// expectations, never something to be arbitrated at run time.
type ConflictError struct {
	Test string
	// Tables holds the names of the conflicting tables in registration order.
	Tables []string
	// Detail optionally describes the overlapping conditions.
	Detail string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("%s: conflicting expectations in tables %s", e.Test, strings.Join(e.Tables, ", "))
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Resolver maps a test and axis values to a single Outcome.
// It is immutable and safe for concurrent use.
type Resolver struct {
	entries []Entry
}

// NewResolver returns a Resolver evaluating entries in the given order.
//
// Passes can not be registered, and each Outcome may be registered at most
// once. If any test has Conditions in two tables that can match the same
// axis values, a *ConflictError is returned.
func NewResolver(entries ...Entry) (*Resolver, error) {
	seen := make(map[Outcome]string)
	for _, e := range entries {
		if e.Table == nil {
			return nil, errors.Errorf("nil table for outcome %v", e.Outcome)
		}
		if e.Outcome == Passes {
			return nil, errors.Errorf("table %s: %v is the default and can not be registered", e.Table.Name(), Passes)
		}
		if prev, ok := seen[e.Outcome]; ok {
			return nil, errors.Errorf("outcome %v registered by both %s and %s", e.Outcome, prev, e.Table.Name())
		}
		seen[e.Outcome] = e.Table.Name()
	}

	for i, a := range entries {
		for _, b := range entries[i+1:] {
			if ov := a.Table.Overlaps(b.Table); len(ov) > 0 {
				o := ov[0]
				return nil, &ConflictError{
					Test:   o.Test,
					Tables: []string{a.Table.Name(), b.Table.Name()},
					Detail: fmt.Sprintf("%v overlaps %v", o.First, o.Second),
				}
			}
		}
	}
	return &Resolver{entries: append([]Entry(nil), entries...)}, nil
}

// Resolve returns the Outcome declared for test under the given axis values,
// or Passes if no table matches. A *ConflictError is returned if more than
// one table matches.
func (r *Resolver) Resolve(test string, tool axis.Tool, comp axis.Compiler, rt axis.Runtime, m axis.Mode) (Outcome, error) {
	var matched []Entry
	for _, e := range r.entries {
		if e.Table.Matches(test, tool, comp, rt, m) {
			matched = append(matched, e)
		}
	}
	switch len(matched) {
	case 0:
		return Passes, nil
	case 1:
		return matched[0].Outcome, nil
	}
	names := make([]string, len(matched))
	for i, e := range matched {
		names[i] = e.Table.Name()
	}
	return Passes, &ConflictError{
		Test:   test,
		Tables: names,
		Detail: fmt.Sprintf("tool=%v compiler=%v runtime=%v mode=%v", tool, comp, rt, m),
	}
}

// MustResolve is like Resolve but panics on conflict. It is meant for
// resolvers built by NewResolver, which rejects overlapping tables.
func (r *Resolver) MustResolve(test string, tool axis.Tool, comp axis.Compiler, rt axis.Runtime, m axis.Mode) Outcome {
	o, err := r.Resolve(test, tool, comp, rt, m)
	if err != nil {
		panic(err)
	}
	return o
}

// Tables returns the names of the registered tables in evaluation order.
func (r *Resolver) Tables() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Table.Name()
	}
	return names
}

// Declared reports whether any table mentions test, regardless of axis
// values.
func (r *Resolver) Declared(test string) bool {
	for _, e := range r.entries {
		if e.Table.Contains(test) {
			return true
		}
	}
	return false
}
