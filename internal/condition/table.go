// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package condition

import (
	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/errors"
)

// Table is a named multimap from test names to Conditions. A test matches
// the table if any of its Conditions matches.
//
// A Table is populated with Add while configuration is assembled and must
// not be modified afterwards. Once populated it is safe for concurrent use.
type Table struct {
	name  string
	tests []string
	index map[string][]Condition
}

// NewTable returns an empty Table called name.
func NewTable(name string) *Table {
	return &Table{name: name, index: make(map[string][]Condition)}
}

// Name returns the name given to NewTable.
func (t *Table) Name() string { return t.name }

// Add appends cond as an alternative for test.
func (t *Table) Add(test string, cond Condition) error {
	if test == "" {
		return errors.Errorf("%s: empty test name", t.name)
	}
	if !cond.Valid() {
		return errors.Errorf("%s: %s: condition has an empty axis", t.name, test)
	}
	if _, ok := t.index[test]; !ok {
		t.tests = append(t.tests, test)
	}
	t.index[test] = append(t.index[test], cond)
	return nil
}

// MustAdd is like Add but panics on error.
func (t *Table) MustAdd(test string, cond Condition) *Table {
	if err := t.Add(test, cond); err != nil {
		panic(err)
	}
	return t
}

// Matches reports whether test has a Condition in t satisfied by the axis
// values. Tests absent from t never match.
func (t *Table) Matches(test string, tool axis.Tool, comp axis.Compiler, r axis.Runtime, m axis.Mode) bool {
	for _, c := range t.index[test] {
		if c.Matches(tool, comp, r, m) {
			return true
		}
	}
	return false
}

// Contains reports whether test has at least one entry in t.
func (t *Table) Contains(test string) bool {
	_, ok := t.index[test]
	return ok
}

// Conditions returns a copy of the Conditions registered for test, in the
// order they were added.
func (t *Table) Conditions(test string) []Condition {
	cs := t.index[test]
	if len(cs) == 0 {
		return nil
	}
	return append([]Condition(nil), cs...)
}

// Tests returns test names in the order they were first added.
func (t *Table) Tests() []string {
	return append([]string(nil), t.tests...)
}

// Len returns the number of distinct tests in t.
func (t *Table) Len() int { return len(t.tests) }

// Overlap describes a test whose Conditions in two tables can both match.
type Overlap struct {
	Test   string
	First  Condition
	Second Condition
}

// Overlaps returns every test whose Conditions in t and other can be
// satisfied by the same axis values, in t's insertion order.
func (t *Table) Overlaps(other *Table) []Overlap {
	var res []Overlap
	for _, test := range t.tests {
		for _, a := range t.index[test] {
			for _, b := range other.index[test] {
				if a.Overlaps(b) {
					res = append(res, Overlap{Test: test, First: a, Second: b})
				}
			}
		}
	}
	return res
}
