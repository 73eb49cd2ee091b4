// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package condition provides predicates over the four test axes and tables
// mapping test names to such predicates.
package condition

import (
	"fmt"
	"math/bits"
	"strings"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/errors"
)

// set is a bit mask of axis values. Every axis has fewer than 8 members.
type set uint8

func (s set) has(i int) bool { return s&(1<<uint(i)) != 0 }

func (s set) len() int { return bits.OnesCount8(uint8(s)) }

func fullSet(n int) set { return set(1<<uint(n)) - 1 }

// Condition is an immutable predicate over tools, compilers, runtimes and
// modes. The zero value is invalid; use New or Any.
type Condition struct {
	tools     set
	compilers set
	runtimes  set
	modes     set
}

// Option restricts one axis of a Condition.
type Option func(c *Condition)

// Tools restricts the condition to the given tools.
func Tools(ts ...axis.Tool) Option {
	return func(c *Condition) {
		c.tools = 0
		for _, t := range ts {
			c.tools |= 1 << uint(t)
		}
	}
}

// Compilers restricts the condition to the given compilers.
func Compilers(cs ...axis.Compiler) Option {
	return func(c *Condition) {
		c.compilers = 0
		for _, v := range cs {
			c.compilers |= 1 << uint(v)
		}
	}
}

// Runtimes restricts the condition to the given runtimes.
func Runtimes(rs ...axis.Runtime) Option {
	return func(c *Condition) {
		c.runtimes = 0
		for _, r := range rs {
			c.runtimes |= 1 << uint(r)
		}
	}
}

// Modes restricts the condition to the given modes.
func Modes(ms ...axis.Mode) Option {
	return func(c *Condition) {
		c.modes = 0
		for _, m := range ms {
			c.modes |= 1 << uint(m)
		}
	}
}

// Any returns a Condition matching every combination of axis values.
func Any() Condition {
	return Condition{
		tools:     fullSet(len(axis.AllTools())),
		compilers: fullSet(len(axis.AllCompilers())),
		runtimes:  fullSet(len(axis.AllRuntimes())),
		modes:     fullSet(len(axis.AllModes())),
	}
}

// New returns a Condition restricted by opts. Axes without an option match
// all values. An option that leaves its axis empty is an error, since such a
// Condition could never match.
func New(opts ...Option) (Condition, error) {
	c := Any()
	for _, o := range opts {
		o(&c)
	}
	full := Any()
	for _, ax := range []struct {
		name string
		s    set
		all  set
	}{
		{"tools", c.tools, full.tools},
		{"compilers", c.compilers, full.compilers},
		{"runtimes", c.runtimes, full.runtimes},
		{"modes", c.modes, full.modes},
	} {
		if ax.s == 0 {
			return Condition{}, errors.Errorf("condition has empty %s", ax.name)
		}
		if ax.s&^ax.all != 0 {
			return Condition{}, errors.Errorf("condition has out of range %s", ax.name)
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. It is meant for conditions written
// as literals in code.
func MustNew(opts ...Option) Condition {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether every axis of c is non-empty.
func (c Condition) Valid() bool {
	return c.tools != 0 && c.compilers != 0 && c.runtimes != 0 && c.modes != 0
}

// Matches reports whether the combination of axis values satisfies c.
func (c Condition) Matches(t axis.Tool, comp axis.Compiler, r axis.Runtime, m axis.Mode) bool {
	return c.tools.has(int(t)) && c.compilers.has(int(comp)) && c.runtimes.has(int(r)) && c.modes.has(int(m))
}

// Overlaps reports whether at least one combination of axis values satisfies
// both c and other.
func (c Condition) Overlaps(other Condition) bool {
	return c.tools&other.tools != 0 &&
		c.compilers&other.compilers != 0 &&
		c.runtimes&other.runtimes != 0 &&
		c.modes&other.modes != 0
}

// Tools returns the tools c matches, in axis order.
func (c Condition) Tools() []axis.Tool {
	var ts []axis.Tool
	for _, t := range axis.AllTools() {
		if c.tools.has(int(t)) {
			ts = append(ts, t)
		}
	}
	return ts
}

// Compilers returns the compilers c matches, in axis order.
func (c Condition) Compilers() []axis.Compiler {
	var cs []axis.Compiler
	for _, v := range axis.AllCompilers() {
		if c.compilers.has(int(v)) {
			cs = append(cs, v)
		}
	}
	return cs
}

// Runtimes returns the runtimes c matches, oldest first.
func (c Condition) Runtimes() []axis.Runtime {
	var rs []axis.Runtime
	for _, r := range axis.AllRuntimes() {
		if c.runtimes.has(int(r)) {
			rs = append(rs, r)
		}
	}
	return rs
}

// Modes returns the modes c matches, in axis order.
func (c Condition) Modes() []axis.Mode {
	var ms []axis.Mode
	for _, m := range axis.AllModes() {
		if c.modes.has(int(m)) {
			ms = append(ms, m)
		}
	}
	return ms
}

// String returns a compact description such as
// "tools=[dx] compilers=* runtimes=[4.4.4 5.1.1] modes=*".
func (c Condition) String() string {
	full := Any()
	var parts []string
	add := func(name string, s, all set, vals interface{}) {
		if s == all {
			parts = append(parts, name+"=*")
			return
		}
		parts = append(parts, fmt.Sprintf("%s=%v", name, vals))
	}
	add("tools", c.tools, full.tools, c.Tools())
	add("compilers", c.compilers, full.compilers, c.Compilers())
	add("runtimes", c.runtimes, full.runtimes, c.Runtimes())
	add("modes", c.modes, full.modes, c.Modes())
	return strings.Join(parts, " ")
}

// size returns the number of axis combinations c matches.
func (c Condition) size() int {
	return c.tools.len() * c.compilers.len() * c.runtimes.len() * c.modes.len()
}
