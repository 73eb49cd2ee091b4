// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package axis defines the four independent dimensions a test expectation
// can vary over: the tool that produced the input, the compiler stage under
// test, the runtime version the output runs on, and the build mode.
//
// Every axis is a closed, ordered enumeration. Values are small integers so
// that sets of them fit in a bit mask (see package condition).
package axis

import (
	"fmt"

	"go.chromium.org/dexcompat/internal/errors"
)

// Tool identifies the upstream encoder that produced a test's input.
type Tool int

const (
	// ToolNone means the compiler reads class files directly.
	ToolNone Tool = iota
	// ToolDX means the input was produced by dx.
	ToolDX
	// ToolJack means the input was produced by Jack.
	ToolJack

	numTools = iota
)

var toolNames = [numTools]string{"none", "dx", "jack"}

// AllTools returns every Tool in declaration order.
func AllTools() []Tool {
	return []Tool{ToolNone, ToolDX, ToolJack}
}

func (t Tool) String() string {
	if t < 0 || int(t) >= numTools {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return toolNames[t]
}

// Valid reports whether t is a member of the closed set.
func (t Tool) Valid() bool { return t >= 0 && int(t) < numTools }

// ParseTool returns the Tool named s.
func ParseTool(s string) (Tool, error) {
	for i, n := range toolNames {
		if n == s {
			return Tool(i), nil
		}
	}
	return 0, errors.Errorf("unknown tool %q (want one of %v)", s, toolNames)
}

// Compiler identifies the compiler pipeline configuration under test.
type Compiler int

const (
	// D8 runs the first-stage compiler only.
	D8 Compiler = iota
	// R8 runs the second-stage compiler only.
	R8
	// R8AfterD8 runs R8 on the output of a previous D8 run.
	R8AfterD8

	numCompilers = iota
)

var compilerNames = [numCompilers]string{"d8", "r8", "r8-after-d8"}

// AllCompilers returns every Compiler in declaration order.
func AllCompilers() []Compiler {
	return []Compiler{D8, R8, R8AfterD8}
}

func (c Compiler) String() string {
	if c < 0 || int(c) >= numCompilers {
		return fmt.Sprintf("compiler(%d)", int(c))
	}
	return compilerNames[c]
}

// Valid reports whether c is a member of the closed set.
func (c Compiler) Valid() bool { return c >= 0 && int(c) < numCompilers }

// ParseCompiler returns the Compiler named s.
func ParseCompiler(s string) (Compiler, error) {
	for i, n := range compilerNames {
		if n == s {
			return Compiler(i), nil
		}
	}
	return 0, errors.Errorf("unknown compiler %q (want one of %v)", s, compilerNames)
}

// Mode is the build mode passed to the compiler.
type Mode int

const (
	// Debug keeps debug information and disables optimizations.
	Debug Mode = iota
	// Release optimizes and strips debug information.
	Release

	numModes = iota
)

var modeNames = [numModes]string{"debug", "release"}

// AllModes returns every Mode in declaration order.
func AllModes() []Mode {
	return []Mode{Debug, Release}
}

func (m Mode) String() string {
	if m < 0 || int(m) >= numModes {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is a member of the closed set.
func (m Mode) Valid() bool { return m >= 0 && int(m) < numModes }

// ParseMode returns the Mode named s.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return 0, errors.Errorf("unknown mode %q (want one of %v)", s, modeNames)
}

// DefaultMode returns the build mode a compiler stage is tested with.
func DefaultMode(c Compiler) Mode {
	if c == R8 {
		return Release
	}
	return Debug
}
