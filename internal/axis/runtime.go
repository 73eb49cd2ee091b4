// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package axis

import (
	"fmt"

	"go.chromium.org/dexcompat/internal/errors"
)

// Runtime is a release of the runtime that executes compiled tests.
// Runtimes are ordered from oldest to newest; ARTDefault is the floating
// tip-of-tree build and compares newer than every numbered release.
type Runtime int

const (
	ART444 Runtime = iota
	ART511
	ART601
	ART700
	// ARTDefault is selected when no runtime version is configured.
	ARTDefault

	numRuntimes = iota
)

var runtimeNames = [numRuntimes]string{"4.4.4", "5.1.1", "6.0.1", "7.0.0", "default"}

// AllRuntimes returns every Runtime from oldest to newest.
func AllRuntimes() []Runtime {
	return []Runtime{ART444, ART511, ART601, ART700, ARTDefault}
}

func (r Runtime) String() string {
	if r < 0 || int(r) >= numRuntimes {
		return fmt.Sprintf("runtime(%d)", int(r))
	}
	return runtimeNames[r]
}

// Valid reports whether r is a member of the closed set.
func (r Runtime) Valid() bool { return r >= 0 && int(r) < numRuntimes }

// NewerThan reports whether r is a more recent release than other.
func (r Runtime) NewerThan(other Runtime) bool {
	return r > other
}

// IsDefault reports whether r is the tip-of-tree runtime.
func (r Runtime) IsDefault() bool {
	return r == ARTDefault
}

// ParseRuntime returns the Runtime named s. An empty string selects
// ARTDefault.
func ParseRuntime(s string) (Runtime, error) {
	if s == "" {
		return ARTDefault, nil
	}
	for i, n := range runtimeNames {
		if n == s {
			return Runtime(i), nil
		}
	}
	return 0, errors.Errorf("unsupported runtime version %q (want one of %v)", s, runtimeNames)
}

// RuntimesBefore returns all runtimes strictly older than r, oldest first.
func RuntimesBefore(r Runtime) []Runtime {
	var rs []Runtime
	for _, v := range AllRuntimes() {
		if r.NewerThan(v) {
			rs = append(rs, v)
		}
	}
	return rs
}

// API levels of platform releases relevant to runtime minimums.
const (
	APILevelDefault = 1
	APILevelN       = 24
	APILevelO       = 26
)

// MinAPILevel returns the lowest API level the compiler should target for
// output run on r.
func MinAPILevel(r Runtime) int {
	switch r {
	case ARTDefault:
		return APILevelO
	case ART700:
		return APILevelN
	default:
		return APILevelDefault
	}
}
