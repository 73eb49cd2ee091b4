// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package outcome resolves the declared behavior of a test for one
// combination of axis values.
package outcome

import (
	"fmt"

	"go.chromium.org/dexcompat/internal/errors"
)

// Outcome is the declared behavior of a test.
type Outcome int

const (
	// Passes is the default when no table declares otherwise.
	Passes Outcome = iota
	// FailsExpectedly means the stage is known to fail.
	FailsExpectedly
	// TimesOut means the stage is known not to finish.
	TimesOut
	// Flaky means the stage does not behave deterministically.
	Flaky

	numOutcomes = iota
)

var outcomeNames = [numOutcomes]string{"passes", "fails", "times_out", "flaky"}

// All returns every Outcome.
func All() []Outcome {
	return []Outcome{Passes, FailsExpectedly, TimesOut, Flaky}
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= numOutcomes {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Parse returns the Outcome named s.
func Parse(s string) (Outcome, error) {
	for i, n := range outcomeNames {
		if n == s {
			return Outcome(i), nil
		}
	}
	return 0, errors.Errorf("unknown outcome %q", s)
}
