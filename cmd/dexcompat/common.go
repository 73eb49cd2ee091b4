// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/config"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/expectations"
	"go.chromium.org/dexcompat/internal/logging"
	"go.chromium.org/dexcompat/internal/spec"
)

// loadBuilder loads the expectations named by cfg and returns a builder of
// specs for the fixtures named by cfg.
func loadBuilder(ctx context.Context, cfg *config.Config) (*expectations.Registry, *spec.Builder, error) {
	logging.Debug(ctx, "Loading expectations from ", cfg.ExpectationsPath)
	reg, err := expectations.LoadFile(cfg.ExpectationsPath)
	if err != nil {
		return nil, nil, err
	}
	return reg, spec.NewBuilder(reg, cfg.Fixtures(), cfg.FlakyPolicy), nil
}

// envFor returns the run-wide axis values used with comp.
func envFor(cfg *config.Config, comp axis.Compiler) spec.Env {
	return spec.Env{Compiler: comp, Runtime: cfg.Runtime, Mode: axis.DefaultMode(comp)}
}

// fixtureTests returns the sorted names of fixture tests available for any
// selected tool.
func fixtureTests(cfg *config.Config) ([]string, error) {
	seen := make(map[string]struct{})
	layout := cfg.Fixtures()
	for _, tool := range cfg.SelectedTools() {
		names, err := layout.Tests(tool, cfg.Runtime)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list fixtures for %v", tool)
		}
		for _, n := range names {
			seen[n] = struct{}{}
		}
	}
	names := maps.Keys(seen)
	slices.Sort(names)
	return names, nil
}

// matchTests returns the names matching any of patterns, or all names if
// patterns is empty.
func matchTests(names, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return names, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("bad pattern %q", p)
		}
	}
	var matched []string
	for _, n := range names {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, n); ok {
				matched = append(matched, n)
				break
			}
		}
	}
	return matched, nil
}
