// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fixture locates the on-disk inputs and expected results of tests.
//
// Fixtures are laid out as <root>/<tooldir>/<test>/, where tooldir is "jack"
// for Jack inputs and "dx" otherwise; class file inputs for the tool "none"
// live next to the dx outputs. Runtimes other than the default one read
// fixtures from a separate legacy root.
package fixture

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/errors"
)

// Well-known file names inside a test directory.
const (
	ExpectedFile = "expected.txt"
	CheckFile    = "check"
	ReferenceDex = "classes.dex"
	nativeLibDir = "lib64"
	smaliDir     = "smali"
	smaliDexFile = "smali/out.dex"
)

// Layout resolves fixture paths.
type Layout struct {
	// Root holds fixtures for the default runtime.
	Root string
	// LegacyRoot holds fixtures for numbered runtimes. If empty, Root is
	// used for every runtime.
	LegacyRoot string
}

// ToolDir returns the name of the directory holding fixtures for tool.
func ToolDir(tool axis.Tool) string {
	if tool == axis.ToolJack {
		return "jack"
	}
	return "dx"
}

func (l *Layout) root(rt axis.Runtime) string {
	if !rt.IsDefault() && l.LegacyRoot != "" {
		return l.LegacyRoot
	}
	return l.Root
}

// Dir returns the fixture directory of test for tool on runtime rt. The
// directory may not exist.
func (l *Layout) Dir(test string, tool axis.Tool, rt axis.Runtime) string {
	return filepath.Join(l.root(rt), ToolDir(tool), test)
}

// Exists reports whether the fixture directory of test exists.
func (l *Layout) Exists(test string, tool axis.Tool, rt axis.Runtime) bool {
	fi, err := os.Stat(l.Dir(test, tool, rt))
	return err == nil && fi.IsDir()
}

// NativeLibraryDir returns the directory shared by all native libraries
// used by tests on runtime rt.
func (l *Layout) NativeLibraryDir(rt axis.Runtime) string {
	return filepath.Join(l.root(rt), nativeLibDir)
}

// Resolve returns the absolute form of a path relative to the fixture root
// of rt. It is used for inputs borrowed from other tests.
func (l *Layout) Resolve(rel string, rt axis.Runtime) (string, error) {
	return filepath.Abs(filepath.Join(l.root(rt), filepath.FromSlash(rel)))
}

// Tests returns the names of all test directories for tool on runtime rt,
// sorted. A missing tool directory yields no tests.
func (l *Layout) Tests(tool axis.Tool, rt axis.Runtime) ([]string, error) {
	dir := filepath.Join(l.root(rt), ToolDir(tool))
	ents, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range ents {
		if e.IsDir() && e.Name() != nativeLibDir {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Inputs returns the compiler inputs found in the fixture directory dir.
// For the tool "none" these are all files under classes/ and classes2/ plus
// the assembled smali/out.dex; for other tools they are the top-level .dex
// files.
func Inputs(dir string, tool axis.Tool) ([]string, error) {
	fsys := os.DirFS(dir)
	var patterns []string
	if tool == axis.ToolNone {
		patterns = []string{"classes/**", "classes2/**"}
	} else {
		patterns = []string{"*.dex"}
	}

	var rels []string
	for _, p := range patterns {
		ms, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to match %s in %s", p, dir)
		}
		sort.Strings(ms)
		rels = append(rels, ms...)
	}
	if tool == axis.ToolNone {
		if fi, err := os.Stat(filepath.Join(dir, smaliDir)); err == nil && fi.IsDir() {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(smaliDexFile))); err != nil {
				return nil, errors.Wrapf(err, "%s has smali sources but no assembled dex", dir)
			}
			rels = append(rels, smaliDexFile)
		}
	}

	paths := make([]string, len(rels))
	for i, r := range rels {
		paths[i] = filepath.Join(dir, filepath.FromSlash(r))
	}
	return paths, nil
}

// ExpectedOutput returns the expected runtime output stored in dir.
func ExpectedOutput(dir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, ExpectedFile))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckScript returns the path of a custom output comparison script in dir,
// if there is one.
func CheckScript(dir string) (string, bool) {
	return existing(filepath.Join(dir, CheckFile))
}

// ReferenceArtifact returns the path of the prebuilt archive of test in
// dir, if there is one. Its output on the runtime is authoritative when it
// disagrees with the expected output file.
func ReferenceArtifact(dir, test string) (string, bool) {
	return existing(filepath.Join(dir, test+".jar"))
}

// ReferenceDexFile returns the path of the prebuilt dex file in dir, if
// there is one. It is only used to render structural diffs.
func ReferenceDexFile(dir string) (string, bool) {
	return existing(filepath.Join(dir, ReferenceDex))
}

func existing(p string) (string, bool) {
	fi, err := os.Stat(p)
	if err != nil || fi.IsDir() {
		return "", false
	}
	return p, true
}
