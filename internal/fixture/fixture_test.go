// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fixture

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/testutil"
)

func TestDir(t *testing.T) {
	l := &Layout{Root: "/new", LegacyRoot: "/old"}
	for _, tc := range []struct {
		tool axis.Tool
		rt   axis.Runtime
		want string
	}{
		{axis.ToolNone, axis.ARTDefault, "/new/dx/001-hello"},
		{axis.ToolDX, axis.ARTDefault, "/new/dx/001-hello"},
		{axis.ToolJack, axis.ARTDefault, "/new/jack/001-hello"},
		{axis.ToolDX, axis.ART444, "/old/dx/001-hello"},
	} {
		if got := l.Dir("001-hello", tc.tool, tc.rt); got != tc.want {
			t.Errorf("Dir(%v, %v) = %q; want %q", tc.tool, tc.rt, got, tc.want)
		}
	}
	if got, want := l.NativeLibraryDir(axis.ART700), "/old/lib64"; got != want {
		t.Errorf("NativeLibraryDir(7.0.0) = %q; want %q", got, want)
	}

	noLegacy := &Layout{Root: "/new"}
	if got, want := noLegacy.Dir("x", axis.ToolDX, axis.ART444), "/new/dx/x"; got != want {
		t.Errorf("Dir without legacy root = %q; want %q", got, want)
	}
}

func TestInputs(t *testing.T) {
	td := testutil.TempDir(t)
	if err := testutil.WriteFiles(td, map[string]string{
		"dx/001/classes/Main.class":      "",
		"dx/001/classes/pkg/Foo.class":   "",
		"dx/001/classes2/Second.class":   "",
		"dx/001/smali/out.dex":           "",
		"dx/001/smali/Test.smali":        "",
		"dx/001/classes.dex":             "",
		"dx/001/expected.txt":            "hello\n",
		"dx/002/smali/Test.smali":        "",
		"jack/001/classes.dex":           "",
		"jack/001/classes2.dex":          "",
		"jack/001/classes/ignored.class": "",
		"jack/001/nested/ignored.dex":    "",
		"lib64/libarttest.so":            "",
	}); err != nil {
		t.Fatal(err)
	}
	l := &Layout{Root: td}

	got, err := Inputs(l.Dir("001", axis.ToolNone, axis.ARTDefault), axis.ToolNone)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(td, "dx", "001")
	want := []string{
		filepath.Join(dir, "classes", "Main.class"),
		filepath.Join(dir, "classes", "pkg", "Foo.class"),
		filepath.Join(dir, "classes2", "Second.class"),
		filepath.Join(dir, "smali", "out.dex"),
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Inputs(none) mismatch (-got +want):\n%s", diff)
	}

	got, err = Inputs(l.Dir("001", axis.ToolJack, axis.ARTDefault), axis.ToolJack)
	if err != nil {
		t.Fatal(err)
	}
	jdir := filepath.Join(td, "jack", "001")
	want = []string{filepath.Join(jdir, "classes.dex"), filepath.Join(jdir, "classes2.dex")}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Inputs(jack) mismatch (-got +want):\n%s", diff)
	}

	if _, err := Inputs(l.Dir("002", axis.ToolNone, axis.ARTDefault), axis.ToolNone); err == nil {
		t.Error("Inputs succeeded for smali sources without assembled dex")
	}
}

func TestFiles(t *testing.T) {
	td := testutil.TempDir(t)
	if err := testutil.WriteFiles(td, map[string]string{
		"dx/001/expected.txt": "hello\n",
		"dx/001/check":        "#!/bin/sh\n",
		"dx/001/001.jar":      "",
		"dx/001/classes.dex":  "",
		"dx/002/expected.txt": "",
		"lib64/libarttest.so": "",
	}); err != nil {
		t.Fatal(err)
	}
	l := &Layout{Root: td}
	dir := l.Dir("001", axis.ToolDX, axis.ARTDefault)

	if !l.Exists("001", axis.ToolDX, axis.ARTDefault) || l.Exists("003", axis.ToolDX, axis.ARTDefault) {
		t.Error("Exists returned wrong results")
	}
	if out, err := ExpectedOutput(dir); err != nil || out != "hello\n" {
		t.Errorf("ExpectedOutput = %q, %v; want %q", out, err, "hello\n")
	}
	if _, ok := CheckScript(dir); !ok {
		t.Error("CheckScript not found")
	}
	if _, ok := ReferenceArtifact(dir, "001"); !ok {
		t.Error("ReferenceArtifact not found")
	}
	if _, ok := ReferenceDexFile(dir); !ok {
		t.Error("ReferenceDexFile not found")
	}
	other := l.Dir("002", axis.ToolDX, axis.ARTDefault)
	if _, ok := CheckScript(other); ok {
		t.Error("CheckScript found in directory without one")
	}

	tests, err := l.Tests(axis.ToolDX, axis.ARTDefault)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tests, []string{"001", "002"}); diff != "" {
		t.Errorf("Tests mismatch (-got +want):\n%s", diff)
	}
	if tests, err := l.Tests(axis.ToolJack, axis.ARTDefault); err != nil || len(tests) != 0 {
		t.Errorf("Tests(jack) = %v, %v; want none", tests, err)
	}
}
