// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"path/filepath"
	"strings"

	"go.chromium.org/dexcompat/internal/axis"
	"go.chromium.org/dexcompat/internal/errors"
	"go.chromium.org/dexcompat/internal/process"
)

var runtimeDirs = map[axis.Runtime]string{
	axis.ARTDefault: "art",
	axis.ART700:     "art-7.0.0",
	axis.ART601:     "art-6.0.1",
	axis.ART511:     "art-5.1.1",
	axis.ART444:     "dalvik",
}

// RuntimeBinary returns the launcher script of rt under toolsDir. Runtimes
// are Linux builds; other hosts run them in a container.
func RuntimeBinary(toolsDir string, rt axis.Runtime) (string, error) {
	dir, ok := runtimeDirs[rt]
	if !ok {
		return "", errors.Errorf("unsupported runtime %v", rt)
	}
	bin := "art"
	if rt == axis.ART444 {
		bin = "dalvik"
	}
	return filepath.Join(toolsDir, "linux", dir, "bin", bin), nil
}

// Property is a system property passed to the runtime.
type Property struct {
	Key   string
	Value string
}

// RuntimeCommand assembles a runtime invocation:
//
//	<launcher> <binary> <options...> -D<k>=<v>... -cp <a:b> -Xbootclasspath:<c:d> <main> <args...>
type RuntimeCommand struct {
	Runtime  axis.Runtime
	ToolsDir string
	// Platform is the host operating system as in runtime.GOOS.
	Platform string

	Options       []string
	Properties    []Property
	Classpath     []string
	BootClasspath []string
	MainClass     string
	Args          []string
}

// SetProperty sets a system property. Setting an existing key replaces its
// value but keeps its position.
func (r *RuntimeCommand) SetProperty(key, value string) {
	for i, p := range r.Properties {
		if p.Key == key {
			r.Properties[i].Value = value
			return
		}
	}
	r.Properties = append(r.Properties, Property{key, value})
}

// Command returns the process command for r.
func (r *RuntimeCommand) Command() (*process.Command, error) {
	bin, err := RuntimeBinary(r.ToolsDir, r.Runtime)
	if err != nil {
		return nil, err
	}

	var args []string
	switch r.Platform {
	case "linux":
		// The launcher script requires bash.
		args = append(args, "/bin/bash")
	case "darwin":
		args = append(args, filepath.Join(r.ToolsDir, "docker", "run.sh"))
	default:
		return nil, errors.Errorf("runtime is not supported on %s", r.Platform)
	}
	args = append(args, bin)
	args = append(args, r.Options...)
	for _, p := range r.Properties {
		args = append(args, "-D"+p.Key+"="+p.Value)
	}
	if len(r.Classpath) > 0 {
		args = append(args, "-cp", strings.Join(r.Classpath, ":"))
	}
	if len(r.BootClasspath) > 0 {
		args = append(args, "-Xbootclasspath:"+strings.Join(r.BootClasspath, ":"))
	}
	if r.MainClass != "" {
		args = append(args, r.MainClass)
	}
	args = append(args, r.Args...)
	return &process.Command{Args: args}, nil
}
