// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"go.chromium.org/dexcompat/internal/errors"
)

// Archiver packages several dex files into one archive the runtime can
// load.
type Archiver interface {
	Archive(files []string, dst string) error
}

// ZipArchiver stores files at the top level of a zip archive under their
// base names.
type ZipArchiver struct{}

var _ Archiver = ZipArchiver{}

// Archive writes files to a new archive at dst.
func (ZipArchiver) Archive(files []string, dst string) (retErr error) {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()

	zw := zip.NewWriter(f)
	seen := make(map[string]struct{})
	for _, p := range files {
		name := filepath.Base(p)
		if _, ok := seen[name]; ok {
			return errors.Errorf("duplicate archive entry %s", name)
		}
		seen[name] = struct{}{}
		if err := addFile(zw, p, name); err != nil {
			return errors.Wrapf(err, "failed to add %s to %s", p, dst)
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
