// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !unix

package process

import "os"

func signalName(ps *os.ProcessState) (string, bool) {
	return "", false
}
