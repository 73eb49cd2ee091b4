// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"

	"go.chromium.org/dexcompat/internal/errors"
)

// PlatformSupported reports whether the runtime can be launched on a host
// running the operating system goos.
func PlatformSupported(goos string) bool {
	return goos == "linux" || goos == "darwin"
}

// HostPlatform returns the operating system of the current host.
func HostPlatform(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get host information")
	}
	return info.OS, nil
}
