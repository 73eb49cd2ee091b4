// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import "testing"

func TestEscapeSlice(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"/bin/bash", "tools/linux/art/bin/art"}, "/bin/bash tools/linux/art/bin/art"},
		{[]string{"-Djava.library.path=/tmp/lib64"}, "-Djava.library.path=/tmp/lib64"},
		{[]string{"=foo"}, "'=foo'"},
		{[]string{"a b", "it's"}, `'a b' 'it'"'"'s'`},
		{[]string{""}, "''"},
	} {
		if got := EscapeSlice(tc.args); got != tc.want {
			t.Errorf("EscapeSlice(%q) = %q; want %q", tc.args, got, tc.want)
		}
	}
}
