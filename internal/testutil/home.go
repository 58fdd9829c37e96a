// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir points the platform's home and user configuration variables at
// dir and returns a cleanup function restoring them.
//
// Platform handling:
//   - Windows: sets USERPROFILE and APPDATA
//   - Linux/macOS: sets HOME and clears XDG_CONFIG_HOME
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	var cleanups []func()
	switch runtime.GOOS {
	case "windows":
		cleanups = append(cleanups,
			MustSetenv(t, "USERPROFILE", dir),
			MustSetenv(t, "APPDATA", dir+`\AppData\Roaming`))
	default:
		cleanups = append(cleanups,
			MustSetenv(t, "HOME", dir),
			MustSetenv(t, "XDG_CONFIG_HOME", ""))
	}
	return func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
}
