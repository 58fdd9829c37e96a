// SPDX-License-Identifier: MPL-2.0

package platform

import "github.com/spf13/afero"

// Sandbox type constants.
const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"
)

// SandboxType identifies the type of application sandbox, if any.
type SandboxType string

// DetectSandbox reports the sandbox selfdiscovery runs in. Inside a sandbox
// the release files under /etc describe the runtime, not the host.
//
// Detection methods:
//   - Flatpak: Checks for existence of /.flatpak-info
//   - Snap: Checks for SNAP_NAME environment variable
func DetectSandbox(fs afero.Fs, getenv func(string) string) SandboxType {
	if ok, _ := afero.Exists(fs, "/.flatpak-info"); ok {
		return SandboxFlatpak
	}
	if getenv != nil && getenv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

// HostRoot returns where the host filesystem is visible from inside st.
func HostRoot(st SandboxType) string {
	switch st {
	case SandboxFlatpak:
		return "/run/host"
	case SandboxSnap:
		return "/var/lib/snapd/hostfs"
	default:
		return ""
	}
}
