// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package platform

func windowsVersion() (major, minor uint32, workstation, ok bool) {
	return 0, 0, false, false
}
