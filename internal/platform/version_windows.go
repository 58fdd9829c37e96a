// SPDX-License-Identifier: MPL-2.0

//go:build windows

package platform

import "golang.org/x/sys/windows"

const ntWorkstation = 1

func windowsVersion() (major, minor uint32, workstation, ok bool) {
	info := windows.RtlGetVersion()
	if info == nil {
		return 0, 0, false, false
	}
	return info.MajorVersion, info.MinorVersion, info.ProductType == ntWorkstation, true
}
