// SPDX-License-Identifier: MPL-2.0

//go:build windows

package provider

import "golang.org/x/sys/windows"

func defaultKnownFolder(func(string) string) func(KnownFolder) (string, error) {
	return func(folder KnownFolder) (string, error) {
		id := windows.FOLDERID_ProgramFiles
		if folder == FolderProgramData {
			id = windows.FOLDERID_ProgramData
		}
		return windows.KnownFolderPath(id, 0)
	}
}
