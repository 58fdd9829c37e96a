// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package provider

// defaultKnownFolder answers from the environment, which only matters when
// the platform family is overridden to windows on another host.
func defaultKnownFolder(getenv func(string) string) func(KnownFolder) (string, error) {
	return func(folder KnownFolder) (string, error) {
		if folder == FolderProgramData {
			if v := getenv("PROGRAMDATA"); v != "" {
				return v, nil
			}
			return `C:\ProgramData`, nil
		}
		if v := getenv("PROGRAMFILES"); v != "" {
			return v, nil
		}
		return `C:\Program Files`, nil
	}
}
