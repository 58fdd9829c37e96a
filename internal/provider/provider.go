// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"path/filepath"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/platform"
)

// Provider identifiers.
const (
	VersionID           = "Version"
	FlagID              = "Flag"
	PlatformID          = "Platform"
	InstallExecutableID = "InstallExecutableDirectory"
	InstallLibraryID    = "InstallLibraryDirectory"
	InstallDataID       = "InstallDataDirectory"
	InstallConfigID     = "InstallConfigDirectory"
	ProgramID           = "Program"
	CXXCompilerID       = "CXXCompiler"
	CLibraryID          = "CLibrary"
)

// Options customise provider construction. The zero value detects
// everything from the running system.
type Options struct {
	// Probe replaces native platform detection.
	Probe platform.Probe
	// KnownFolder resolves Windows known folders for install directories.
	KnownFolder func(KnownFolder) (string, error)
}

// Descriptors returns every built-in provider in display order.
func Descriptors(opts Options) []discovery.Descriptor {
	return []discovery.Descriptor{
		versionDescriptor(),
		flagDescriptor(),
		platformDescriptor(opts),
		installDescriptor(installExecutable, opts),
		installDescriptor(installLibrary, opts),
		installDescriptor(installData, opts),
		installDescriptor(installConfig, opts),
		programDescriptor(),
		compilerDescriptor(),
		libraryDescriptor(),
	}
}

// RegisterAll registers every built-in provider with r.
func RegisterAll(r *discovery.Registry, opts Options) error {
	for _, desc := range Descriptors(opts) {
		if err := r.Register(desc); err != nil {
			return err
		}
	}
	return nil
}

// overrideKey builds a per-name override key such as Program-gcc.
func overrideKey(id, name string) string {
	return id + "-" + name
}

// qualify makes path absolute without touching the filesystem.
func qualify(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// splitList splits a search-path environment value for goos. Empty
// elements are dropped.
func splitList(value, goos string) []string {
	sep := ":"
	if goos == "windows" {
		sep = ";"
	}
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// requireNames reads the variadic Name argument and insists on at least one.
func requireNames(args *discovery.Args) ([]string, error) {
	names := args.Variadic("Name")
	if len(names) == 0 {
		return nil, discovery.Controllerf("request ended before providing Name")
	}
	return names, nil
}
