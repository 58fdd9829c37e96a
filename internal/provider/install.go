// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/platform"
)

// PrefixKey overrides the installation prefix of every install directory.
const PrefixKey = "Prefix"

// DefaultPrefix is the installation prefix on Unix-like systems.
const DefaultPrefix = "/usr"

// Windows known folders used for install directories.
const (
	FolderProgramFiles KnownFolder = iota
	FolderProgramData
)

const (
	installExecutable installKind = iota
	installLibrary
	installData
	installConfig
)

type (
	// KnownFolder names a Windows known folder.
	KnownFolder int

	installKind int

	// InstallDirectory suggests where a project should install one kind
	// of file.
	InstallDirectory struct {
		kind        installKind
		deps        discovery.Deps
		platform    platform.Descriptor
		knownFolder func(KnownFolder) (string, error)
	}
)

func (k installKind) identifier() string {
	switch k {
	case installExecutable:
		return InstallExecutableID
	case installLibrary:
		return InstallLibraryID
	case installData:
		return InstallDataID
	default:
		return InstallConfigID
	}
}

func (k installKind) noun() string {
	switch k {
	case installExecutable:
		return "executables"
	case installLibrary:
		return "libraries"
	case installData:
		return "data files"
	default:
		return "configuration files"
	}
}

func installDescriptor(kind installKind, opts Options) discovery.Descriptor {
	id := kind.identifier()
	return discovery.Descriptor{
		Identifier: id,
		Usage: fmt.Sprintf(`Discover.%[1]s{Project = PROJECT}    pipe: %[1]s PROJECT
Result: {Location = LOCATION}
Returns the directory %[2]s of PROJECT should be installed to.`, id, kind.noun()),
		Help: func(args *discovery.Args, items *discovery.HelpItems) error {
			if _, err := args.Required("Project"); err != nil {
				return err
			}
			items.Add(PrefixKey+"=LOCATION",
				"Sets the installation prefix. Install directories are placed beneath LOCATION.")
			items.Add(id+"=LOCATION",
				fmt.Sprintf("Overrides the directory %s are installed to.", kind.noun()))
			return nil
		},
		New: func(r *discovery.Registry) (discovery.Provider, error) {
			plat, err := discovery.Lookup[*Platform](r, PlatformID)
			if err != nil {
				return nil, err
			}
			known := opts.KnownFolder
			if known == nil {
				known = defaultKnownFolder(r.Deps().Getenv)
			}
			return &InstallDirectory{
				kind:        kind,
				deps:        r.Deps(),
				platform:    plat.Descriptor(),
				knownFolder: known,
			}, nil
		},
	}
}

// Respond implements discovery.Provider.
func (d *InstallDirectory) Respond(_ context.Context, args *discovery.Args) (*discovery.Response, error) {
	project, err := args.Required("Project")
	if err != nil {
		return nil, err
	}
	location, err := d.Location(project)
	if err != nil {
		return nil, err
	}
	return discovery.NewResponse().SetString("Location", location), nil
}

// Location returns the install directory for project.
func (d *InstallDirectory) Location(project string) (string, error) {
	store := d.deps.Config
	if found, override := store.Find(d.kind.identifier()); found {
		d.deps.Logger.Debug("using configured install directory", "kind", d.kind.identifier(), "location", override)
		return override, nil
	}

	hasPrefix, prefix := store.Find(PrefixKey)
	if d.platform.Family == platform.FamilyWindows && !hasPrefix {
		folder := FolderProgramFiles
		if d.kind == installConfig {
			folder = FolderProgramData
		}
		base, err := d.knownFolder(folder)
		if err != nil {
			return "", discovery.Interactionf("could not locate the Windows known folder for %s", d.kind.noun()).
				Wrap(err).
				WithSuggestion(fmt.Sprintf("Set %s=LOCATION or %s=LOCATION", PrefixKey, d.kind.identifier()))
		}
		return windowsJoin(base, project), nil
	}
	if !hasPrefix {
		prefix = DefaultPrefix
	}

	join := path.Join
	if d.platform.Family == platform.FamilyWindows {
		join = windowsJoin
	}

	switch d.kind {
	case installExecutable:
		return join(prefix, "bin"), nil
	case installLibrary:
		return join(prefix, d.libraryDir()), nil
	case installData:
		return join(prefix, "share", project), nil
	default:
		if !hasPrefix {
			return join("/etc", project), nil
		}
		return join(prefix, "etc", project), nil
	}
}

func (d *InstallDirectory) libraryDir() string {
	switch d.platform.LinuxClass {
	case platform.ClassDebian:
		if !d.platform.Is64Bit() {
			return "lib32"
		}
	case platform.ClassRedHat:
		if d.platform.Is64Bit() {
			return "lib64"
		}
	}
	return "lib"
}

func windowsJoin(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = strings.TrimLeft(p, `\/`)
		}
		if i < len(parts)-1 {
			p = strings.TrimRight(p, `\/`)
		}
		if p != "" {
			trimmed = append(trimmed, p)
		}
	}
	return strings.Join(trimmed, `\`)
}
