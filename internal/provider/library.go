// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/issue"
	"github.com/selfdiscovery/selfdiscovery/internal/lineproto"
	"github.com/selfdiscovery/selfdiscovery/internal/platform"

	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

// Library finds C libraries and their headers.
type Library struct {
	deps     discovery.Deps
	platform platform.Descriptor
	program  *Program
	dirs     []string
}

// LibraryInfo is a located library.
type LibraryInfo struct {
	// Name is the requested name that matched.
	Name               string
	Filenames          []string
	LibraryDirectories []string
	IncludeDirectories []string
}

func libraryDescriptor() discovery.Descriptor {
	return discovery.Descriptor{
		Identifier: CLibraryID,
		Usage: `Discover.CLibrary{Name = NAME | {NAME, ...} [, Static = true] [, Optional = true]}
pipe: CLibrary NAME... [Static] [Optional]
Result: {Name = NAME, Filenames = {FILE, ...},
	LibraryDirectories = {DIR, ...}, IncludeDirectories = {DIR, ...}}
NAME omits the lib prefix and file extension. Static requires a static archive.
If no library is found the request fails, unless Optional is set, in which
case nil is returned. A broken override always fails.`,
		Help: libraryHelp,
		New: func(r *discovery.Registry) (discovery.Provider, error) {
			plat, err := discovery.Lookup[*Platform](r, PlatformID)
			if err != nil {
				return nil, err
			}
			program, err := discovery.Lookup[*Program](r, ProgramID)
			if err != nil {
				return nil, err
			}
			deps := r.Deps()
			return &Library{
				deps:     deps,
				platform: plat.Descriptor(),
				program:  program,
				dirs:     LibrarySearchDirectories(plat.Descriptor(), deps.Getenv, deps.GOARCH),
			}, nil
		},
	}
}

type libraryArgs struct {
	names    []string
	static   bool
	optional bool
}

func parseLibraryArgs(args *discovery.Args) (libraryArgs, error) {
	var la libraryArgs
	var err error
	if la.static, err = args.Flag("Static"); err != nil {
		return la, err
	}
	if la.optional, err = args.Flag("Optional"); err != nil {
		return la, err
	}
	if la.names, err = requireNames(args); err != nil {
		return la, err
	}
	return la, nil
}

func libraryHelp(args *discovery.Args, items *discovery.HelpItems) error {
	la, err := parseLibraryArgs(args)
	if err != nil {
		return err
	}
	name := la.names[0]
	items.Add(overrideKey(CLibraryID, name)+"=LOCATION",
		fmt.Sprintf("Overrides the detected location of library %s with the file at LOCATION.", name))
	items.Add(overrideKey(CLibraryID, name)+"-Includes=LOCATION",
		fmt.Sprintf("Overrides the detected include directory of library %s.", name))
	return nil
}

// LibrarySearchDirectories returns the directories scanned for libraries on
// d, environment paths first.
func LibrarySearchDirectories(d platform.Descriptor, getenv func(string) string, goarch string) []string {
	goos := "linux"
	if d.Family == platform.FamilyWindows {
		goos = "windows"
	}

	var dirs []string
	add := func(paths ...string) {
		for _, p := range paths {
			if p != "" && !slices.Contains(dirs, p) {
				dirs = append(dirs, p)
			}
		}
	}

	if d.Is64Bit() {
		add(splitList(getenv("LD_LIBRARY64_PATH"), goos)...)
	} else {
		add(splitList(getenv("LD_LIBRARY32_PATH"), goos)...)
	}
	add(splitList(getenv("LD_LIBRARY_PATH"), goos)...)

	if d.Family == platform.FamilyWindows {
		add(splitList(getenv("LIB"), goos)...)
		return dirs
	}

	for _, base := range []string{"", "/usr", "/usr/local", "/opt"} {
		switch {
		case d.LinuxClass == platform.ClassDebian:
			if triplet := platform.MultiarchTriplet(goarch); triplet != "" && d.Is64Bit() {
				add(base + "/lib/" + triplet)
			}
			if d.Is64Bit() {
				add(base + "/lib")
			} else {
				add(base+"/lib32", base+"/lib")
			}
		case d.LinuxClass == platform.ClassRedHat:
			if d.Is64Bit() {
				add(base + "/lib64")
			} else {
				add(base + "/lib")
			}
		default:
			add(base + "/lib")
		}
	}
	return dirs
}

// fileVariants lists the file names a library may be stored under. A
// static request never matches a shared object and the reverse.
func (l *Library) fileVariants(name string, static bool) []string {
	if l.platform.Family == platform.FamilyWindows {
		if static {
			return []string{name, name + ".lib", "lib" + name + ".lib", "lib" + name + ".a"}
		}
		return []string{name, name + ".dll", "lib" + name + ".dll"}
	}
	if static {
		return []string{name, "lib" + name + ".a", name + ".a"}
	}
	ext := ".so"
	if l.platform.Member == platform.MemberDarwin {
		ext = ".dylib"
	}
	return []string{name, "lib" + name + ext, name + ext}
}

// Find locates the first of names. It returns nil when nothing is found
// and an error when an override is broken.
func (l *Library) Find(ctx context.Context, names []string, static bool) (*LibraryInfo, error) {
	for _, name := range names {
		info, err := l.fromOverride(name)
		if err != nil || info != nil {
			return info, err
		}
	}
	for _, name := range names {
		if info := l.bruteForce(name, static); info != nil {
			return l.withIncludeOverride(name, info), nil
		}
	}
	for _, name := range names {
		info, err := l.fromPkgConfig(ctx, name)
		if err != nil {
			return nil, err
		}
		if info != nil {
			return l.withIncludeOverride(name, info), nil
		}
	}
	return nil, nil
}

func (l *Library) fromOverride(name string) (*LibraryInfo, error) {
	key := overrideKey(CLibraryID, name)
	found, override := l.deps.Config.Find(key)
	if !found {
		return nil, nil
	}
	location := qualify(override)
	if !l.isFile(location) {
		return nil, discovery.Interactionf("the location of library %q was manually specified but the file does not exist at that location", name).
			WithSuggestion(fmt.Sprintf("Check %s=%s", key, override)).
			WithIssue(issue.LibraryNotFoundId)
	}
	l.deps.Logger.Debug("found library by configuration", "library", name, "location", location)
	return l.withIncludeOverride(name, l.infoFor(location)), nil
}

// withIncludeOverride records name as the match and applies its include
// directory override.
func (l *Library) withIncludeOverride(name string, info *LibraryInfo) *LibraryInfo {
	info.Name = name
	if found, includes := l.deps.Config.Find(overrideKey(CLibraryID, name) + "-Includes"); found {
		info.IncludeDirectories = []string{qualify(includes)}
	}
	return info
}

func (l *Library) bruteForce(name string, static bool) *LibraryInfo {
	for _, dir := range l.dirs {
		for _, variant := range l.fileVariants(name, static) {
			location := filepath.Join(dir, variant)
			if l.isFile(location) {
				l.deps.Logger.Debug("found library in search directory", "library", name, "location", location)
				return l.infoFor(location)
			}
		}
	}
	return nil
}

func (l *Library) infoFor(location string) *LibraryInfo {
	dir := filepath.Dir(location)
	return &LibraryInfo{
		Filenames:          []string{filepath.Base(location)},
		LibraryDirectories: []string{dir},
		IncludeDirectories: []string{l.includeFor(dir)},
	}
}

// includeFor walks up from dir to the first ancestor with an include
// directory, falling back to dir itself.
func (l *Library) includeFor(dir string) string {
	search := dir
	for {
		parent := filepath.Dir(search)
		if parent == search {
			return dir
		}
		search = parent
		candidate := filepath.Join(search, "include")
		if ok, err := afero.IsDir(l.deps.FS, candidate); err == nil && ok {
			return candidate
		}
	}
}

func (l *Library) isFile(location string) bool {
	info, err := l.deps.FS.Stat(location)
	return err == nil && !info.IsDir()
}

func (l *Library) fromPkgConfig(ctx context.Context, name string) (*LibraryInfo, error) {
	pkgConfig, ok := l.program.FindProgram("pkg-config")
	if !ok {
		return nil, nil
	}
	cflags, ok, err := l.pkgConfig(ctx, pkgConfig, "--cflags", name)
	if err != nil || !ok {
		return nil, err
	}
	libs, ok, err := l.pkgConfig(ctx, pkgConfig, "--libs", name)
	if err != nil || !ok {
		return nil, err
	}

	info := &LibraryInfo{}
	for _, token := range append(cflags, libs...) {
		switch {
		case strings.HasPrefix(token, "-I") && len(token) > 2:
			info.IncludeDirectories = appendUnique(info.IncludeDirectories, token[2:])
		case strings.HasPrefix(token, "-L") && len(token) > 2:
			info.LibraryDirectories = appendUnique(info.LibraryDirectories, token[2:])
		case strings.HasPrefix(token, "-l") && len(token) > 2:
			info.Filenames = appendUnique(info.Filenames, token[2:])
		}
	}
	if len(info.Filenames) == 0 && len(info.LibraryDirectories) == 0 && len(info.IncludeDirectories) == 0 {
		return nil, nil
	}
	l.deps.Logger.Debug("found library with pkg-config", "library", name)
	return info, nil
}

// pkgConfig runs pkg-config and splits its output. A non-zero exit means
// the package is unknown.
func (l *Library) pkgConfig(ctx context.Context, path, mode, name string) ([]string, bool, error) {
	res, err := l.deps.Runner.Run(ctx, discovery.Command{Path: path, Args: []string{mode, name}})
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		l.deps.Logger.Debug("failed to run pkg-config", "error", err)
		return nil, false, nil
	}
	if res.ExitCode != 0 {
		return nil, false, nil
	}
	return lineproto.Split(res.Stdout, lineproto.RequestDelimiters, true), true, nil
}

func appendUnique(list []string, value string) []string {
	if slices.Contains(list, value) {
		return list
	}
	return append(list, value)
}

// Respond implements discovery.Provider.
func (l *Library) Respond(ctx context.Context, args *discovery.Args) (*discovery.Response, error) {
	la, err := parseLibraryArgs(args)
	if err != nil {
		return nil, err
	}
	info, err := l.Find(ctx, la.names, la.static)
	if err != nil {
		return nil, err
	}
	if info == nil {
		if la.optional {
			return nil, nil
		}
		return nil, discovery.Interactionf("could not find required library %s", la.names[0]).
			WithSuggestion(fmt.Sprintf("If the library is installed, set %s=LOCATION", overrideKey(CLibraryID, la.names[0]))).
			WithIssue(issue.LibraryNotFoundId)
	}
	return discovery.NewResponse().
		SetString("Name", info.Name).
		SetList("Filenames", info.Filenames).
		SetList("LibraryDirectories", info.LibraryDirectories).
		SetList("IncludeDirectories", info.IncludeDirectories), nil
}
