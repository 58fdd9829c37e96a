// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/issue"

	"github.com/spf13/afero"
)

// Program locates executables on the search path.
type Program struct {
	deps  discovery.Deps
	paths []string
	// found memoizes lookups; misses are stored as "".
	found map[string]string
}

func programDescriptor() discovery.Descriptor {
	return discovery.Descriptor{
		Identifier: ProgramID,
		Usage: `Discover.Program{Name = NAME | {NAME, ...} [, Optional = true]}
pipe: Program NAME... [Optional]
Result: {Location = LOCATION}
Returns the absolute location of the first NAME found. If none is found the
request fails, unless Optional is set, in which case nil is returned.`,
		Help: programHelp,
		New: func(r *discovery.Registry) (discovery.Provider, error) {
			return NewProgram(r.Deps()), nil
		},
	}
}

// NewProgram returns a program finder searching the PATH from deps.
func NewProgram(deps discovery.Deps) *Program {
	return &Program{
		deps:  deps,
		paths: splitList(deps.Getenv("PATH"), deps.GOOS),
		found: make(map[string]string),
	}
}

func programHelp(args *discovery.Args, items *discovery.HelpItems) error {
	if _, err := args.Flag("Optional"); err != nil {
		return err
	}
	names, err := requireNames(args)
	if err != nil {
		return err
	}
	items.Add(overrideKey(ProgramID, names[0])+"=LOCATION",
		fmt.Sprintf("Overrides the detected location of %s with the program at LOCATION.", names[0]))
	return nil
}

// FindProgram returns the absolute location of name. An override that
// points at a missing file counts as not found. Results are memoized.
func (p *Program) FindProgram(name string) (string, bool) {
	if location, ok := p.found[name]; ok {
		return location, location != ""
	}
	location := p.search(name)
	p.found[name] = location
	return location, location != ""
}

func (p *Program) search(name string) string {
	logger := p.deps.Logger
	if found, override := p.deps.Config.Find(overrideKey(ProgramID, name)); found {
		location := qualify(override)
		if p.executable(location) {
			logger.Debug("found program by configuration", "program", name, "location", location)
			return location
		}
		logger.Warn("configured program location does not exist", "program", name, "location", location)
		return ""
	}

	for _, dir := range p.paths {
		for _, candidate := range p.candidateNames(name) {
			location := qualify(filepath.Join(dir, candidate))
			if p.executable(location) {
				logger.Debug("found program in search path", "program", name, "location", location)
				return location
			}
		}
	}
	logger.Debug("program not found", "program", name)
	return ""
}

func (p *Program) candidateNames(name string) []string {
	if p.deps.GOOS == "windows" && !strings.EqualFold(filepath.Ext(name), ".exe") {
		return []string{name, name + ".exe"}
	}
	return []string{name}
}

func (p *Program) executable(location string) bool {
	info, err := p.deps.FS.Stat(location)
	if err != nil || info.IsDir() {
		return false
	}
	if p.deps.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// Exists reports whether location is an existing regular file.
func (p *Program) Exists(location string) bool {
	ok, err := afero.Exists(p.deps.FS, location)
	return err == nil && ok
}

// Respond implements discovery.Provider.
func (p *Program) Respond(_ context.Context, args *discovery.Args) (*discovery.Response, error) {
	optional, err := args.Flag("Optional")
	if err != nil {
		return nil, err
	}
	names, err := requireNames(args)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if location, ok := p.FindProgram(name); ok {
			return discovery.NewResponse().SetString("Location", location), nil
		}
	}
	if optional {
		return nil, nil
	}
	return nil, discovery.Interactionf("failed to find required program %q", names[0]).
		WithSuggestion(fmt.Sprintf("Install %s or set %s=LOCATION", names[0], overrideKey(ProgramID, names[0]))).
		WithIssue(issue.ProgramNotFoundId)
}
