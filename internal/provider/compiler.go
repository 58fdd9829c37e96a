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

// C++ language features a controller may require.
const (
	FeatureCXX11 = "CXX11"
	FeatureCXX14 = "CXX14"
	FeatureCXX17 = "CXX17"
)

// Compiler classes.
const (
	ClassGXX   = "g++"
	ClassClang = "clang"
	ClassMSVC  = "cl.exe"
)

// Override keys consulted by the compiler provider.
const (
	CompilerKey      = "CXXCompiler"
	CompilerClassKey = "CXXCompilerClass"
)

type feature struct {
	name string
	// spellings are the -std values to try in order.
	spellings []string
	// msvc is the cl.exe flag, empty when the default dialect suffices.
	msvc    string
	snippet string
}

var features = []feature{
	{
		name:      FeatureCXX11,
		spellings: []string{"c++11", "c++0x"},
		snippet: "#include <functional>\n" +
			"int main(int argc, char **argv) { std::function<void(void)> a; return 0; }\n",
	},
	{
		name:      FeatureCXX14,
		spellings: []string{"c++14", "c++1y"},
		msvc:      "/std:c++14",
		snippet: "#include <memory>\n" +
			"int main() { auto p = std::make_unique<int>(0); auto f = [](auto x) { return x; }; return f(*p); }\n",
	},
	{
		name:      FeatureCXX17,
		spellings: []string{"c++17", "c++1z"},
		msvc:      "/std:c++17",
		snippet: "#include <optional>\n" +
			"int main() { std::optional<int> o; if constexpr (sizeof(int) > 0) { return o.value_or(0); } return 1; }\n",
	},
}

var compilerCandidates = []string{"g++", "clang++", "clang", "cl.exe"}

// Compiler finds a C++ compiler supporting the requested features.
type Compiler struct {
	deps    discovery.Deps
	program *Program
	// results memoizes by feature set.
	results map[string]compilerResult
}

type compilerResult struct {
	class, path string
	ok          bool
}

func compilerDescriptor() discovery.Descriptor {
	return discovery.Descriptor{
		Identifier: CXXCompilerID,
		Usage: `Discover.CXXCompiler{[CXX11 = true] [, CXX14 = true] [, CXX17 = true]}
pipe: CXXCompiler [CXX11] [CXX14] [CXX17]
Result: {Name = CLASS, Path = LOCATION}
Finds a C++ compiler that supports every requested feature. CLASS is one of
g++, clang or cl.exe.`,
		Help: compilerHelp,
		New: func(r *discovery.Registry) (discovery.Provider, error) {
			program, err := discovery.Lookup[*Program](r, ProgramID)
			if err != nil {
				return nil, err
			}
			return &Compiler{
				deps:    r.Deps(),
				program: program,
				results: make(map[string]compilerResult),
			}, nil
		},
	}
}

func requestedFeatures(args *discovery.Args) ([]feature, error) {
	var out []feature
	for _, f := range features {
		set, err := args.Flag(f.name)
		if err != nil {
			return nil, err
		}
		if set {
			out = append(out, f)
		}
	}
	return out, nil
}

func featureNames(fs []feature) []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.name
	}
	return names
}

func compilerHelp(args *discovery.Args, items *discovery.HelpItems) error {
	wanted, err := requestedFeatures(args)
	if err != nil {
		return err
	}
	desc := "Overrides the detected C++ compiler with the compiler at PATH."
	if len(wanted) > 0 {
		desc += fmt.Sprintf(" The compiler must support %s.", strings.Join(featureNames(wanted), ", "))
	}
	items.Add(CompilerKey+"=PATH", desc)
	items.Add(CompilerClassKey+"=CLASS",
		fmt.Sprintf("Sets the class of the overriding compiler. CLASS is one of %s, %s or %s.", ClassGXX, ClassClang, ClassMSVC))
	return nil
}

// Respond implements discovery.Provider.
func (c *Compiler) Respond(ctx context.Context, args *discovery.Args) (*discovery.Response, error) {
	wanted, err := requestedFeatures(args)
	if err != nil {
		return nil, err
	}
	key := strings.Join(featureNames(wanted), ",")
	result, cached := c.results[key]
	if !cached {
		if result, err = c.find(ctx, wanted); err != nil {
			return nil, err
		}
		c.results[key] = result
	}
	if !result.ok {
		return nil, discovery.Interactionf("could not find a suitable C++ compiler; existing compilers may not support the requested features").
			WithSuggestion("Rerun in help mode to see the necessary features and set CXXCompiler=PATH").
			WithIssue(issue.CompilerNotFoundId)
	}
	return discovery.NewResponse().
		SetString("Name", result.class).
		SetString("Path", result.path), nil
}

func (c *Compiler) find(ctx context.Context, wanted []feature) (compilerResult, error) {
	logger := c.deps.Logger
	if found, override := c.deps.Config.Find(CompilerKey); found {
		location := qualify(override)
		_, class := c.deps.Config.Find(CompilerClassKey)
		if class == "" {
			class = classify(location)
		}
		if c.program.Exists(location) {
			ok, err := c.supports(ctx, class, location, wanted)
			if err != nil {
				return compilerResult{}, err
			}
			if ok {
				logger.Debug("using configured C++ compiler", "path", location, "class", class)
				return compilerResult{class: class, path: location, ok: true}, nil
			}
		}
		logger.Warn("configured C++ compiler is unusable, searching", "path", location)
	}

	for _, name := range compilerCandidates {
		location, ok := c.program.FindProgram(name)
		if !ok {
			continue
		}
		class := classify(location)
		supported, err := c.supports(ctx, class, location, wanted)
		if err != nil {
			return compilerResult{}, err
		}
		if supported {
			logger.Debug("found C++ compiler", "path", location, "class", class)
			return compilerResult{class: class, path: location, ok: true}, nil
		}
		logger.Debug("C++ compiler lacks requested features", "path", location, "features", featureNames(wanted))
	}
	return compilerResult{}, nil
}

// classify guesses a compiler class from its file name.
func classify(location string) string {
	base := strings.ToLower(filepath.Base(location))
	switch {
	case strings.Contains(base, "clang"):
		return ClassClang
	case strings.Contains(base, "g++"), strings.Contains(base, "c++"):
		return ClassGXX
	case base == "cl.exe", base == "cl":
		return ClassMSVC
	default:
		return base
	}
}

// supports compiles each feature snippet with location. Compilers of an
// unknown class are accepted as is.
func (c *Compiler) supports(ctx context.Context, class, location string, wanted []feature) (bool, error) {
	if class != ClassGXX && class != ClassClang && class != ClassMSVC {
		return true, nil
	}
	for _, f := range wanted {
		ok, err := c.compiles(ctx, class, location, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (c *Compiler) compiles(ctx context.Context, class, location string, f feature) (bool, error) {
	source, err := c.writeSnippet(f.snippet)
	if err != nil {
		return false, err
	}
	defer func() { _ = c.deps.FS.Remove(source) }()

	var attempts [][]string
	if class == ClassMSVC {
		args := []string{"/nologo", "/Zs", "/TP", "/EHsc"}
		if f.msvc != "" {
			args = append(args, f.msvc)
		}
		attempts = append(attempts, append(args, source))
	} else {
		for _, std := range f.spellings {
			attempts = append(attempts, []string{"-x", "c++", "-fsyntax-only", "-std=" + std, source})
		}
	}

	for _, args := range attempts {
		res, err := c.deps.Runner.Run(ctx, discovery.Command{Path: location, Args: args})
		if err != nil {
			c.deps.Logger.Debug("failed to run C++ compiler", "path", location, "error", err)
			return false, nil
		}
		if res.ExitCode == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (c *Compiler) writeSnippet(snippet string) (string, error) {
	f, err := afero.TempFile(c.deps.FS, "", "selfdiscovery-*.cxx")
	if err != nil {
		return "", discovery.Internalf("creating compiler test file").Wrap(err)
	}
	name := f.Name()
	if _, err = f.WriteString(snippet); err == nil {
		err = f.Close()
	} else {
		_ = f.Close()
	}
	if err != nil {
		_ = c.deps.FS.Remove(name)
		return "", discovery.Internalf("writing compiler test file").Wrap(err)
	}
	return name, nil
}
