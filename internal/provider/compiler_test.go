// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"

	"github.com/spf13/afero"
)

// acceptStd returns a runner function that accepts the given -std values
// for the compiler at path.
func acceptStd(path string, stds ...string) func(discovery.Command) discovery.Result {
	return func(cmd discovery.Command) discovery.Result {
		if cmd.Path != path {
			return discovery.Result{ExitCode: 1}
		}
		for _, arg := range cmd.Args {
			if std, ok := strings.CutPrefix(arg, "-std="); ok && slices.Contains(stds, std) {
				return discovery.Result{}
			}
		}
		return discovery.Result{ExitCode: 1}
	}
}

func TestCompiler_Respond(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"/usr/bin/g++":     "",
		"/usr/bin/clang++": "",
	}

	tests := []struct {
		name      string
		overrides map[string]string
		runner    func(discovery.Command) discovery.Result
		args      []string
		wantClass string
		wantPath  string
		wantErr   error
	}{
		{
			name:      "g++ with c++11",
			runner:    acceptStd("/usr/bin/g++", "c++11"),
			args:      []string{"CXX11"},
			wantClass: ClassGXX,
			wantPath:  "/usr/bin/g++",
		},
		{
			name:      "older spelling accepted",
			runner:    acceptStd("/usr/bin/g++", "c++0x"),
			args:      []string{"CXX11"},
			wantClass: ClassGXX,
			wantPath:  "/usr/bin/g++",
		},
		{
			name:      "falls through to clang",
			runner:    acceptStd("/usr/bin/clang++", "c++11", "c++17"),
			args:      []string{"CXX11", "CXX17"},
			wantClass: ClassClang,
			wantPath:  "/usr/bin/clang++",
		},
		{
			name:    "nothing supports the features",
			runner:  acceptStd("/usr/bin/g++", "c++11"),
			args:    []string{"CXX17"},
			wantErr: discovery.ErrInteraction,
		},
		{
			name:      "override of unknown class is trusted",
			overrides: map[string]string{CompilerKey: "/opt/icc/bin/icpc"},
			args:      []string{"CXX17"},
			wantClass: "icpc",
			wantPath:  "/opt/icc/bin/icpc",
		},
		{
			name:      "override with class is tested",
			overrides: map[string]string{CompilerKey: "/opt/icc/bin/icpc", CompilerClassKey: ClassGXX},
			runner:    acceptStd("/opt/icc/bin/icpc", "c++14"),
			args:      []string{"CXX14"},
			wantClass: ClassGXX,
			wantPath:  "/opt/icc/bin/icpc",
		},
		{
			name:      "missing override falls back to search",
			overrides: map[string]string{CompilerKey: "/nowhere/c++"},
			runner:    acceptStd("/usr/bin/g++", "c++11"),
			args:      []string{"CXX11"},
			wantClass: ClassGXX,
			wantPath:  "/usr/bin/g++",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, files)
			env.env["PATH"] = "/usr/bin"
			env.runner.fn = tt.runner
			if err := afero.WriteFile(env.fs, "/opt/icc/bin/icpc", nil, 0o755); err != nil {
				t.Fatal(err)
			}
			for k, v := range tt.overrides {
				env.store.Set(k, v, "test")
			}

			resp, err := respond(t, env.registry(t), CXXCompilerID, discovery.NewArgs(tt.args))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Respond() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Respond() error = %v", err)
			}
			if got := stringField(t, resp, "Name"); got != tt.wantClass {
				t.Errorf("Name = %q, want %q", got, tt.wantClass)
			}
			if got := stringField(t, resp, "Path"); got != tt.wantPath {
				t.Errorf("Path = %q, want %q", got, tt.wantPath)
			}
		})
	}
}

func TestCompiler_CachesAndCleansUp(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string]string{"/usr/bin/g++": ""})
	env.env["PATH"] = "/usr/bin"
	env.runner.fn = acceptStd("/usr/bin/g++", "c++11")
	r := env.registry(t)

	for range 2 {
		if _, err := respond(t, r, CXXCompilerID, discovery.NewArgs([]string{"CXX11"})); err != nil {
			t.Fatalf("Respond() error = %v", err)
		}
	}

	calls := env.runner.Calls()
	if len(calls) != 1 {
		t.Fatalf("compiler ran %d times, want 1", len(calls))
	}
	source := calls[0].Args[len(calls[0].Args)-1]
	if !strings.HasSuffix(source, ".cxx") {
		t.Errorf("source file = %q, want a .cxx file", source)
	}
	if ok, _ := afero.Exists(env.fs, source); ok {
		t.Errorf("test source %q was not removed", source)
	}
	if !slices.Contains(calls[0].Args, "-fsyntax-only") {
		t.Errorf("args = %q, want -fsyntax-only", calls[0].Args)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/usr/bin/g++":        ClassGXX,
		"/usr/bin/g++-13":     ClassGXX,
		"/usr/bin/c++":        ClassGXX,
		"/usr/bin/clang++-17": ClassClang,
		"/usr/bin/clang":      ClassClang,
		"cl.exe":              ClassMSVC,
		"/opt/bin/icpc":       "icpc",
	}
	for in, want := range tests {
		if got := classify(in); got != want {
			t.Errorf("classify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompiler_Help(t *testing.T) {
	t.Parallel()

	r := newTestEnv(t, nil).registry(t)
	anchor, _ := r.Anchor(CXXCompilerID)
	items := discovery.NewHelpItems()
	if err := anchor.DisplayHelp(discovery.NewArgs([]string{"CXX14"}), items); err != nil {
		t.Fatalf("DisplayHelp() error = %v", err)
	}
	got := items.Sorted()
	if len(got) != 2 {
		t.Fatalf("Sorted() = %v, want 2 items", got)
	}
	if got[0].Argument != "CXXCompiler=PATH" || !strings.Contains(got[0].Descriptions[0], FeatureCXX14) {
		t.Errorf("first item = %v", got[0])
	}
	if got[1].Argument != "CXXCompilerClass=CLASS" {
		t.Errorf("second item = %v", got[1])
	}
}
