// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"sync"
	"testing"

	"github.com/selfdiscovery/selfdiscovery/internal/config"
	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/platform"
	"github.com/selfdiscovery/selfdiscovery/internal/testutil"

	"github.com/spf13/afero"
)

type (
	// stubRunner answers commands through fn and records them.
	stubRunner struct {
		mu    sync.Mutex
		fn    func(discovery.Command) discovery.Result
		calls []discovery.Command
	}

	testEnv struct {
		fs      afero.Fs
		store   *config.Store
		runner  *stubRunner
		env     map[string]string
		goos    string
		goarch  string
		probe   platform.Probe
		folders map[KnownFolder]string
	}
)

func (s *stubRunner) Run(_ context.Context, cmd discovery.Command) (discovery.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cmd)
	s.mu.Unlock()
	if s.fn == nil {
		return discovery.Result{ExitCode: 1}, nil
	}
	return s.fn(cmd), nil
}

func (s *stubRunner) Calls() []discovery.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]discovery.Command(nil), s.calls...)
}

func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	return &testEnv{
		fs:     testutil.MemFS(t, files),
		store:  config.NewStore(),
		runner: &stubRunner{},
		env:    map[string]string{},
		goos:   "linux",
		goarch: "amd64",
		probe:  platform.StaticProbe{Family: platform.FamilyLinux, Member: platform.MemberUbuntu},
	}
}

func (e *testEnv) registry(t *testing.T) *discovery.Registry {
	t.Helper()
	r := discovery.NewRegistry(discovery.Deps{
		Config: e.store,
		FS:     e.fs,
		Runner: e.runner,
		Logger: testutil.QuietLogger(),
		Getenv: func(k string) string { return e.env[k] },
		GOOS:   e.goos,
		GOARCH: e.goarch,
	})
	opts := Options{
		Probe: e.probe,
		KnownFolder: func(f KnownFolder) (string, error) {
			return e.folders[f], nil
		},
	}
	if err := RegisterAll(r, opts); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	return r
}

func respond(t *testing.T, r *discovery.Registry, id string, args *discovery.Args) (*discovery.Response, error) {
	t.Helper()
	anchor, ok := r.Anchor(id)
	if !ok {
		t.Fatalf("no provider %q", id)
	}
	return anchor.Respond(context.Background(), args)
}

func stringField(t *testing.T, resp *discovery.Response, name string) string {
	t.Helper()
	f, ok := resp.Get(name)
	if !ok {
		t.Fatalf("response has no field %q: %v", name, resp.Lines())
	}
	return f.Str
}

func listField(t *testing.T, resp *discovery.Response, name string) []string {
	t.Helper()
	f, ok := resp.Get(name)
	if !ok {
		t.Fatalf("response has no field %q: %v", name, resp.Lines())
	}
	return f.List
}
