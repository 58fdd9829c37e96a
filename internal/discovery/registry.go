// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/selfdiscovery/selfdiscovery/internal/config"

	"github.com/spf13/afero"
)

type (
	// Provider answers requests of one identifier.
	Provider interface {
		Respond(ctx context.Context, args *Args) (*Response, error)
	}

	// Descriptor describes a provider without constructing it.
	Descriptor struct {
		// Identifier is the request name controllers use.
		Identifier string
		// Usage documents the request for controller authors.
		Usage string
		// Help records the overrides a request would consult. It must not
		// construct the provider or touch the system.
		Help func(args *Args, items *HelpItems) error
		// New constructs the provider. It runs at most once per registry.
		New func(r *Registry) (Provider, error)
	}

	// Deps are the collaborators shared by all providers.
	Deps struct {
		Config *config.Store
		FS     afero.Fs
		Runner Runner
		Logger *slog.Logger
		Getenv func(string) string
		GOOS   string
		GOARCH string
	}

	// Anchor binds a descriptor to its lazily constructed instance.
	Anchor struct {
		desc     Descriptor
		registry *Registry

		instance Provider
		err      error
		built    bool
		building bool
	}

	// Registry maps identifiers to anchors. It is used from a single
	// goroutine.
	Registry struct {
		deps    Deps
		anchors map[string]*Anchor
		order   []string
	}
)

// NewRegistry returns an empty registry. Unset dependencies fall back to the
// real operating system.
func NewRegistry(deps Deps) *Registry {
	if deps.Config == nil {
		deps.Config = config.NewStore()
	}
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Runner == nil {
		deps.Runner = ExecRunner{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.GOOS == "" {
		deps.GOOS = runtime.GOOS
	}
	if deps.GOARCH == "" {
		deps.GOARCH = runtime.GOARCH
	}
	return &Registry{deps: deps, anchors: make(map[string]*Anchor)}
}

// Deps returns the shared collaborators.
func (r *Registry) Deps() Deps {
	return r.deps
}

// Register adds a descriptor. Registering an identifier twice is an
// internal error.
func (r *Registry) Register(desc Descriptor) error {
	if desc.Identifier == "" || desc.New == nil {
		return Internalf("provider descriptor %q is incomplete", desc.Identifier)
	}
	if _, exists := r.anchors[desc.Identifier]; exists {
		return Internalf("provider %q registered twice", desc.Identifier)
	}
	r.anchors[desc.Identifier] = &Anchor{desc: desc, registry: r}
	r.order = append(r.order, desc.Identifier)
	return nil
}

// Anchor returns the anchor for id.
func (r *Registry) Anchor(id string) (*Anchor, bool) {
	a, ok := r.anchors[id]
	return a, ok
}

// Anchors returns every anchor in registration order.
func (r *Registry) Anchors() []*Anchor {
	out := make([]*Anchor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.anchors[id])
	}
	return out
}

// Resolve returns the provider for id, constructing it on first use.
func (r *Registry) Resolve(id string) (Provider, error) {
	a, ok := r.anchors[id]
	if !ok {
		return nil, Internalf("no provider registered for %q", id)
	}
	return a.resolve()
}

// Constructed reports whether the provider for id has been built.
func (r *Registry) Constructed(id string) bool {
	a, ok := r.anchors[id]
	return ok && a.built && a.err == nil
}

// Lookup resolves id and asserts the provider's concrete type. Providers use
// it to reach the providers they depend on.
func Lookup[P Provider](r *Registry, id string) (P, error) {
	var zero P
	p, err := r.Resolve(id)
	if err != nil {
		return zero, err
	}
	typed, ok := p.(P)
	if !ok {
		return zero, Internalf("provider %q has type %T", id, p)
	}
	return typed, nil
}

// Identifier returns the request name.
func (a *Anchor) Identifier() string {
	return a.desc.Identifier
}

// Usage returns the controller documentation.
func (a *Anchor) Usage() string {
	return a.desc.Usage
}

// Respond constructs the provider if needed, answers the request and checks
// that every argument was consumed.
func (a *Anchor) Respond(ctx context.Context, args *Args) (*Response, error) {
	p, err := a.resolve()
	if err != nil {
		return nil, err
	}
	resp, err := p.Respond(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return resp, nil
}

// DisplayHelp records the overrides the request would consult. The provider
// is never constructed.
func (a *Anchor) DisplayHelp(args *Args, items *HelpItems) error {
	if a.desc.Help == nil {
		return nil
	}
	return a.desc.Help(args, items)
}

func (a *Anchor) resolve() (Provider, error) {
	if a.built {
		return a.instance, a.err
	}
	if a.building {
		return nil, Internalf("provider %q depends on itself", a.desc.Identifier)
	}

	a.building = true
	a.registry.deps.Logger.Debug("constructing provider", "provider", a.desc.Identifier)
	a.instance, a.err = a.desc.New(a.registry)
	a.building = false
	a.built = true
	return a.instance, a.err
}
