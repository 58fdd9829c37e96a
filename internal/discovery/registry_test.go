// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"testing"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Respond(_ context.Context, args *Args) (*Response, error) {
	p.calls++
	name, err := args.Required("Name")
	if err != nil {
		return nil, err
	}
	return NewResponse().SetString("Echo", name).SetInt("Calls", int64(p.calls)), nil
}

func newCountingDescriptor(constructed *int) Descriptor {
	return Descriptor{
		Identifier: "Echo",
		Help: func(_ *Args, items *HelpItems) error {
			items.Add("Echo=VALUE", "Echoes VALUE.")
			return nil
		},
		New: func(*Registry) (Provider, error) {
			*constructed++
			return &countingProvider{}, nil
		},
	}
}

func TestRegistryConstructsOnce(t *testing.T) {
	t.Parallel()

	constructed := 0
	r := NewRegistry(Deps{})
	if err := r.Register(newCountingDescriptor(&constructed)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if constructed != 0 || r.Constructed("Echo") {
		t.Fatal("provider constructed before first use")
	}

	a, ok := r.Anchor("Echo")
	if !ok {
		t.Fatal("Anchor(Echo) not found")
	}

	for i := 1; i <= 3; i++ {
		resp, err := a.Respond(context.Background(), NewArgs([]string{"x"}))
		if err != nil {
			t.Fatalf("Respond() error = %v", err)
		}
		if f, _ := resp.Get("Calls"); f.Int != int64(i) {
			t.Errorf("call %d answered by a fresh instance (Calls=%d)", i, f.Int)
		}
	}
	if constructed != 1 {
		t.Errorf("constructor ran %d times, want 1", constructed)
	}

	p1, _ := r.Resolve("Echo")
	p2, _ := Lookup[*countingProvider](r, "Echo")
	if p1 != Provider(p2) {
		t.Error("Resolve and Lookup returned different instances")
	}
}

func TestRegistryHelpDoesNotConstruct(t *testing.T) {
	t.Parallel()

	constructed := 0
	r := NewRegistry(Deps{})
	_ = r.Register(newCountingDescriptor(&constructed))

	a, _ := r.Anchor("Echo")
	items := NewHelpItems()
	if err := a.DisplayHelp(NewArgs(nil), items); err != nil {
		t.Fatalf("DisplayHelp() error = %v", err)
	}
	if constructed != 0 {
		t.Error("DisplayHelp constructed the provider")
	}
	if items.Len() != 1 {
		t.Errorf("help items = %+v", items.Sorted())
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	n := 0
	r := NewRegistry(Deps{})
	_ = r.Register(newCountingDescriptor(&n))
	err := r.Register(newCountingDescriptor(&n))
	if !errors.Is(err, ErrInternal) {
		t.Errorf("duplicate Register() error = %v, want ErrInternal", err)
	}
}

func TestRegistryConstructionErrorIsCached(t *testing.T) {
	t.Parallel()

	attempts := 0
	r := NewRegistry(Deps{})
	_ = r.Register(Descriptor{
		Identifier: "Broken",
		New: func(*Registry) (Provider, error) {
			attempts++
			return nil, Interactionf("no luck")
		},
	})

	for range 2 {
		if _, err := r.Resolve("Broken"); !errors.Is(err, ErrInteraction) {
			t.Fatalf("Resolve() error = %v", err)
		}
	}
	if attempts != 1 {
		t.Errorf("constructor ran %d times, want 1", attempts)
	}
}

func TestRegistrySelfDependency(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Deps{})
	_ = r.Register(Descriptor{
		Identifier: "Loop",
		New: func(reg *Registry) (Provider, error) {
			_, err := reg.Resolve("Loop")
			return nil, err
		},
	})

	if _, err := r.Resolve("Loop"); !errors.Is(err, ErrInternal) {
		t.Errorf("Resolve() error = %v, want ErrInternal", err)
	}
}

func TestAnchorRejectsLeftoverArguments(t *testing.T) {
	t.Parallel()

	n := 0
	r := NewRegistry(Deps{})
	_ = r.Register(newCountingDescriptor(&n))
	a, _ := r.Anchor("Echo")

	_, err := a.Respond(context.Background(), NewArgs([]string{"x", "extra"}))
	if !errors.Is(err, ErrController) {
		t.Errorf("Respond() error = %v, want ErrController", err)
	}
}

func TestLookupTypeMismatch(t *testing.T) {
	t.Parallel()

	n := 0
	r := NewRegistry(Deps{})
	_ = r.Register(newCountingDescriptor(&n))

	type other struct{ Provider }
	if _, err := Lookup[*other](r, "Echo"); !errors.Is(err, ErrInternal) {
		t.Errorf("Lookup() error = %v, want ErrInternal", err)
	}
}
