// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/config"
	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
)

// Flag reports whether the user passed a named configuration flag.
type Flag struct {
	store *config.Store
}

func flagDescriptor() discovery.Descriptor {
	return discovery.Descriptor{
		Identifier: FlagID,
		Usage: `Discover.Flag{Name = NAME [, Description = DESCRIPTION, HasValue = true]}
pipe: Flag NAME [Description=DESCRIPTION] [HasValue]
Result: {Present = PRESENT [, Value = VALUE]}
Describes a flag the user may set on the command line or in a configuration
file. PRESENT is true when the flag is set; VALUE is returned when it was set
as NAME=VALUE. HasValue only changes the user help.`,
		Help: flagHelp,
		New: func(r *discovery.Registry) (discovery.Provider, error) {
			return &Flag{store: r.Deps().Config}, nil
		},
	}
}

type flagArgs struct {
	name        string
	description string
	hasValue    bool
}

func parseFlagArgs(args *discovery.Args) (flagArgs, error) {
	var fa flagArgs
	var err error
	if fa.hasValue, err = args.Flag("HasValue"); err != nil {
		return fa, err
	}
	fa.description, _ = args.Named("Description")
	if fa.name, err = args.Required("Name"); err != nil {
		return fa, err
	}
	return fa, nil
}

func flagHelp(args *discovery.Args, items *discovery.HelpItems) error {
	fa, err := parseFlagArgs(args)
	if err != nil {
		return err
	}
	key := fa.name
	desc := fmt.Sprintf("Enables flag %q.", fa.name)
	if fa.hasValue {
		key += "(=VALUE)"
		desc = fmt.Sprintf("Enables flag %q and sets its value to VALUE.", fa.name)
	}
	items.Add(key, strings.TrimSpace(desc+" "+fa.description))
	return nil
}

// Respond implements discovery.Provider.
func (f *Flag) Respond(_ context.Context, args *discovery.Args) (*discovery.Response, error) {
	fa, err := parseFlagArgs(args)
	if err != nil {
		return nil, err
	}
	found, value := f.store.Find(fa.name)
	resp := discovery.NewResponse().SetBool("Present", found)
	if found && value != "" {
		resp.SetString("Value", value)
	}
	return resp, nil
}
