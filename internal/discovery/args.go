// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"sort"
	"strconv"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/lineproto"
)

// Args holds the arguments of one request. Pipe controllers send positional
// tokens and KEY=VALUE tokens; script controllers send named table fields.
// Both end up here and are consumed destructively by the helpers.
type Args struct {
	positional *lineproto.Queue
	named      map[string][]string
}

// NewArgs builds arguments from pipe tokens. Tokens containing '=' become
// named arguments split at the first '='; repeated keys accumulate.
func NewArgs(tokens []string) *Args {
	a := &Args{positional: lineproto.NewQueue(), named: make(map[string][]string)}
	for _, token := range tokens {
		if key, value, ok := strings.Cut(token, "="); ok && key != "" {
			a.named[key] = append(a.named[key], value)
			continue
		}
		a.positional.Push(token)
	}
	return a
}

// NewNamedArgs builds arguments from named fields plus optional positional
// values.
func NewNamedArgs(named map[string][]string, positional ...string) *Args {
	a := &Args{positional: lineproto.NewQueue(positional...), named: make(map[string][]string, len(named))}
	for key, values := range named {
		a.named[key] = append([]string(nil), values...)
	}
	return a
}

// Required returns the argument called name, falling back to the next
// positional token. A missing argument is a controller error.
func (a *Args) Required(name string) (string, error) {
	if value, ok := a.Optional(name); ok {
		return value, nil
	}
	return "", Controllerf("request ended before providing %s", name)
}

// Optional returns the argument called name, falling back to the next
// positional token.
func (a *Args) Optional(name string) (string, bool) {
	if values, ok := a.take(name); ok {
		return values[0], true
	}
	return a.positional.Pop()
}

// Named returns the argument called name without consulting positional
// tokens.
func (a *Args) Named(name string) (string, bool) {
	if values, ok := a.take(name); ok {
		return values[0], true
	}
	return "", false
}

// Flag reports whether the boolean argument name is set. A named value must
// be a boolean word; a bare positional token equal to name also sets it.
func (a *Args) Flag(name string) (bool, error) {
	if values, ok := a.take(name); ok {
		set, err := parseBool(values[0])
		if err != nil {
			return false, Controllerf("argument %s: %v", name, err)
		}
		return set, nil
	}
	return a.positional.Remove(name), nil
}

// Variadic returns every value of the argument called name followed by all
// remaining positional tokens.
func (a *Args) Variadic(name string) []string {
	values, _ := a.take(name)
	for {
		token, ok := a.positional.Pop()
		if !ok {
			break
		}
		values = append(values, token)
	}
	return values
}

// Unsigned returns the non-negative integer argument name, falling back to
// the next positional token.
func (a *Args) Unsigned(name string) (uint64, bool, error) {
	raw, ok := a.Optional(name)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, Controllerf("argument %s: %q is not a non-negative integer", name, raw)
	}
	return n, true, nil
}

// Finish reports arguments the provider did not consume.
func (a *Args) Finish() error {
	var leftover []string
	leftover = append(leftover, a.positional.Slice()...)
	keys := make([]string, 0, len(a.named))
	for key := range a.named {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		leftover = append(leftover, key+"=")
	}
	if len(leftover) == 0 {
		return nil
	}
	return Controllerf("unexpected arguments: %s", strings.Join(leftover, ", "))
}

// Empty reports whether no arguments remain.
func (a *Args) Empty() bool {
	return a.positional.Len() == 0 && len(a.named) == 0
}

func (a *Args) take(name string) ([]string, bool) {
	values, ok := a.named[name]
	if !ok || len(values) == 0 {
		return nil, false
	}
	delete(a.named, name)
	return values, true
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, strconv.ErrSyntax
}
