// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed overrides_schema.cue
var overridesSchema string

// ErrInvalidOverride is returned when a universal override has a value the
// engine cannot use.
var ErrInvalidOverride = errors.New("invalid override")

// schemaKeys are the override keys constrained by #Overrides.
var schemaKeys = []string{"Arch", "Prefix", "PlatformFamily", "PlatformMember", "CXXCompiler"}

// InvalidOverrideError names the override that failed validation and where
// it came from.
type InvalidOverrideError struct {
	Key     string
	Value   string
	Source  string
	Message string
}

// Error implements the error interface.
func (e *InvalidOverrideError) Error() string {
	if e.Key == "" {
		return "invalid override: " + e.Message
	}
	return fmt.Sprintf("invalid override %s=%q from %s: %s", e.Key, e.Value, e.Source, e.Message)
}

// Unwrap returns ErrInvalidOverride for errors.Is checks.
func (e *InvalidOverrideError) Unwrap() error {
	return ErrInvalidOverride
}

// ValidateOverrides checks the universal override keys in s against the
// embedded CUE schema and reports the first violation.
func ValidateOverrides(s *Store) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(overridesSchema, cue.Filename("overrides_schema.cue"))
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile overrides schema: %w", schemaValue.Err())
	}

	present := make(map[string]string)
	for _, key := range schemaKeys {
		if found, value := s.Find(key); found {
			present[key] = value
		}
	}
	if len(present) == 0 {
		return nil
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Overrides"))
	unified := schema.Unify(ctx.Encode(present))
	err := unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	for _, e := range cueerrors.Errors(err) {
		path := cueerrors.Path(e)
		if len(path) == 0 {
			continue
		}
		key := path[len(path)-1]
		entry, ok := s.Lookup(key)
		if !ok {
			continue
		}
		return &InvalidOverrideError{
			Key:     key,
			Value:   entry.Value,
			Source:  entry.Source,
			Message: trimPathPrefix(e.Error(), strings.Join(path, ".")),
		}
	}
	return &InvalidOverrideError{Message: err.Error()}
}

// trimPathPrefix removes the redundant path CUE sometimes puts in front of
// its messages.
func trimPathPrefix(msg, path string) string {
	if path != "" && strings.HasPrefix(msg, path) {
		msg = strings.TrimPrefix(msg, path)
		msg = strings.TrimPrefix(msg, ":")
	}
	return strings.TrimSpace(msg)
}
