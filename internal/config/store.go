// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/lineproto"

	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

// CommandLineSource is the provenance recorded for command-line tokens.
const CommandLineSource = "command line"

// ErrMalformedLine is returned when a configuration line does not split into
// a key and an optional value.
var ErrMalformedLine = errors.New("malformed configuration line")

type (
	// Entry is one merged override.
	Entry struct {
		Key    string
		Value  string
		Source string
	}

	// Store holds the merged overrides. It is populated once at startup and
	// read-only afterwards.
	Store struct {
		entries map[string]Entry
	}

	// MalformedLineError describes the offending line of a configuration file.
	MalformedLineError struct {
		Path string
		Line int
		Text string
	}
)

// Error implements the error interface.
func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s:%d: %q is not of the form KEY or KEY=VALUE", e.Path, e.Line, e.Text)
}

// Unwrap returns ErrMalformedLine for errors.Is checks.
func (e *MalformedLineError) Unwrap() error {
	return ErrMalformedLine
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// FromPairs builds a store from key/value pairs, recording source as their
// provenance. It is mostly useful in tests.
func FromPairs(source string, pairs map[string]string) *Store {
	s := NewStore()
	for key, value := range pairs {
		s.Set(key, value, source)
	}
	return s
}

// Set stores an override, replacing any earlier entry for key.
func (s *Store) Set(key, value, source string) {
	s.entries[key] = Entry{Key: key, Value: value, Source: source}
}

// Find looks key up exactly. A key loaded without a value is found with an
// empty value.
func (s *Store) Find(key string) (found bool, value string) {
	entry, ok := s.entries[key]
	if !ok {
		return false, ""
	}
	return true, entry.Value
}

// Lookup returns the full entry for key.
func (s *Store) Lookup(key string) (Entry, bool) {
	entry, ok := s.entries[key]
	return entry, ok
}

// Entries returns every override sorted by key.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

// Len returns the number of overrides.
func (s *Store) Len() int {
	return len(s.entries)
}

// LoadToken ingests a single command-line token. The token is split at its
// first '='; a token without '=' sets the key with an empty value.
func (s *Store) LoadToken(token string) {
	key, value, _ := strings.Cut(token, "=")
	s.Set(key, value, CommandLineSource)
}

// LoadFile ingests a configuration file. Entries parsed before a malformed
// line are discarded along with the rest of the file.
func (s *Store) LoadFile(fsys afero.Fs, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return err
	}

	parsed, err := parseFile(path, string(data))
	if err != nil {
		return err
	}
	for _, entry := range parsed {
		s.Set(entry.Key, entry.Value, entry.Source)
	}
	return nil
}

// LoadFiles loads each path in order of increasing precedence. Missing and
// malformed files are skipped; configuration files are optional.
func (s *Store) LoadFiles(fsys afero.Fs, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		err := s.LoadFile(fsys, path)
		switch {
		case err == nil:
			slog.Debug("loaded configuration file", "path", path)
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("configuration file not present", "path", path)
		default:
			slog.Debug("skipping unreadable configuration file", "path", path, "error", err)
		}
	}
}

// parseFile splits file contents into entries. A logical line may span
// several physical lines when a quoted value is left open.
func parseFile(path, contents string) ([]Entry, error) {
	var (
		entries []Entry
		pending strings.Builder
		startAt int
	)

	for i, raw := range strings.Split(contents, "\n") {
		lineNo := i + 1

		if pending.Len() == 0 {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			pending.WriteString(line)
			startAt = lineNo
		} else {
			pending.WriteByte('\n')
			pending.WriteString(strings.TrimRight(raw, " \t\r"))
		}

		splitter := lineproto.NewSplitter("=", false).Process(pending.String())
		if !splitter.Finished() {
			continue
		}

		text := pending.String()
		pending.Reset()

		parts := splitter.Results().Slice()
		switch {
		case parts[0] == "":
			return nil, &MalformedLineError{Path: path, Line: startAt, Text: text}
		case len(parts) == 1:
			entries = append(entries, Entry{Key: parts[0], Source: path})
		case len(parts) == 2:
			entries = append(entries, Entry{Key: parts[0], Value: parts[1], Source: path})
		default:
			return nil, &MalformedLineError{Path: path, Line: startAt, Text: text}
		}
	}

	if pending.Len() > 0 {
		return nil, &MalformedLineError{Path: path, Line: startAt, Text: pending.String()}
	}
	return entries, nil
}
