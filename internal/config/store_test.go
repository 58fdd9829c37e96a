// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func writeFile(t *testing.T, fsys afero.Fs, path, contents string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestStoreFind(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.LoadToken("Foo=Bar")
	s.LoadToken("Verbose")
	s.LoadToken("Path=/a=b")

	tests := []struct {
		key       string
		wantFound bool
		wantValue string
	}{
		{"Foo", true, "Bar"},
		{"Verbose", true, ""},
		{"Path", true, "/a=b"},
		{"Missing", false, ""},
		{"foo", false, ""},
	}

	for _, tt := range tests {
		found, value := s.Find(tt.key)
		if found != tt.wantFound || value != tt.wantValue {
			t.Errorf("Find(%q) = (%v, %q), want (%v, %q)", tt.key, found, value, tt.wantFound, tt.wantValue)
		}
	}

	entry, ok := s.Lookup("Foo")
	if !ok || entry.Source != CommandLineSource {
		t.Errorf("Lookup(Foo) = %+v, %v", entry, ok)
	}
}

func TestStorePrecedence(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/selfdiscovery/selfdiscovery.config", "Prefix=/global\nArch=32\n")
	writeFile(t, fsys, "/home/u/.config/selfdiscovery/selfdiscovery.config", "Prefix=/user\n")
	writeFile(t, fsys, "/work/selfdiscovery.config", "Prefix=/work\n")

	s := NewStore()
	s.LoadFiles(fsys,
		"/etc/selfdiscovery/selfdiscovery.config",
		"/home/u/.config/selfdiscovery/selfdiscovery.config",
		"/work/selfdiscovery.config",
	)
	if _, v := s.Find("Prefix"); v != "/work" {
		t.Errorf("Prefix = %q, want /work", v)
	}
	if _, v := s.Find("Arch"); v != "32" {
		t.Errorf("Arch = %q, want 32 from the global file", v)
	}

	s.LoadToken("Prefix=/cli")
	entry, _ := s.Lookup("Prefix")
	if entry.Value != "/cli" || entry.Source != CommandLineSource {
		t.Errorf("Prefix entry = %+v, want command line value", entry)
	}
}

func TestLoadFileGrammar(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/c", `
# comment line
   Verbose
  Name = spaced value  
Quoted="a = b"
Escaped=a\=b
Multi="first
second"
`)

	s := NewStore()
	if err := s.LoadFile(fsys, "/c"); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	want := map[string]string{
		"Verbose": "",
		"Name ":   " spaced value",
		"Quoted":  "a = b",
		"Escaped": "a=b",
		"Multi":   "first\nsecond",
	}
	for key, value := range want {
		found, got := s.Find(key)
		if !found || got != value {
			t.Errorf("Find(%q) = (%v, %q), want %q", key, found, got, value)
		}
	}
	if s.Len() != len(want) {
		t.Errorf("Len() = %d, want %d: %+v", s.Len(), len(want), s.Entries())
	}
}

func TestLoadFileMalformed(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/bad", "Good=1\nA=B=C\n")

	s := NewStore()
	err := s.LoadFile(fsys, "/bad")
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("LoadFile() error = %v, want ErrMalformedLine", err)
	}
	var mle *MalformedLineError
	if !errors.As(err, &mle) || mle.Line != 2 {
		t.Errorf("MalformedLineError = %+v, want line 2", mle)
	}
	if found, _ := s.Find("Good"); found {
		t.Error("entries from a malformed file were kept")
	}
}

func TestLoadFilesSkipsBadFiles(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/bad", "=oops\n")
	writeFile(t, fsys, "/good", "Arch=64\n")

	s := NewStore()
	s.LoadFiles(fsys, "/missing", "/bad", "", "/good")

	if found, v := s.Find("Arch"); !found || v != "64" {
		t.Errorf("Find(Arch) = (%v, %q), want (true, 64)", found, v)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestEntriesSorted(t *testing.T) {
	t.Parallel()

	s := FromPairs("test", map[string]string{"b": "2", "a": "1", "c": "3"})
	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries() returned %d entries", len(entries))
	}
	for i, key := range []string{"a", "b", "c"} {
		if entries[i].Key != key || entries[i].Source != "test" {
			t.Errorf("entries[%d] = %+v, want key %s", i, entries[i], key)
		}
	}
}
