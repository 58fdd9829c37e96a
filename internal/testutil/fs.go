// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
)

// CountingFs wraps an afero.Fs and counts metadata and open calls, so tests
// can assert that a search ran only once.
type CountingFs struct {
	afero.Fs
	stats atomic.Int64
	opens atomic.Int64
}

// NewCountingFs wraps base.
func NewCountingFs(base afero.Fs) *CountingFs {
	return &CountingFs{Fs: base}
}

// Stat counts and forwards.
func (c *CountingFs) Stat(name string) (os.FileInfo, error) {
	c.stats.Add(1)
	return c.Fs.Stat(name)
}

// Open counts and forwards.
func (c *CountingFs) Open(name string) (afero.File, error) {
	c.opens.Add(1)
	return c.Fs.Open(name)
}

// OpenFile counts and forwards.
func (c *CountingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	c.opens.Add(1)
	return c.Fs.OpenFile(name, flag, perm)
}

// Stats returns the number of Stat calls so far.
func (c *CountingFs) Stats() int64 {
	return c.stats.Load()
}

// Opens returns the number of Open and OpenFile calls so far.
func (c *CountingFs) Opens() int64 {
	return c.opens.Load()
}

// Reset zeroes the counters.
func (c *CountingFs) Reset() {
	c.stats.Store(0)
	c.opens.Store(0)
}

// MustWriteFile writes contents to path in fs, creating parent directories.
func MustWriteFile(t testing.TB, fs afero.Fs, path, contents string, perm os.FileMode) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(contents), perm); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MemFS returns an in-memory filesystem holding files, keyed by path.
// Files are created executable so they can stand in for programs.
func MemFS(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, contents := range files {
		MustWriteFile(t, fs, path, contents, 0o755)
	}
	return fs
}
