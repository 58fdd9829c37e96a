// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-03-01T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-03-01T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q, want %q", got, "dev (built from source)")
		}
	})
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		if got := formatErrorForDisplay(errors.New("boom"), false); got != "boom" {
			t.Errorf("formatErrorForDisplay() = %q, want %q", got, "boom")
		}
	})

	t.Run("interaction suggestions", func(t *testing.T) {
		t.Parallel()
		err := discovery.InRequest(
			discovery.Interactionf("failed to find required program %q", "gcc").
				WithSuggestion("Install gcc or set Program-gcc=LOCATION"),
			2, "Program gcc")
		got := formatErrorForDisplay(err, false)
		if !strings.HasPrefix(got, err.Error()) {
			t.Errorf("output should start with the message, got %q", got)
		}
		if !strings.Contains(got, "\n  • Install gcc or set Program-gcc=LOCATION") {
			t.Errorf("output missing suggestion: %q", got)
		}
		if strings.Contains(got, "Error chain:") {
			t.Errorf("non-verbose output should not show the chain: %q", got)
		}
	})

	t.Run("nested actionable error", func(t *testing.T) {
		t.Parallel()
		inner := issue.NewErrorContext().
			WithOperation("start controller").
			WithResource("./configure").
			WithSuggestion("Check that the controller is executable").
			Wrap(errors.New("permission denied")).
			BuildError()
		err := discovery.Interactionf("could not start the controller").Wrap(inner)

		got := formatErrorForDisplay(err, true)
		if !strings.Contains(got, "Check that the controller is executable") {
			t.Errorf("output missing nested suggestion: %q", got)
		}
		if !strings.Contains(got, "Error chain:") || !strings.Contains(got, "permission denied") {
			t.Errorf("verbose output missing the chain: %q", got)
		}
	})

	t.Run("nested context without suggestions", func(t *testing.T) {
		t.Parallel()
		err := discovery.Interactionf("could not read the controller script %s", "/proj/absent.lua").
			Wrap(issue.WrapWithContext(errors.New("file does not exist"), "read controller script", "/proj/absent.lua"))

		got := formatErrorForDisplay(err, false)
		if strings.Contains(got, "•") {
			t.Errorf("output should have no suggestions: %q", got)
		}
		if !strings.HasPrefix(got, err.Error()) {
			t.Errorf("output should start with the message, got %q", got)
		}
	})

	t.Run("top-level actionable error", func(t *testing.T) {
		t.Parallel()
		ae := issue.NewErrorContext().
			WithOperation("load settings").
			WithSuggestion("Unset SELFDISCOVERY_LOG_FORMAT").
			Build()
		if got, want := formatErrorForDisplay(ae, false), ae.Format(false); got != want {
			t.Errorf("formatErrorForDisplay() = %q, want %q", got, want)
		}
	})
}
