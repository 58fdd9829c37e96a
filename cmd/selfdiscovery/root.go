// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// rootCmd is the only command: every argument is either the controller
	// or a configuration token.
	rootCmd = &cobra.Command{
		Use:   "selfdiscovery [CONTROLLER] [KEY[=VALUE]...]",
		Short: "Gather machine information for a build controller",
		Long: TitleStyle.Render("selfdiscovery") + SubtitleStyle.Render(" - build-time machine discovery") + `

selfdiscovery answers questions a project's configuration script (the
controller) asks about this machine: the platform, where programs and
libraries live, which C++ compiler supports the needed features and where
files should be installed.

` + SubtitleStyle.Render("Examples:") + `
  selfdiscovery Help                     Show usage and configuration files
  selfdiscovery ControllerHelp           Document the controller protocol
  selfdiscovery ./configure.lua Help     List the overrides a controller uses
  selfdiscovery ./configure.lua Verbose  Run a controller, explaining each step`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newApp(cmd).run(cmd.Context(), args)
		},
	}
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// handleError leaves errors already reported by the run alone and hands
// everything else to fang's default presentation.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display.
// An ActionableError uses its Format method; other errors are followed by
// every suggestion found in their chain. In verbose mode, shows the full
// error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	if ae, ok := err.(*issue.ActionableError); ok {
		return ae.Format(verboseMode)
	}

	var msg strings.Builder
	msg.WriteString(err.Error())

	suggestions := discovery.Suggestions(err)
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.HasSuggestions() {
		suggestions = append(suggestions, ae.Suggestions...)
	}
	if len(suggestions) > 0 {
		msg.WriteString("\n")
		for _, suggestion := range suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(suggestion)
		}
	}

	if verboseMode {
		if cause := errors.Unwrap(err); cause != nil {
			msg.WriteString("\n\nError chain:")
			depth := 1
			for cause != nil {
				fmt.Fprintf(&msg, "\n  %d. %s", depth, cause.Error())
				cause = errors.Unwrap(cause)
				depth++
			}
		}
	}

	return msg.String()
}
