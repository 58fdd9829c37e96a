// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/channel"
	"github.com/selfdiscovery/selfdiscovery/internal/config"
	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/luahost"
	"github.com/selfdiscovery/selfdiscovery/internal/provider"
	"github.com/selfdiscovery/selfdiscovery/internal/session"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// directController drives the engine from the terminal: requests are read
// from stdin and responses written to stdout.
const directController = "--"

// Run modes.
const (
	modeNormal runMode = iota
	modeHelp
	modeControllerHelp
)

// Universal tokens read by the command itself.
const (
	helpKey           = "Help"
	controllerHelpKey = "ControllerHelp"
	verboseKey        = "Verbose"
)

// helpTokens are accepted as the first argument in place of a controller.
var helpTokens = []string{helpKey, "--help", "-h", controllerHelpKey}

type (
	runMode int

	// invocation is the command line split into its parts, completed with
	// the mode once configuration is loaded.
	invocation struct {
		controller string
		tokens     []string
		mode       runMode
		verbose    bool
	}

	// app holds the collaborators of one run.
	app struct {
		stdin        io.Reader
		stdout       io.Writer
		stderr       io.Writer
		fs           afero.Fs
		loadSettings func() (config.Settings, error)
		providers    provider.Options
	}
)

func newApp(cmd *cobra.Command) *app {
	return &app{
		stdin:        cmd.InOrStdin(),
		stdout:       cmd.OutOrStdout(),
		stderr:       cmd.ErrOrStderr(),
		fs:           afero.NewOsFs(),
		loadSettings: config.LoadSettings,
	}
}

// parseInvocation takes the first argument as the controller unless it is a
// help token.
func parseInvocation(args []string) invocation {
	if len(args) == 0 {
		return invocation{}
	}
	if slices.Contains(helpTokens, args[0]) {
		return invocation{tokens: args}
	}
	return invocation{controller: args[0], tokens: args[1:]}
}

// modeOf derives the run mode from the merged configuration.
func modeOf(store *config.Store, controller string) (runMode, bool) {
	mode := modeNormal
	for _, key := range []string{helpKey, "--help", "-h"} {
		if found, _ := store.Find(key); found {
			mode = modeHelp
		}
	}
	if found, _ := store.Find(controllerHelpKey); found {
		mode = modeControllerHelp
	}
	if controller == "" && mode == modeNormal {
		mode = modeHelp
	}
	verbose, _ := store.Find(verboseKey)
	return mode, verbose
}

// hasToken reports whether key appears among command-line tokens.
func hasToken(tokens []string, key string) bool {
	return slices.ContainsFunc(tokens, func(token string) bool {
		k, _, _ := strings.Cut(token, "=")
		return k == key
	})
}

// run executes one invocation and reports fatal errors. The returned error
// is an *ExitError once the failure has been shown to the user.
func (a *app) run(ctx context.Context, args []string) error {
	inv := parseInvocation(args)
	err := a.execute(ctx, &inv)
	if err == nil {
		return nil
	}
	a.report(err, inv.verbose)
	return &ExitError{Code: 1, Err: err}
}

func (a *app) execute(ctx context.Context, inv *invocation) error {
	settings, err := a.loadSettings()
	if err != nil {
		return discovery.Interactionf("invalid %s_* environment setting", config.EnvPrefix).Wrap(err)
	}

	inv.verbose = hasToken(inv.tokens, verboseKey)
	charm := newLogger(a.stderr, settings.LogFormat, inv.verbose)
	logger := slog.New(charm)
	slog.SetDefault(logger)

	store := config.NewStore()
	paths := config.FilePaths(settings)
	store.LoadFiles(a.fs, paths...)
	for _, token := range inv.tokens {
		store.LoadToken(token)
	}

	inv.mode, inv.verbose = modeOf(store, inv.controller)
	if inv.verbose {
		charm.SetLevel(log.DebugLevel)
		a.listConfiguration(store)
	}

	if err := config.ValidateOverrides(store); err != nil {
		return err
	}

	registry := discovery.NewRegistry(discovery.Deps{
		Config: store,
		FS:     a.fs,
		Logger: logger,
	})
	if err := provider.RegisterAll(registry, a.providers); err != nil {
		return discovery.Internalf("could not register providers").Wrap(err)
	}

	switch inv.mode {
	case modeControllerHelp:
		a.printControllerHelp(registry)
		return nil
	case modeHelp:
		a.printHelp(paths, inv.controller != "")
		if inv.controller == "" {
			return nil
		}
	}

	help, err := a.drive(ctx, registry, inv, logger)
	if err != nil {
		return err
	}
	if inv.mode == modeHelp {
		a.printHelpItems(help)
	}
	return nil
}

// drive runs the controller to completion on the transport its name
// selects.
func (a *app) drive(ctx context.Context, registry *discovery.Registry, inv *invocation, logger *slog.Logger) (*discovery.HelpItems, error) {
	mode := session.ModeNormal
	if inv.mode == modeHelp {
		mode = session.ModeHelp
	}

	if luahost.IsScript(inv.controller) {
		location, err := filepath.Abs(inv.controller)
		if err != nil {
			return nil, discovery.Interactionf("could not resolve the controller location %s", inv.controller).Wrap(err)
		}
		host := luahost.New(registry, luahost.Options{
			Mode:     mode,
			Location: filepath.Dir(location),
			FS:       a.fs,
			Logger:   logger,
			Stdout:   a.stdout,
			Stderr:   a.stderr,
		})
		err = host.Run(ctx, inv.controller)
		logger.Debug("controller finished", "controller", inv.controller, "requests", host.Requests())
		return host.HelpItems(), err
	}

	var ch channel.Channel
	if inv.controller == directController {
		ch = channel.Stdio(a.stdin, a.stdout)
	} else {
		p, err := channel.Spawn(ctx, inv.controller, channel.SpawnOptions{
			Mode:   mode.String(),
			Stderr: a.stderr,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("started controller", "controller", inv.controller, "pid", p.Pid())
		ch = p
	}
	defer func() {
		if err := ch.Close(); err != nil {
			logger.Debug("failed to close controller channel", "error", err)
		}
	}()

	s := session.New(registry, ch, mode, logger)
	err := s.Run(ctx)
	return s.HelpItems(), err
}

// listConfiguration prints every merged override with its source.
func (a *app) listConfiguration(store *config.Store) {
	for _, entry := range store.Entries() {
		fmt.Fprintln(a.stdout, VerboseStyle.Render(fmt.Sprintf(
			"Read configuration setting '%s' ( = '%s') from %s.", entry.Key, entry.Value, entry.Source)))
	}
}

// report prints a fatal error with the prefix of its category and the
// matching catalog guidance.
func (a *app) report(err error, verbose bool) {
	detail := formatErrorForDisplay(err, verbose)
	switch discovery.Classify(err) {
	case discovery.CategoryInteraction:
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Self discovery failed with error:")+" "+detail)
	case discovery.CategoryController:
		fmt.Fprintln(a.stderr, ErrorStyle.Render("The configuration script behaved incomprehensibly.")+
			"  Check that you have the latest version of selfdiscovery, and, if you do and the problem persists, please report this to the package maintainer:\n\t"+detail)
	default:
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Internal error - please contact SelfDiscovery's maintainer")+
			" with the following message:\n\t"+detail)
	}

	if !verbose {
		return
	}
	if guidance := discovery.Guidance(err); guidance != nil {
		if rendered, renderErr := guidance.Render("dark"); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
	}
}

// newLogger returns the diagnostic logger writing to w in format.
func newLogger(w io.Writer, format string, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	formatter := log.TextFormatter
	switch format {
	case config.LogFormatJSON:
		formatter = log.JSONFormatter
	case config.LogFormatLogfmt:
		formatter = log.LogfmtFormatter
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:    config.AppName,
		Level:     level,
		Formatter: formatter,
	})
}
