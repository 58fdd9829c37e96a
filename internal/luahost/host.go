// SPDX-License-Identifier: MPL-2.0

package luahost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/issue"
	"github.com/selfdiscovery/selfdiscovery/internal/session"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

// Extension marks controllers that run on the embedded interpreter.
const Extension = ".lua"

type (
	// Options configure a Host.
	Options struct {
		Mode session.Mode
		// Location is reported by Discover.ControllerLocation.
		Location string
		FS       afero.Fs
		Logger   *slog.Logger
		// Stdout and Stderr receive output of Utility.Call and print.
		Stdout io.Writer
		Stderr io.Writer
		// Env is the environment for Utility.Call. Nil uses os.Environ.
		Env []string
	}

	// Host executes one Lua controller against a registry.
	Host struct {
		registry *discovery.Registry
		opts     Options
		help     *discovery.HelpItems
		ctx      context.Context
		requests int
		// failure is the first fatal provider error, kept so the caller
		// sees the typed Go error rather than a Lua string.
		failure error
	}
)

// IsScript reports whether controller should run on the embedded
// interpreter.
func IsScript(controller string) bool {
	return strings.HasSuffix(strings.ToLower(controller), Extension)
}

// New returns a host answering requests from registry.
func New(registry *discovery.Registry, opts Options) *Host {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	return &Host{
		registry: registry,
		opts:     opts,
		help:     discovery.NewHelpItems(),
		ctx:      context.Background(),
	}
}

// HelpItems returns the override help gathered in help mode.
func (h *Host) HelpItems() *discovery.HelpItems {
	return h.help
}

// Requests returns the number of provider requests made by the script.
func (h *Host) Requests() int {
	return h.requests
}

// Run loads and executes the script at path.
func (h *Host) Run(ctx context.Context, path string) error {
	source, err := afero.ReadFile(h.opts.FS, path)
	if err != nil {
		return discovery.Interactionf("could not read the controller script %s", path).
			Wrap(issue.WrapWithContext(err, "read controller script", path))
	}
	return h.RunString(ctx, path, string(source))
}

// RunString executes source as a controller named name.
func (h *Host) RunString(ctx context.Context, name, source string) error {
	h.ctx = ctx
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	openLibraries(L)
	h.install(L)

	err := doWithRecovery(func() error {
		fn, err := L.Load(strings.NewReader(source), "@"+name)
		if err != nil {
			return err
		}
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	})
	if h.failure != nil {
		return h.failure
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return discovery.Controllerf("the controller script failed").Wrap(err)
	}
	h.opts.Logger.Debug("controller script finished", "requests", h.requests)
	return nil
}

// openLibraries opens the standard libraries a build script may use. The
// debug library stays closed.
func openLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	lua.OpenOs(L)
	lua.OpenIo(L)
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

func (h *Host) install(L *lua.LState) {
	discover := L.NewTable()
	for _, anchor := range h.registry.Anchors() {
		L.SetField(discover, anchor.Identifier(), L.NewFunction(h.request(anchor)))
	}
	L.SetField(discover, "HelpMode", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(h.opts.Mode == session.ModeHelp))
		return 1
	}))
	L.SetField(discover, "ControllerLocation", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(h.opts.Location))
		return 1
	}))
	L.SetGlobal("Discover", discover)
	L.SetGlobal("Utility", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"MakeDirectory": h.makeDirectory,
		"Call":          h.call,
	}))
	L.SetGlobal("print", L.NewFunction(h.print))
}

func (h *Host) request(anchor *discovery.Anchor) lua.LGFunction {
	return func(L *lua.LState) int {
		h.requests++
		args, err := argsFromTable(L.OptTable(1, nil))
		if err != nil {
			return h.fail(L, discovery.InRequest(err, h.requests, anchor.Identifier()))
		}
		h.opts.Logger.Debug("handling request", "request", h.requests, "type", anchor.Identifier())

		if h.opts.Mode == session.ModeHelp {
			if err := anchor.DisplayHelp(args, h.help); err != nil {
				return h.fail(L, discovery.InRequest(err, h.requests, anchor.Identifier()))
			}
			L.Push(lua.LNil)
			return 1
		}

		resp, err := anchor.Respond(h.ctx, args)
		if err != nil {
			return h.fail(L, discovery.InRequest(err, h.requests, anchor.Identifier()))
		}
		L.Push(responseTable(L, resp))
		return 1
	}
}

// fail records err and raises it as a Lua error. Later failures do not
// replace the first.
func (h *Host) fail(L *lua.LState, err error) int {
	if h.failure == nil {
		h.failure = err
	}
	L.RaiseError("%s", err.Error())
	return 0
}

func (h *Host) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(h.opts.Stdout, strings.Join(parts, "\t"))
	return 0
}
