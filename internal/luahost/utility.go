// SPDX-License-Identifier: MPL-2.0

package luahost

import (
	"errors"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"

	lua "github.com/yuin/gopher-lua"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// UtilityUsage documents the Utility table for controller authors.
const UtilityUsage = `Utility.MakeDirectory{Directory = DIRECTORY [, MakeParents = true]}
Returns: nothing
Creates DIRECTORY and, with MakeParents, every missing parent. Failures are
silently ignored.

Utility.Call{Command = COMMAND [, WorkingDirectory = DIRECTORY]}
Returns: STATUS
Runs COMMAND with the embedded shell in DIRECTORY, or the current working
directory, and returns its exit status.`

// makeDirectory implements Utility.MakeDirectory{Directory, MakeParents}.
// Failures are logged and otherwise ignored.
func (h *Host) makeDirectory(L *lua.LState) int {
	t := L.CheckTable(1)
	dir, ok := t.RawGetString("Directory").(lua.LString)
	if !ok || dir == "" {
		return h.fail(L, discovery.Controllerf("Utility.MakeDirectory needs a Directory"))
	}
	parents := lua.LVAsBool(t.RawGetString("MakeParents"))

	var err error
	if parents {
		err = h.opts.FS.MkdirAll(string(dir), 0o755)
	} else {
		err = h.opts.FS.Mkdir(string(dir), 0o755)
	}
	if err != nil {
		h.opts.Logger.Debug("could not create directory", "directory", string(dir), "error", err)
	}
	return 0
}

// call implements Utility.Call{Command, WorkingDirectory}. The command runs
// on the embedded shell interpreter and its exit status is returned.
func (h *Host) call(L *lua.LState) int {
	t := L.CheckTable(1)
	command, ok := t.RawGetString("Command").(lua.LString)
	if !ok {
		return h.fail(L, discovery.Controllerf("Utility.Call needs a Command"))
	}
	workDir := ""
	if wd, ok := t.RawGetString("WorkingDirectory").(lua.LString); ok {
		workDir = string(wd)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(string(command)), "command")
	if err != nil {
		return h.fail(L, discovery.Controllerf("Utility.Call could not parse %q", string(command)).Wrap(err))
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(h.opts.Env...)),
		interp.StdIO(nil, h.opts.Stdout, h.opts.Stderr),
	}
	if workDir != "" {
		opts = append(opts, interp.Dir(workDir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return h.fail(L, discovery.Interactionf("could not prepare Utility.Call").Wrap(err))
	}

	status := 0
	if err := runner.Run(h.ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			status = int(exitStatus)
		} else {
			h.opts.Logger.Debug("Utility.Call failed", "command", string(command), "error", err)
			status = 1
		}
	}
	h.opts.Logger.Debug("Utility.Call finished", "command", string(command), "status", status)
	L.Push(lua.LNumber(status))
	return 1
}
