// SPDX-License-Identifier: MPL-2.0

package channel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/issue"

	"mvdan.cc/sh/v3/shell"
)

// ModeEnv tells a spawned controller which mode the engine runs in.
const ModeEnv = "SELFDISCOVERY_MODE"

type (
	// SpawnOptions configure a controller process.
	SpawnOptions struct {
		// Mode is exported to the controller as SELFDISCOVERY_MODE.
		Mode string
		// Dir is the working directory. Empty inherits the engine's.
		Dir string
		// Env is the environment. Nil inherits the engine's.
		Env []string
		// Stderr receives the controller's stderr. Nil inherits the engine's.
		Stderr io.Writer
	}

	// Process is a Channel to a controller child process.
	Process struct {
		cmd    *exec.Cmd
		stdin  io.WriteCloser
		reader *bufio.Reader
		waited bool
		code   int
		err    error
	}
)

// Spawn starts the controller described by command. The command is split
// into words with shell rules; variables expand from the environment.
func Spawn(ctx context.Context, command string, opts SpawnOptions) (*Process, error) {
	env := opts.Env
	if env == nil {
		env = os.Environ()
	}
	lookup := envLookup(env)

	argv, err := shell.Fields(command, lookup)
	if err != nil {
		return nil, spawnError(command, err, "Check the quoting of the controller command")
	}
	if len(argv) == 0 {
		return nil, discovery.Controllerf("empty controller command")
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, spawnError(argv[0], err, "Check that the controller exists and is executable")
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = append(append([]string{}, env...), ModeEnv+"="+opts.Mode)
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, spawnError(path, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, spawnError(path, err)
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, spawnError(path, err, "Check that the controller is executable")
	}

	return &Process{cmd: cmd, stdin: stdin, reader: bufio.NewReader(stdout)}, nil
}

func spawnError(resource string, cause error, suggestions ...string) error {
	return discovery.Interactionf("could not start the controller").Wrap(
		issue.NewErrorContext().
			WithOperation("start controller").
			WithResource(resource).
			WithSuggestions(suggestions...).
			WithIssue(issue.ControllerStartFailedId).
			Wrap(cause).
			BuildError())
}

func envLookup(env []string) func(string) string {
	values := make(map[string]string, len(env))
	for _, kv := range env {
		if name, value, ok := strings.Cut(kv, "="); ok {
			values[name] = value
		}
	}
	return func(name string) string { return values[name] }
}

// Pid returns the controller's process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// ReadLine implements Channel.
func (p *Process) ReadLine() (string, error) {
	return readLine(p.reader)
}

// WriteLine implements Channel.
func (p *Process) WriteLine(text string) error {
	if _, err := io.WriteString(p.stdin, text+"\n"); err != nil {
		return fmt.Errorf("writing to controller: %w", err)
	}
	return nil
}

// Wait implements Channel. A non-zero exit is reported through the code,
// not as an error.
func (p *Process) Wait() (int, error) {
	if p.waited {
		return p.code, p.err
	}
	p.waited = true
	_ = p.stdin.Close()

	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		p.code = 0
	case errors.As(err, &exitErr):
		p.code = exitErr.ExitCode()
	default:
		p.code, p.err = -1, err
	}
	return p.code, p.err
}

// Kill implements Channel.
func (p *Process) Kill() error {
	if p.waited || p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Kill()
	_, _ = p.Wait()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// Close implements Channel. It closes the controller's stdin.
func (p *Process) Close() error {
	if p.waited {
		return nil
	}
	return p.stdin.Close()
}
