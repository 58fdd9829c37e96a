// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

type (
	// Command is an external program invocation.
	Command struct {
		Path string
		Args []string
		Dir  string
	}

	// Result is the outcome of a finished command.
	Result struct {
		ExitCode int
		Stdout   string
		Stderr   string
	}

	// Runner executes external commands for probing providers.
	Runner interface {
		Run(ctx context.Context, cmd Command) (Result, error)
	}

	// ExecRunner runs commands as real processes.
	ExecRunner struct{}
)

// Run executes cmd and waits for it. A non-zero exit status is reported in
// the result, not as an error.
func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
