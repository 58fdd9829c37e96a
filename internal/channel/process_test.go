// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package channel

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
)

func TestSpawn_RoundTrip(t *testing.T) {
	t.Parallel()

	p, err := Spawn(context.Background(), `sh -c 'read line; echo "got $line"; echo "$SELFDISCOVERY_MODE"'`, SpawnOptions{Mode: "help"})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Kill() })

	if err := p.WriteLine("ping"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	for _, want := range []string{"got ping", "help"} {
		got, err := p.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine() error = %v", err)
		}
		if got != want {
			t.Errorf("ReadLine() = %q, want %q", got, want)
		}
	}
	if _, err := p.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadLine() at end error = %v, want io.EOF", err)
	}
	if code, err := p.Wait(); code != 0 || err != nil {
		t.Errorf("Wait() = %d, %v, want 0, nil", code, err)
	}
}

func TestSpawn_ExpandsVariables(t *testing.T) {
	t.Parallel()

	env := append(os.Environ(), "GREETING=hello world")
	p, err := Spawn(context.Background(), `echo $GREETING`, SpawnOptions{Mode: "normal", Env: env})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	got, err := p.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if got != "hello world" {
		t.Errorf("ReadLine() = %q, want %q", got, "hello world")
	}
	_, _ = p.Wait()
}

func TestSpawn_ExitCode(t *testing.T) {
	t.Parallel()

	p, err := Spawn(context.Background(), `sh -c 'exit 3'`, SpawnOptions{Mode: "normal"})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	code, err := p.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if code != 3 {
		t.Errorf("Wait() = %d, want 3", code)
	}
	if again, _ := p.Wait(); again != 3 {
		t.Errorf("second Wait() = %d, want 3", again)
	}
}

func TestSpawn_Kill(t *testing.T) {
	t.Parallel()

	p, err := Spawn(context.Background(), `sleep 30`, SpawnOptions{Mode: "normal"})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := p.Kill(); err != nil {
		t.Errorf("Kill() error = %v", err)
	}
	if err := p.Kill(); err != nil {
		t.Errorf("second Kill() error = %v", err)
	}
}

func TestSpawn_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		want    error
	}{
		{name: "missing program", command: "/nonexistent/controller --flag", want: discovery.ErrInteraction},
		{name: "unbalanced quote", command: `controller "oops`, want: discovery.ErrInteraction},
		{name: "empty command", command: "   ", want: discovery.ErrController},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Spawn(context.Background(), tt.command, SpawnOptions{Mode: "normal"})
			if !errors.Is(err, tt.want) {
				t.Errorf("Spawn() error = %v, want %v", err, tt.want)
			}
		})
	}
}
