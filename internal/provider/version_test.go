// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"errors"
	"testing"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no requirement", args: nil},
		{name: "current version", args: []string{"0"}},
		{name: "named current version", args: []string{"Version=0"}},
		{name: "newer version", args: []string{"1"}, wantErr: discovery.ErrInteraction},
		{name: "not a number", args: []string{"soon"}, wantErr: discovery.ErrController},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestEnv(t, nil).registry(t)
			resp, err := respond(t, r, VersionID, discovery.NewArgs(tt.args))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Respond() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Respond() error = %v", err)
			}
			f, ok := resp.Get("Version")
			if !ok || f.Int != CurrentVersion {
				t.Errorf("Version = %v, want %d", f, CurrentVersion)
			}
		})
	}
}
