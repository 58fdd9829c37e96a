// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestValidateOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pairs   map[string]string
		wantKey string
	}{
		{name: "no universal keys", pairs: map[string]string{"Program-gcc": "/x"}},
		{name: "valid values", pairs: map[string]string{"Arch": "64", "PlatformFamily": "bsd", "Prefix": "/opt"}},
		{name: "bad arch", pairs: map[string]string{"Arch": "48"}, wantKey: "Arch"},
		{name: "bad family", pairs: map[string]string{"PlatformFamily": "plan9"}, wantKey: "PlatformFamily"},
		{name: "empty prefix", pairs: map[string]string{"Prefix": ""}, wantKey: "Prefix"},
		{name: "bad member", pairs: map[string]string{"PlatformMember": "Red Hat"}, wantKey: "PlatformMember"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateOverrides(FromPairs(CommandLineSource, tt.pairs))
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("ValidateOverrides() error = %v", err)
				}
				return
			}

			if !errors.Is(err, ErrInvalidOverride) {
				t.Fatalf("ValidateOverrides() error = %v, want ErrInvalidOverride", err)
			}
			var ioe *InvalidOverrideError
			if errors.As(err, &ioe) && ioe.Key != "" && ioe.Key != tt.wantKey {
				t.Errorf("error names key %q, want %q", ioe.Key, tt.wantKey)
			}
		})
	}
}
