// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/selfdiscovery/selfdiscovery/internal/config"
	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestDetectAutodetected(t *testing.T) {
	t.Parallel()

	d, err := Detect(StaticProbe{FamilyLinux, MemberUbuntu}, config.NewStore(), quietLogger)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	want := Descriptor{Family: FamilyLinux, Member: MemberUbuntu, ArchitectureBits: strconv.IntSize, LinuxClass: ClassDebian}
	if d != want {
		t.Errorf("Detect() = %+v, want %+v", d, want)
	}
}

func TestDetectOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		probe StaticProbe
		pairs map[string]string
		want  Descriptor
	}{
		{
			name:  "arch override",
			probe: StaticProbe{FamilyLinux, MemberArch},
			pairs: map[string]string{"Arch": "32"},
			want:  Descriptor{FamilyLinux, MemberArch, 32, ClassArch},
		},
		{
			name:  "member override rederives class",
			probe: StaticProbe{FamilyLinux, MemberUbuntu},
			pairs: map[string]string{"PlatformMember": "redhat", "Arch": "64"},
			want:  Descriptor{FamilyLinux, MemberRedHat, 64, ClassRedHat},
		},
		{
			name:  "family override to linux uses effective member",
			probe: StaticProbe{FamilyWindows, MemberWindows7},
			pairs: map[string]string{"PlatformFamily": "linux", "PlatformMember": "debian", "Arch": "64"},
			want:  Descriptor{FamilyLinux, MemberDebian, 64, ClassDebian},
		},
		{
			name:  "family override away from linux",
			probe: StaticProbe{FamilyLinux, MemberDebian},
			pairs: map[string]string{"PlatformFamily": "bsd", "PlatformMember": "openbsd", "Arch": "64"},
			want:  Descriptor{FamilyBSD, MemberOpenBSD, 64, ClassInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := Detect(tt.probe, config.FromPairs("test", tt.pairs), quietLogger)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if d != tt.want {
				t.Errorf("Detect() = %+v, want %+v", d, tt.want)
			}
		})
	}
}

func TestDetectRejectsBadOverrides(t *testing.T) {
	t.Parallel()

	for _, pairs := range []map[string]string{
		{"Arch": "48"},
		{"Arch": "sixty-four"},
		{"PlatformFamily": "plan9"},
	} {
		_, err := Detect(StaticProbe{FamilyLinux, MemberDebian}, config.FromPairs("test", pairs), quietLogger)
		if !errors.Is(err, discovery.ErrInteraction) {
			t.Errorf("Detect(%v) error = %v, want an interaction error", pairs, err)
		}
	}
}

func TestClassOfAndTriplet(t *testing.T) {
	t.Parallel()

	if ClassOf(MemberFedora) != ClassRedHat || ClassOf(MemberOpenBSD) != ClassInvalid {
		t.Error("ClassOf() returned unexpected classes")
	}
	if MultiarchTriplet("amd64") != "x86_64-linux-gnu" || MultiarchTriplet("mips") != "" {
		t.Error("MultiarchTriplet() returned unexpected triplets")
	}
	if !FamilyBSD.Valid() || Family("plan9").Valid() {
		t.Error("Family.Valid() misreported")
	}
	if len(Members(FamilyLinux)) == 0 || len(Families()) != 3 {
		t.Error("enumerations are incomplete")
	}
}
