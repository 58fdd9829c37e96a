// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/config"
	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
)

// Override keys consulted by Detect.
const (
	ArchKey   = "Arch"
	FamilyKey = "PlatformFamily"
	MemberKey = "PlatformMember"
)

// Detect runs probe and then applies the Arch, PlatformFamily and
// PlatformMember overrides. The Linux class is derived from the effective
// member.
func Detect(probe Probe, store *config.Store, logger *slog.Logger) (Descriptor, error) {
	family, member := probe.Detect()
	d := Descriptor{
		Family:           family,
		Member:           member,
		ArchitectureBits: strconv.IntSize,
	}

	if found, value := store.Find(ArchKey); found {
		bits, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || (bits != 32 && bits != 64) {
			return Descriptor{}, discovery.Interactionf("override %s=%q is not 32 or 64", ArchKey, value).
				WithSuggestion("Use Arch=32 or Arch=64")
		}
		logger.Debug("found platform architecture by configuration", "bits", bits)
		d.ArchitectureBits = bits
	}

	if found, value := store.Find(FamilyKey); found {
		f := Family(value)
		if !f.Valid() {
			return Descriptor{}, discovery.Interactionf("override %s=%q names an unknown platform family", FamilyKey, value).
				WithSuggestion("Use one of: windows, linux, bsd")
		}
		logger.Debug("found platform family by configuration", "family", f)
		d.Family = f
	}

	if found, value := store.Find(MemberKey); found {
		logger.Debug("found platform member by configuration", "member", value)
		d.Member = Member(value)
	}

	d.LinuxClass = ClassInvalid
	if d.Family == FamilyLinux {
		d.LinuxClass = ClassOf(d.Member)
	}

	logger.Debug("determined platform",
		"family", d.Family, "member", d.Member, "bits", d.ArchitectureBits, "linux_class", d.LinuxClass)
	return d, nil
}
