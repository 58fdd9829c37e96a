// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/platform"
)

// Platform reports the effective target platform.
type Platform struct {
	desc platform.Descriptor
}

func platformDescriptor(opts Options) discovery.Descriptor {
	return discovery.Descriptor{
		Identifier: PlatformID,
		Usage: `Discover.Platform{}    pipe: Platform
Result: {Family = FAMILY, Member = MEMBER, Arch = BITS [, LinuxClass = CLASS]}
FAMILY is one of windows, linux or bsd. BITS is 32 or 64. LinuxClass is only
returned for the linux family and is one of redhat, debian, arch or invalid.`,
		Help: platformHelp,
		New: func(r *discovery.Registry) (discovery.Provider, error) {
			deps := r.Deps()
			probe := opts.Probe
			if probe == nil {
				probe = platform.NativeProbe(deps.FS, deps.GOOS, deps.Getenv)
			}
			desc, err := platform.Detect(probe, deps.Config, deps.Logger)
			if err != nil {
				return nil, err
			}
			return &Platform{desc: desc}, nil
		},
	}
}

func platformHelp(_ *discovery.Args, items *discovery.HelpItems) error {
	items.Add(platform.ArchKey+"=BITS", "Overrides the detected architecture. BITS is 32 or 64.")

	families := make([]string, 0, len(platform.Families()))
	for _, f := range platform.Families() {
		families = append(families, string(f))
		members := make([]string, 0, len(platform.Members(f)))
		for _, m := range platform.Members(f) {
			members = append(members, string(m))
		}
		items.Add(platform.MemberKey+"=MEMBER",
			fmt.Sprintf("Overrides the detected platform member. Members of %s: %s.", f, strings.Join(members, ", ")))
	}
	items.Add(platform.FamilyKey+"=FAMILY",
		fmt.Sprintf("Overrides the detected platform family. FAMILY is one of: %s.", strings.Join(families, ", ")))
	return nil
}

// Descriptor returns the detected platform.
func (p *Platform) Descriptor() platform.Descriptor {
	return p.desc
}

// Respond implements discovery.Provider.
func (p *Platform) Respond(context.Context, *discovery.Args) (*discovery.Response, error) {
	resp := discovery.NewResponse().
		SetString("Family", string(p.desc.Family)).
		SetString("Member", string(p.desc.Member)).
		SetInt("Arch", int64(p.desc.ArchitectureBits))
	if p.desc.IsLinux() {
		resp.SetString("LinuxClass", string(p.desc.LinuxClass))
	}
	return resp, nil
}
