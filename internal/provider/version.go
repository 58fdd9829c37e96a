// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
)

// CurrentVersion is the protocol version spoken by this build.
const CurrentVersion = 0

// Version reports the protocol version and rejects controllers that need a
// newer one.
type Version struct{}

func versionDescriptor() discovery.Descriptor {
	return discovery.Descriptor{
		Identifier: VersionID,
		Usage: `Discover.Version{[Version = VERSION]}    pipe: Version [VERSION]
Result: {Version = CURRENTVERSION}
If VERSION is given, asserts that this program is compatible with it and
aborts otherwise. Returns the protocol version of this program.`,
		New: func(*discovery.Registry) (discovery.Provider, error) {
			return Version{}, nil
		},
	}
}

// Respond implements discovery.Provider.
func (Version) Respond(_ context.Context, args *discovery.Args) (*discovery.Response, error) {
	wanted, ok, err := args.Unsigned("Version")
	if err != nil {
		return nil, err
	}
	if ok && wanted > CurrentVersion {
		return nil, discovery.Interactionf(
			"the controller requires version %d which is newer than this version (%d)", wanted, CurrentVersion).
			WithSuggestion("Upgrade selfdiscovery to continue")
	}
	return discovery.NewResponse().SetInt("Version", CurrentVersion), nil
}
