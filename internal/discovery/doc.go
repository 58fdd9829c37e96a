// SPDX-License-Identifier: MPL-2.0

// Package discovery defines the contract between the dispatch loop and the
// discovery providers.
//
// A provider answers one kind of request (Platform, Program, CLibrary, ...).
// Providers are registered with a Registry through a Descriptor and are only
// constructed the first time a request names them; the same instance then
// serves every later request of the run. Requests carry their arguments as
// Args, which accept both positional pipe tokens and named fields, and
// providers reply with an ordered Response or nil when an optional lookup
// found nothing.
//
// File organization:
//   - errors.go: error categories reported to the user
//   - args.go: request argument parsing
//   - response.go: structured responses
//   - help.go: override help collection
//   - registry.go: lazy provider registry
//   - runner.go: external command execution used by probing providers
package discovery
