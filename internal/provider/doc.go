// SPDX-License-Identifier: MPL-2.0

// Package provider implements the built-in discovery providers.
//
// Every provider consults the configuration store before running its own
// heuristics, so a user override always wins. Providers that depend on other
// providers (CLibrary needs Platform and Program, CXXCompiler needs Program)
// reach them through the registry, which keeps each one a single instance.
package provider
