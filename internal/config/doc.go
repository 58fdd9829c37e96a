// SPDX-License-Identifier: MPL-2.0

// Package config resolves configuration overrides for selfdiscovery.
//
// Overrides are key[=value] pairs that take precedence over anything a
// discovery provider would detect on its own. They are merged into a single
// Store from, in increasing precedence: the global configuration file, the
// per-user configuration file, the working-directory configuration file, and
// command-line tokens. Loading in that order lets later sources overwrite
// earlier ones.
//
// The package also carries the engine's own settings (Settings), which come
// from SELFDISCOVERY_* environment variables through Viper and never become
// overrides, and a CUE schema used to validate the universal override keys.
package config
