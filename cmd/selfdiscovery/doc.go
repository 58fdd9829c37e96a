// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the selfdiscovery command line.
//
// The root command takes no flags of its own: every argument after the
// controller is a configuration token (KEY or KEY=VALUE), so Cobra's flag
// parsing is disabled and tokens are merged into the configuration store
// with the highest precedence.
package cmd
