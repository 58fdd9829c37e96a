// SPDX-License-Identifier: MPL-2.0

// Package platform classifies the machine selfdiscovery runs on: operating
// system family and member, pointer width, and for Linux the distribution
// class that decides library directory layouts.
//
// Detection is split into Probe strategies per family so each can be tested
// against an in-memory filesystem. Overrides from the configuration store
// are applied after detection and always win.
package platform
