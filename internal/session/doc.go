// SPDX-License-Identifier: MPL-2.0

// Package session runs the request/response loop between a controller and
// the provider registry.
package session
