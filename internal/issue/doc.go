// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints, and may link to an entry of the Markdown guidance
// catalog, which is rendered for terminals with glamour.
package issue
