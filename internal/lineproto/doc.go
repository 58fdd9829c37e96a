// SPDX-License-Identifier: MPL-2.0

// Package lineproto implements the text grammar spoken between selfdiscovery
// and a controller: quote- and backslash-aware token splitting, the inverse
// quoting used when writing values back, and blank-line message framing.
//
// A backslash escapes the character that follows it. A double quote toggles
// quoted mode, inside which delimiters are literal. Both the escape and the
// quote state survive across Process calls, so callers can feed one physical
// line at a time and ask Finished whether a logical request is complete.
package lineproto
