// SPDX-License-Identifier: MPL-2.0

package lineproto

import (
	"strings"
)

// Framer accumulates physical lines into complete requests. A request ends
// at the first empty line that is not inside an open quote.
type Framer struct {
	parts []string
}

// Feed adds one physical line (without its newline). When the line completes
// a request, the accumulated text is returned with complete set and the
// framer is reset.
func (f *Framer) Feed(line string) (request string, complete bool) {
	if line != "" {
		f.parts = append(f.parts, line)
		return "", false
	}

	text := strings.Join(f.parts, "\n")
	if !Balanced(text) {
		// The blank line belongs to a quoted argument.
		f.parts = append(f.parts, "")
		return "", false
	}

	f.parts = nil
	return text, true
}

// Pending reports whether a partial request has been buffered.
func (f *Framer) Pending() bool {
	return len(f.parts) > 0
}

// Quote renders token so that splitting the result with RequestDelimiters
// yields token again.
func Quote(token string) string {
	if token == "" {
		return `""`
	}
	if !strings.ContainsAny(token, RequestDelimiters+`"\`) {
		return token
	}

	var b strings.Builder
	b.Grow(len(token) + 2)
	b.WriteByte(quoteChar)
	for _, r := range token {
		if r == quoteChar || r == escapeChar {
			b.WriteByte(escapeChar)
		}
		b.WriteRune(r)
	}
	b.WriteByte(quoteChar)
	return b.String()
}

// Join quotes every token and joins them with single spaces.
func Join(tokens ...string) string {
	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = Quote(token)
	}
	return strings.Join(quoted, " ")
}

// FormatMessage renders lines as a framed message: every line followed by a
// newline, then one empty terminator line. No lines yields just the
// terminator.
func FormatMessage(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}
