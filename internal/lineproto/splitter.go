// SPDX-License-Identifier: MPL-2.0

package lineproto

import (
	"strings"

	"golang.org/x/exp/slices"
)

const (
	escapeChar = '\\'
	quoteChar  = '"'

	// RequestDelimiters separate tokens in a controller request.
	RequestDelimiters = " \t\r\n"
)

type (
	// Splitter tokenizes text according to the controller line grammar.
	// It is not safe for concurrent use.
	Splitter struct {
		delimiters string
		dropBlanks bool

		escaped bool
		quoted  bool
		// touched marks a token that contained quotes, so "" survives
		// blank dropping.
		touched bool
		// partial holds the token still open at the end of the last input.
		partial strings.Builder

		results *Queue
	}

	// Queue is a FIFO of tokens. Tokens are consumed destructively by
	// argument parsing.
	Queue struct {
		tokens []string
	}
)

// NewSplitter returns a splitter that separates tokens on any rune in
// delimiters. When dropBlanks is set, empty tokens are discarded.
func NewSplitter(delimiters string, dropBlanks bool) *Splitter {
	return &Splitter{
		delimiters: delimiters,
		dropBlanks: dropBlanks,
		results:    &Queue{},
	}
}

// Process splits input and appends the tokens to the results queue. The
// trailing token is flushed only when input ends outside quotes and escapes;
// otherwise it continues with the next call.
func (s *Splitter) Process(input string) *Splitter {
	buf := &s.partial

	for _, r := range input {
		if s.escaped {
			s.escaped = false
			buf.WriteRune(r)
			continue
		}

		switch {
		case r == escapeChar:
			s.escaped = true
		case r == quoteChar:
			s.quoted = !s.quoted
			s.touched = true
		case !s.quoted && strings.ContainsRune(s.delimiters, r):
			s.flush(buf)
		default:
			buf.WriteRune(r)
		}
	}

	if s.Finished() {
		s.flush(buf)
	}
	return s
}

func (s *Splitter) flush(buf *strings.Builder) {
	if !s.dropBlanks || buf.Len() > 0 || s.touched {
		s.results.Push(buf.String())
	}
	buf.Reset()
	s.touched = false
}

// Finished reports whether processing ended with balanced quotes and no
// dangling escape.
func (s *Splitter) Finished() bool {
	return !s.escaped && !s.quoted
}

// Results returns the queue of tokens produced so far.
func (s *Splitter) Results() *Queue {
	return s.results
}

// Split is a convenience wrapper returning the tokens of a single line.
func Split(line, delimiters string, dropBlanks bool) []string {
	return NewSplitter(delimiters, dropBlanks).Process(line).Results().Slice()
}

// Balanced reports whether text has no open quote and no dangling escape.
func Balanced(text string) bool {
	return NewSplitter("", false).Process(text).Finished()
}

// NewQueue returns a queue holding tokens in order.
func NewQueue(tokens ...string) *Queue {
	return &Queue{tokens: append([]string(nil), tokens...)}
}

// Push appends a token to the back of the queue.
func (q *Queue) Push(token string) {
	q.tokens = append(q.tokens, token)
}

// Pop removes and returns the front token.
func (q *Queue) Pop() (string, bool) {
	if len(q.tokens) == 0 {
		return "", false
	}
	front := q.tokens[0]
	q.tokens = q.tokens[1:]
	return front, true
}

// Peek returns the front token without removing it.
func (q *Queue) Peek() (string, bool) {
	if len(q.tokens) == 0 {
		return "", false
	}
	return q.tokens[0], true
}

// Remove deletes the first token equal to value and reports whether one was
// found.
func (q *Queue) Remove(value string) bool {
	i := slices.Index(q.tokens, value)
	if i < 0 {
		return false
	}
	q.tokens = slices.Delete(q.tokens, i, i+1)
	return true
}

// Len returns the number of queued tokens.
func (q *Queue) Len() int {
	return len(q.tokens)
}

// Slice returns a copy of the queued tokens.
func (q *Queue) Slice() []string {
	return append([]string(nil), q.tokens...)
}
