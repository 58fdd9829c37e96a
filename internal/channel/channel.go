// SPDX-License-Identifier: MPL-2.0

package channel

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Channel is a bidirectional line stream to a controller.
type Channel interface {
	// ReadLine returns the next line without its terminator. It returns
	// io.EOF once the controller closed its side.
	ReadLine() (string, error)
	// WriteLine writes text followed by a newline.
	WriteLine(text string) error
	// Wait waits for the controller to finish and returns its exit code.
	Wait() (int, error)
	// Kill stops the controller after a fatal error.
	Kill() error
	// Close releases the engine's side of the channel.
	Close() error
}

// Stream is a Channel over plain reader and writer, used when the
// controller is the engine's own standard streams.
type Stream struct {
	reader *bufio.Reader
	out    io.Writer
}

// Stdio returns a channel reading from in and writing to out.
func Stdio(in io.Reader, out io.Writer) *Stream {
	return &Stream{reader: bufio.NewReader(in), out: out}
}

// ReadLine implements Channel.
func (s *Stream) ReadLine() (string, error) {
	return readLine(s.reader)
}

// WriteLine implements Channel.
func (s *Stream) WriteLine(text string) error {
	_, err := io.WriteString(s.out, text+"\n")
	return err
}

// Wait implements Channel. There is no process, so it always succeeds.
func (s *Stream) Wait() (int, error) {
	return 0, nil
}

// Kill implements Channel. It is a no-op.
func (s *Stream) Kill() error {
	return nil
}

// Close implements Channel. The underlying streams are owned by the caller.
func (s *Stream) Close() error {
	return nil
}

// readLine reads one line, dropping "\n" and any "\r". A final line without
// a terminator is returned before io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.ReplaceAll(line, "\r", ""), nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.ReplaceAll(line, "\r", ""), nil
}
