// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/channel"
	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/lineproto"
)

// Run modes announced to the controller in the handshake.
const (
	ModeNormal Mode = iota
	ModeHelp
)

type (
	// Mode selects whether requests are answered or only documented.
	Mode int

	// Session drives one controller to completion.
	Session struct {
		registry *discovery.Registry
		channel  channel.Channel
		mode     Mode
		logger   *slog.Logger
		help     *discovery.HelpItems
		requests int
	}
)

// String returns the handshake word for m.
func (m Mode) String() string {
	if m == ModeHelp {
		return "help"
	}
	return "normal"
}

// New returns a session answering requests on ch from registry.
func New(registry *discovery.Registry, ch channel.Channel, mode Mode, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		registry: registry,
		channel:  ch,
		mode:     mode,
		logger:   logger,
		help:     discovery.NewHelpItems(),
	}
}

// HelpItems returns the override help gathered in help mode.
func (s *Session) HelpItems() *discovery.HelpItems {
	return s.help
}

// Requests returns the number of requests handled so far.
func (s *Session) Requests() int {
	return s.requests
}

// Run performs the handshake and answers requests until the controller
// closes its output. Any fatal error kills the controller.
func (s *Session) Run(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			if killErr := s.channel.Kill(); killErr != nil {
				s.logger.Debug("failed to kill controller", "error", killErr)
			}
		}
	}()

	if err := s.send(s.mode.String()); err != nil {
		return err
	}

	var framer lineproto.Framer
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.channel.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return discovery.Interactionf("lost connection to the controller").Wrap(err)
		}

		request, complete := framer.Feed(line)
		if !complete {
			continue
		}
		s.requests++
		resp, err := s.handle(ctx, request)
		if err != nil {
			return discovery.InRequest(err, s.requests, request)
		}
		if err := s.send(resp.Lines()...); err != nil {
			return err
		}
	}

	if framer.Pending() {
		s.logger.Warn("controller closed its output in the middle of a request")
	}
	code, err := s.channel.Wait()
	switch {
	case err != nil:
		s.logger.Warn("could not wait for the controller", "error", err)
	case code != 0:
		s.logger.Warn("controller exited with a non-zero status", "status", code)
	}
	s.logger.Debug("session finished", "requests", s.requests)
	return nil
}

func (s *Session) handle(ctx context.Context, request string) (*discovery.Response, error) {
	tokens := lineproto.Split(request, lineproto.RequestDelimiters, true)
	if len(tokens) == 0 {
		s.logger.Warn("received an empty request", "request", s.requests)
		return nil, nil
	}

	anchor, ok := s.registry.Anchor(tokens[0])
	if !ok {
		return nil, discovery.Controllerf("unknown request type %q", tokens[0])
	}
	args := discovery.NewArgs(tokens[1:])
	s.logger.Debug("handling request", "request", s.requests, "type", tokens[0])

	if s.mode == ModeHelp {
		return nil, anchor.DisplayHelp(args, s.help)
	}
	return anchor.Respond(ctx, args)
}

// send writes lines as one framed message.
func (s *Session) send(lines ...string) error {
	message := strings.TrimSuffix(lineproto.FormatMessage(lines), "\n")
	if err := s.channel.WriteLine(message); err != nil {
		return discovery.Interactionf("lost connection to the controller").Wrap(err)
	}
	return nil
}
