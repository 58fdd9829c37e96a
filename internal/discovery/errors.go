// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/config"
	"github.com/selfdiscovery/selfdiscovery/internal/issue"
)

const (
	// CategoryInternal is a defect in selfdiscovery itself.
	CategoryInternal Category = iota
	// CategoryInteraction is a problem with the user's machine or overrides.
	CategoryInteraction
	// CategoryController is a controller that broke the protocol.
	CategoryController
)

var (
	// ErrInteraction marks errors the user can fix: missing programs,
	// unusable overrides, a controller that cannot be started.
	ErrInteraction = errors.New("interaction error")

	// ErrController marks protocol violations by the controller.
	ErrController = errors.New("controller error")

	// ErrInternal marks broken engine invariants.
	ErrInternal = errors.New("internal error")
)

type (
	// Category groups fatal errors by who has to act on them.
	Category int

	// InteractionError reports a discovery failure the user can act on.
	InteractionError struct {
		Message     string
		Suggestions []string
		Cause       error
		// Issue selects the guidance shown below the message.
		Issue issue.Id
	}

	// ControllerError reports a malformed or unexpected request.
	ControllerError struct {
		Message string
		Cause   error
	}

	// InternalError reports an engine defect.
	InternalError struct {
		Message string
		Cause   error
	}
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryInteraction:
		return "interaction"
	case CategoryController:
		return "controller"
	default:
		return "internal"
	}
}

// Interactionf returns an InteractionError with a formatted message.
func Interactionf(format string, args ...any) *InteractionError {
	return &InteractionError{Message: fmt.Sprintf(format, args...)}
}

// Controllerf returns a ControllerError with a formatted message.
func Controllerf(format string, args ...any) *ControllerError {
	return &ControllerError{Message: fmt.Sprintf(format, args...)}
}

// Internalf returns an InternalError with a formatted message.
func Internalf(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *InteractionError) Error() string {
	return joinCause(e.Message, e.Cause)
}

// Is matches ErrInteraction.
func (e *InteractionError) Is(target error) bool {
	return target == ErrInteraction
}

// Unwrap returns the underlying cause, if any.
func (e *InteractionError) Unwrap() error {
	return e.Cause
}

// WithSuggestion appends a hint shown below the message.
func (e *InteractionError) WithSuggestion(s string) *InteractionError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// WithIssue attaches catalog guidance.
func (e *InteractionError) WithIssue(id issue.Id) *InteractionError {
	e.Issue = id
	return e
}

// Wrap sets the underlying cause.
func (e *InteractionError) Wrap(err error) *InteractionError {
	e.Cause = err
	return e
}

// Wrap sets the underlying cause.
func (e *ControllerError) Wrap(err error) *ControllerError {
	e.Cause = err
	return e
}

// Error implements the error interface.
func (e *ControllerError) Error() string {
	return joinCause(e.Message, e.Cause)
}

// Is matches ErrController.
func (e *ControllerError) Is(target error) bool {
	return target == ErrController
}

// Unwrap returns the underlying cause, if any.
func (e *ControllerError) Unwrap() error {
	return e.Cause
}

// Wrap sets the underlying cause.
func (e *InternalError) Wrap(err error) *InternalError {
	e.Cause = err
	return e
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return joinCause(e.Message, e.Cause)
}

// Is matches ErrInternal.
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// Unwrap returns the underlying cause, if any.
func (e *InternalError) Unwrap() error {
	return e.Cause
}

// InRequest prefixes a controller error with the request it occurred in.
// Errors of other categories are returned unchanged.
func InRequest(err error, index int, request string) error {
	var ce *ControllerError
	if !errors.As(err, &ce) {
		return err
	}
	return &ControllerError{
		Message: fmt.Sprintf("in request #%d %q", index, strings.TrimSpace(request)),
		Cause:   err,
	}
}

// Classify reports which category err belongs to. Errors that carry no
// category are treated as internal.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryInternal
	case errors.Is(err, ErrController):
		return CategoryController
	case errors.Is(err, ErrInteraction),
		errors.Is(err, config.ErrInvalidOverride),
		errors.Is(err, config.ErrMalformedLine),
		errors.Is(err, context.Canceled):
		return CategoryInteraction
	default:
		return CategoryInternal
	}
}

// Suggestions collects every hint attached to interaction errors in err's
// chain.
func Suggestions(err error) []string {
	var out []string
	for err != nil {
		if ie, ok := err.(*InteractionError); ok {
			out = append(out, ie.Suggestions...)
		}
		err = errors.Unwrap(err)
	}
	return out
}

// Guidance returns the catalog issue that best explains err: one attached to
// the error itself, else the generic entry for its category.
func Guidance(err error) *issue.Issue {
	if i, ok := issue.IssueOf(err); ok {
		return i
	}
	var ie *InteractionError
	if errors.As(err, &ie) && ie.Issue != 0 {
		if i := issue.Get(ie.Issue); i != nil {
			return i
		}
	}
	if errors.Is(err, config.ErrInvalidOverride) || errors.Is(err, config.ErrMalformedLine) {
		return issue.Get(issue.ConfigInvalidId)
	}
	switch Classify(err) {
	case CategoryInteraction:
		return issue.Get(issue.InteractionFailedId)
	case CategoryController:
		return issue.Get(issue.ControllerMisbehavedId)
	default:
		return issue.Get(issue.InternalErrorId)
	}
}

func joinCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	if msg == "" {
		return cause.Error()
	}
	return msg + ": " + cause.Error()
}
