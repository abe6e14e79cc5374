package action

import (
	"context"
	"errors"
	"net/url"
)

// SignInPath is where unauthenticated full-context actions send the client.
const SignInPath = "/sign-in"

var (
	// ErrUnauthenticated is the fault raised when a user-scoped action runs without a
	// valid session.
	ErrUnauthenticated = errors.New("user is not authenticated")
	// ErrUserNotFound is the fault raised when the session refers to a user that does not
	// exist or was deleted.
	ErrUserNotFound = errors.New("user not found")
)

// Input is the raw key/value submission of an action.
type Input = url.Values

// Kind discriminates an [Outcome].
type Kind uint8

const (
	Proceed Kind = iota
	ValidationFailed
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Proceed:
		return "proceed"
	case ValidationFailed:
		return "validation_failed"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Outcome is what an action returns on its result and redirect channels.
type Outcome[R any] struct {
	Kind     Kind
	Value    R
	Message  string
	Location string
}

// Continue wraps a handler result.
func Continue[R any](v R) Outcome[R] {
	return Outcome[R]{Kind: Proceed, Value: v}
}

// Invalid reports a validation failure with a user-facing message.
func Invalid[R any](message string) Outcome[R] {
	return Outcome[R]{Kind: ValidationFailed, Message: message}
}

// RedirectTo sends the client to location.
func RedirectTo[R any](location string) Outcome[R] {
	return Outcome[R]{Kind: Redirect, Location: location}
}

// Action is a guarded server action.
type Action[R any] func(ctx context.Context, in Input) (Outcome[R], error)
