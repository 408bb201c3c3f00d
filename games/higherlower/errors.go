/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import "errors"

// Kind classifies an engine error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindPrecondition
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindPrecondition:
		return "precondition"
	case KindExhausted:
		return "exhausted"
	default:
		return "internal"
	}
}

// Error is returned by every engine command. Message is safe to show to
// players.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrSessionNotFound = &Error{Kind: KindNotFound, Message: "Game code not found."}
	ErrPlayerNotFound  = &Error{Kind: KindNotFound, Message: "Player not found."}
	ErrNotAuthorized   = &Error{Kind: KindAuthorization, Message: "Not authorized."}
	ErrLobbyLocked     = &Error{Kind: KindPrecondition, Message: "Lobby is locked."}
	ErrGuessesClosed   = &Error{Kind: KindPrecondition, Message: "Guesses are closed."}
	ErrRoundInProgress = &Error{Kind: KindPrecondition, Message: "A round is already in progress."}
	ErrCodesExhausted  = &Error{Kind: KindExhausted, Message: "Unable to generate unique code."}
	ErrInternal        = &Error{Kind: KindInternal, Message: "Internal error."}
	ErrEngineStopped   = &Error{Kind: KindInternal, Message: "Game server is shutting down."}
)

// Configuration errors returned by New.
var (
	ErrNilConfig      = errors.New("config cannot be nil")
	ErrNilBroadcaster = errors.New("broadcaster cannot be nil")
)

func invalid(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf reports the Kind of err, or KindInternal for errors the engine did
// not produce.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
