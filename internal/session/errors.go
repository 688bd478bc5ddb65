package session

import (
	"errors"

	"salt_portal/internal/gateway"
)

var (
	// ErrCorruptSession marks a stored or live session that can no longer
	// be trusted. It is resolved by clearing to anonymous, never shown.
	ErrCorruptSession = errors.New("session: corrupt or unrefreshable session")
	// ErrTransitionInFlight is returned when an auth transition is
	// already pending for this session.
	ErrTransitionInFlight = errors.New("session: authentication already in progress")
	// ErrSuperseded is returned by a sign-in that resolved after the
	// session was logged out.
	ErrSuperseded = errors.New("session: signed out while authentication was in progress")
	// ErrInvalidState is returned when an operation does not apply to the
	// current state, e.g. requesting an OTP while signed in.
	ErrInvalidState = errors.New("session: operation not allowed in current state")
)

const (
	msgGeneric   = "Something went wrong. Please try again."
	msgNetwork   = "Unable to reach the server. Check your connection and try again."
	msgExpired   = "Your session has expired. Please sign in again."
	msgInFlight  = "Sign-in is already in progress."
	msgSignedIn  = "You are already signed in."
	msgSignedOut = "You signed out before sign-in finished."
)

// UserMessage maps err to the text shown in the inline error banner.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *gateway.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}

	var be *gateway.BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}

	switch {
	case errors.Is(err, ErrTransitionInFlight):
		return msgInFlight
	case errors.Is(err, ErrInvalidState):
		return msgSignedIn
	case errors.Is(err, ErrSuperseded):
		return msgSignedOut
	case errors.Is(err, gateway.ErrUnauthorized):
		return msgExpired
	case errors.Is(err, gateway.ErrNetwork):
		return msgNetwork
	default:
		return msgGeneric
	}
}
