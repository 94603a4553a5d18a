package auth

import "errors"

// Identity and session errors. Each maps to one user-facing message.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrSessionExpired      = errors.New("session expired")
	ErrUnknownMunicipality = errors.New("unknown municipality")
)

// User-facing messages. This set is closed.
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgAccountDisabled    = "account disabled"
	MsgNotAuthorized      = "not authorized"
	MsgSessionExpired     = "session expired"
)

// Message maps err to a user-facing message. Anything unrecognized becomes
// MsgNotAuthorized so internal details never leak.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, ErrAccountDisabled):
		return MsgAccountDisabled
	case errors.Is(err, ErrSessionExpired):
		return MsgSessionExpired
	default:
		return MsgNotAuthorized
	}
}
