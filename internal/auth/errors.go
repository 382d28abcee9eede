package auth

import "errors"

// Session and credential failures surfaced by the auth core. The HTTP
// layer translates these into response envelopes.
var (
	// ErrAuthenticationFailed covers both unknown-username and
	// wrong-password logins so callers cannot enumerate accounts.
	ErrAuthenticationFailed = errors.New("invalid credentials")

	// ErrInvalidSession means the refresh token is unknown or revoked.
	ErrInvalidSession = errors.New("invalid refresh token")

	// ErrSessionExpired means the refresh token was found but is past
	// its expiry; detection revokes it as a side effect.
	ErrSessionExpired = errors.New("refresh token expired")

	// ErrTooManyAttempts means the login throttle budget is exhausted.
	ErrTooManyAttempts = errors.New("too many login attempts")
)
