package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, carries an
	// unexpected scope, or its signature doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrSessionRevoked indicates the token's signature is valid but the
	// token no longer appears in its account's session list, i.e. the
	// session was logged out.
	ErrSessionRevoked = errors.New("authentication token has been revoked")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")
)
