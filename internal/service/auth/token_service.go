// Package auth provides session-token issuance, verification, and
// revocation, plus password comparison.
package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
)

// TokenService defines operations for managing session tokens.
//
// Tokens are signed so forged input can be rejected without touching
// storage, and additionally recorded in the owning user's session list so
// an individual session can be revoked. A signature cannot be invalidated
// cryptographically short of rotating the key, so revocation works by
// removing the stored entry: Verify accepts a token only while both the
// signature and the stored entry check out.
type TokenService interface {
	// Issue creates a signed session token bound to the given user ID,
	// appends it to the user's session list, and returns the raw token
	// string to hand to the caller.
	Issue(ctx context.Context, userID uuid.UUID) (string, error)

	// Verify checks the token's signature, re-derives the user ID from its
	// claims, and confirms the token still appears in that user's session
	// list. Returns the resolved user on success.
	// Returns ErrInvalidToken for malformed input, a bad signature, an
	// unexpected scope, or an unknown user; returns ErrSessionRevoked when
	// the signature is valid but the session entry is gone.
	Verify(ctx context.Context, token string) (*domain.User, error)

	// Revoke removes the matching session entry from the user's session
	// list. Revoking an absent token is not an error, so Revoke is
	// idempotent per token.
	Revoke(ctx context.Context, userID uuid.UUID, token string) error
}
