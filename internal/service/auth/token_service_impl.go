package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskvault/taskvault-api/internal/config"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/logger"
	"github.com/taskvault/taskvault-api/internal/store"
)

// hmacTokenService is an implementation of TokenService using HMAC-SHA
// signing, backed by a UserStore for the stored-session cross-check.
type hmacTokenService struct {
	signingKey []byte
	userStore  store.UserStore
	timeFunc   func() time.Time // Injectable for testing
}

// sessionClaims defines the structure of the JWT claims we use.
// Sessions carry no expiry claim; their lifetime ends when the stored
// session entry is removed.
type sessionClaims struct {
	UserID uuid.UUID `json:"uid"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

// Ensure hmacTokenService implements TokenService interface
var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a new token service using HMAC-SHA signing.
func NewTokenService(cfg config.AuthConfig, userStore store.UserStore) (TokenService, error) {
	// Validate that the secret meets minimum length requirements
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	if userStore == nil {
		return nil, fmt.Errorf("user store is required")
	}

	return &hmacTokenService{
		signingKey: []byte(cfg.JWTSecret),
		userStore:  userStore,
		timeFunc:   time.Now,
	}, nil
}

// Issue creates a signed session token and records it in the user's
// session list. The session append is a single atomic write against the
// user's row.
func (s *hmacTokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := sessionClaims{
		UserID: userID,
		Scope:  domain.ScopeAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID.String(),
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.New().String(), // Unique token ID
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign session token",
			"error", err,
			"user_id", userID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign session token with HMAC-SHA256: %w", err)
	}

	session := domain.Session{Scope: domain.ScopeAuth, Token: signedToken}
	if err := s.userStore.AppendSession(ctx, userID, session); err != nil {
		log.Error("failed to record session", "error", err, "user_id", userID)
		return "", fmt.Errorf("failed to record session: %w", err)
	}

	return signedToken, nil
}

// Verify validates a session token and resolves it to its user.
// The signature check runs first so forged tokens are rejected before any
// storage lookup; the stored-session check runs last and is what makes a
// logged-out token fail despite its still-valid signature.
func (s *hmacTokenService) Verify(ctx context.Context, tokenString string) (*domain.User, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&sessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		// Malformed input is a normal rejection, not a fault; the caller
		// only ever sees ErrInvalidToken.
		log.Debug("session token validation failed", "error", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		log.Debug("session token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	if claims.Scope != domain.ScopeAuth {
		log.Debug("session token validation failed: wrong scope",
			"expected", domain.ScopeAuth,
			"actual", claims.Scope)
		return nil, ErrInvalidToken
	}

	if claims.UserID == uuid.Nil {
		log.Debug("session token validation failed: empty user ID")
		return nil, ErrInvalidToken
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		log.Debug("session token resolved to unknown user",
			"error", err,
			"user_id", claims.UserID)
		return nil, ErrInvalidToken
	}

	if !user.HasSession(domain.ScopeAuth, tokenString) {
		log.Debug("session token no longer in session list",
			"user_id", claims.UserID,
			"token_id", claims.ID)
		return nil, ErrSessionRevoked
	}

	return user, nil
}

// Revoke removes the session entry matching the token from the user's
// session list in a single atomic write.
func (s *hmacTokenService) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.userStore.RemoveSession(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
