package auth

import (
	"time"

	"github.com/taskvault/taskvault-api/internal/store"
)

// NewTestTokenService creates a token service with an injectable time
// function for predictable testing. Not for production use; it skips the
// secret length check so tests can use short, readable secrets.
func NewTestTokenService(
	secret string,
	userStore store.UserStore,
	timeFunc func() time.Time,
) TokenService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &hmacTokenService{
		signingKey: []byte(secret),
		userStore:  userStore,
		timeFunc:   timeFunc,
	}
}
