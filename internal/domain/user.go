package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// ScopeAuth is the only session scope issued today. The scope tag is stored
// alongside each token so additional scopes can be introduced without a
// schema change.
const ScopeAuth = "auth"

// Session is one entry in a user's session list: the scope the token was
// issued for plus the exact signed token string. A token is only honored
// while its entry remains in the list, which is what makes logout effective
// even though the token's signature stays valid.
type Session struct {
	Scope string `json:"scope"`
	Token string `json:"token"`
}

// User represents a registered account.
// It contains essential identity information and authentication details.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	Sessions       []Session `json:"-"` // Never expose session tokens in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and password.
// It generates a new UUID for the user ID, trims the email, and sets the
// creation/update timestamps. The session list starts empty.
// Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(email, password string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Email:     strings.TrimSpace(email),
		Password:  password, // Plaintext password - must be hashed before storage
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	// During user creation we validate the provided plaintext password.
	if u.Password != "" {
		if len(u.Password) < 6 {
			return ErrPasswordTooShort
		}
		// bcrypt's practical input limit
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else {
		// When no plaintext password is provided, the user must have a
		// hashed password (the case for existing users loaded from storage).
		if u.HashedPassword == "" {
			return ErrEmptyPassword
		}
	}

	return nil
}

// HasSession reports whether the session list contains an entry matching
// both the scope and the exact token string.
func (u *User) HasSession(scope, token string) bool {
	for _, s := range u.Sessions {
		if s.Scope == scope && s.Token == token {
			return true
		}
	}
	return false
}

// AddSession appends a session entry to the user's session list and bumps
// the update timestamp. Multiple concurrent sessions are expected; entries
// are never deduplicated.
func (u *User) AddSession(scope, token string) {
	u.Sessions = append(u.Sessions, Session{Scope: scope, Token: token})
	u.UpdatedAt = time.Now().UTC()
}

// RemoveSession removes every session entry whose token matches the given
// token string. Removing an absent token is a no-op.
func (u *User) RemoveSession(token string) {
	kept := u.Sessions[:0]
	for _, s := range u.Sessions {
		if s.Token != token {
			kept = append(kept, s)
		}
	}
	u.Sessions = kept
	u.UpdatedAt = time.Now().UTC()
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	// Check for domain part after @
	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 { // minimum would be "a.b"
		return false
	}

	// Check for dot in domain, but not immediately after @ and not at the end
	dotIndex := strings.IndexByte(domainPart, '.')
	if dotIndex <= 0 || dotIndex == len(domainPart)-1 {
		return false
	}

	return true
}
