// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskvault/taskvault-api/internal/api/middleware"
	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/logger"
	"github.com/taskvault/taskvault-api/internal/service/auth"
	"github.com/taskvault/taskvault-api/internal/store"
)

// AuthHandler handles account and session API requests.
type AuthHandler struct {
	userStore        store.UserStore
	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	tokenService auth.TokenService,
	passwordVerifier auth.PasswordVerifier,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		userStore:        userStore,
		tokenService:     tokenService,
		passwordVerifier: passwordVerifier,
		logger:           logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /users.
// On success the new session token travels in the X-Auth response header
// and the body carries only the account's identity and email.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error")
		return
	}

	user, err := domain.NewUser(req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Email already in use")
			return
		}
		log.Error("failed to create user", "error", err)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	token, err := h.tokenService.Issue(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to issue session token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to create session")
		return
	}

	log.Info("user registered", "user_id", user.ID)
	w.Header().Set(shared.AuthHeader, token)
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Login handles POST /users/login.
// A wrong email and a wrong password both answer 400 with the same
// message, so callers cannot enumerate registered accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to look up user by email", "error", err)
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid credentials")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.tokenService.Issue(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to issue session token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to create session")
		return
	}

	log.Info("user logged in", "user_id", user.ID)
	w.Header().Set(shared.AuthHeader, token)
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Me handles GET /users/me.
// The authentication middleware has already resolved the token, so this
// is pure session introspection.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusUnauthorized)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Logout handles DELETE /users/me/token.
// It revokes exactly the session token the request authenticated with;
// the user's other sessions stay valid.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusUnauthorized)
		return
	}

	token, ok := middleware.GetToken(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusUnauthorized)
		return
	}

	if err := h.tokenService.Revoke(r.Context(), user.ID, token); err != nil {
		log.Error("failed to revoke session", "error", err, "user_id", user.ID)
		shared.RespondEmpty(w, http.StatusBadRequest)
		return
	}

	log.Info("user logged out", "user_id", user.ID)
	shared.RespondEmpty(w, http.StatusOK)
}
