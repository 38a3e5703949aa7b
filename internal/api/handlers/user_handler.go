package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog/log"

	"github.com/updoot/updoot-be/internal/auth"
	"github.com/updoot/updoot-be/internal/services"
	"github.com/updoot/updoot-be/internal/storage"
)

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	service  services.UserServiceProvider
	sessions *scs.SessionManager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, sessions *scs.SessionManager) *UserHandler {
	return &UserHandler{service: service, sessions: sessions}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// Register handles new user registration and logs the new account in.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, ferrs, err := h.service.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		respondInternal(w)
		return
	}
	if ferrs != nil {
		respondFieldErrors(w, ferrs)
		return
	}

	if err := auth.LoginSession(r.Context(), h.sessions, user.ID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to establish session")
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Login handles user authentication.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, ferrs, err := h.service.Login(r.Context(), payload.UsernameOrEmail, payload.Password)
	if err != nil {
		log.Error().Err(err).Str("identifier", payload.UsernameOrEmail).Msg("Login failed")
		respondInternal(w)
		return
	}
	if ferrs != nil {
		respondFieldErrors(w, ferrs)
		return
	}

	if err := auth.LoginSession(r.Context(), h.sessions, user.ID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to establish session")
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout destroys the caller's session.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.LogoutSession(r.Context(), h.sessions); err != nil {
		log.Error().Err(err).Msg("Failed to destroy session")
		respondJSON(w, http.StatusOK, map[string]any{"ok": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Me returns the currently authenticated user, or null for anonymous
// callers.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Session references an account that is gone.
			respondJSON(w, http.StatusOK, map[string]any{"user": nil})
			return
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load session user")
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// ForgotPassword issues a password-reset email. The response never reveals
// whether the address belongs to an account.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), payload.Email); err != nil {
		log.Error().Err(err).Msg("Failed to issue reset token")
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ChangePassword redeems a reset token and logs the user in with the new
// credential.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, ferrs, err := h.service.ChangePassword(r.Context(), payload.Token, payload.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("Failed to change password")
		respondInternal(w)
		return
	}
	if ferrs != nil {
		respondFieldErrors(w, ferrs)
		return
	}

	// Log in user after change password.
	if err := auth.LoginSession(r.Context(), h.sessions, user.ID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to establish session")
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}
