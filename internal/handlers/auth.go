package handlers

import (
	"net/http"
	"strings"
	"time"

	"photo-culler/internal/logging"
	"photo-culler/internal/metrics"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "photo_culler_session"

// bcrypt ignores input past 72 bytes.
const (
	minPasswordLength = 6
	maxPasswordLength = 72
)

// PasswordRequest carries a password for setup and login
type PasswordRequest struct {
	Password string `json:"password"`
}

// PasswordChangeRequest represents a request to change the password
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse represents the response from authentication endpoints
type AuthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

func validatePassword(password string) string {
	switch {
	case len(password) < minPasswordLength:
		return "Password must be at least 6 characters"
	case len(password) > maxPasswordLength:
		return "Password must not exceed 72 characters"
	}
	return ""
}

func sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, sessionCookie("", time.Unix(0, 0)))
}

// CheckSetupRequired reports whether auth is on and no password exists yet
func (h *Handlers) CheckSetupRequired(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{
		"authEnabled": h.authEnabled,
		"needsSetup":  h.authEnabled && !h.db.HasUsers(r.Context()),
	})
}

// Setup creates the initial password
func (h *Handlers) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db.HasUsers(ctx) {
		http.Error(w, "Setup already completed", http.StatusForbidden)
		return
	}

	var req PasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := h.db.CreateUser(ctx, req.Password); err != nil {
		logging.Error("Failed to create user: %v", err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	logging.Info("Initial password configured")

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{Success: true, Message: "Password configured successfully"})
}

// Login authenticates with the password and starts a session
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.db.ValidatePassword(ctx, req.Password)
	if err != nil {
		logging.Warn("Failed login attempt")
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}
	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()

	session, err := h.db.CreateSession(ctx, user.ID)
	if err != nil {
		logging.Error("Failed to create session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, sessionCookie(session.Token, session.ExpiresAt))
	logging.Info("User logged in, session expires in %v", h.db.GetSessionDuration())

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success:   true,
		ExpiresIn: int(h.db.GetSessionDuration().Seconds()),
	})
}

// Logout ends the current session
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		// Best effort; the cookie is cleared either way.
		if err := h.db.DeleteSession(r.Context(), cookie.Value); err != nil {
			logging.Error("failed to delete session during logout: %v", err)
		}
	}

	clearSessionCookie(w)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{Success: true, Message: "Logged out successfully"})
}

// CheckAuth verifies the current session
func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	if !h.authEnabled {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, AuthResponse{Success: true, Message: "Authentication disabled"})
		return
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.db.ValidateSession(r.Context(), cookie.Value); err != nil {
		clearSessionCookie(w)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success:   true,
		ExpiresIn: int(h.db.GetSessionDuration().Seconds()),
	})
}

// isPublicPath lists the routes reachable without a session
func isPublicPath(path string) bool {
	switch path {
	case "/health", "/healthz", "/livez", "/readyz", "/version":
		return true
	}
	return strings.HasPrefix(path, "/api/auth/")
}

// AuthMiddleware protects routes that require authentication. It passes
// everything through when authentication is disabled.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authEnabled || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()

		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if _, err := h.db.ValidateSession(ctx, cookie.Value); err != nil {
			clearSessionCookie(w)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		// Sliding expiration
		if err := h.db.ExtendSession(ctx, cookie.Value); err != nil {
			logging.Debug("Failed to extend session: %v", err)
		} else {
			http.SetCookie(w, sessionCookie(cookie.Value, time.Now().Add(h.db.GetSessionDuration())))
		}

		next.ServeHTTP(w, r)
	})
}

// ChangePassword handles password change requests
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PasswordChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.db.ValidatePassword(ctx, req.CurrentPassword); err != nil {
		logging.Warn("Failed password change attempt - invalid current password")
		http.Error(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	if msg := validatePassword(req.NewPassword); msg != "" {
		http.Error(w, "New "+strings.ToLower(msg[:1])+msg[1:], http.StatusBadRequest)
		return
	}

	if err := h.db.UpdatePassword(ctx, req.NewPassword); err != nil {
		logging.Error("Failed to update password: %v", err)
		http.Error(w, "Failed to update password", http.StatusInternalServerError)
		return
	}

	logging.Info("Password changed successfully")

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{Success: true, Message: "Password updated successfully"})
}

// Keepalive extends the current session
func (h *Handlers) Keepalive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		http.Error(w, "No session", http.StatusUnauthorized)
		return
	}

	if _, err := h.db.ValidateSession(ctx, cookie.Value); err != nil {
		http.Error(w, "Invalid session", http.StatusUnauthorized)
		return
	}

	if err := h.db.ExtendSession(ctx, cookie.Value); err != nil {
		logging.Debug("Failed to extend session in keepalive: %v", err)
		http.Error(w, "Failed to extend session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, sessionCookie(cookie.Value, time.Now().Add(h.db.GetSessionDuration())))

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success:   true,
		ExpiresIn: int(h.db.GetSessionDuration().Seconds()),
	})
}
