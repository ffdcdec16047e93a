package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tablemate/tablemate-web/backend"
	"github.com/tablemate/tablemate-web/internal/errors"
	"github.com/tablemate/tablemate-web/session"
)

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginHandler proxies admin credentials to the backend and, on success,
// creates a gateway session holding the issued token pair. The backend's own
// failure message is surfaced to the user verbatim.
func (s *Server) AdminLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := s.validate.Struct(req); err != nil {
			writeValidationErrors(w, err)
			return
		}

		pair, err := s.client.AdminLogin(r.Context(), req.Email, req.Password)
		if err != nil {
			var apiErr *backend.APIError
			if errors.As(err, &apiErr) {
				writeDetail(w, apiErr.StatusCode, backend.Detail(err, "Login failed"))
				return
			}
			log.Err(err).Msg("admin login failed")
			writeDetail(w, http.StatusBadGateway, "Login failed, please try again")
			return
		}

		now := time.Now()
		sessionID := uuid.New().String()
		sess := session.Session{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			Email:        req.Email,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.config.GetSessionTTL()),
		}
		if err := s.store.Put(r.Context(), sessionID, sess); err != nil {
			log.Err(err).Msg("failed to persist session")
			writeDetail(w, http.StatusInternalServerError, "Login failed, please try again")
			return
		}

		s.SetSessionCookie(w, r, sessionID, int(s.config.GetSessionTTL().Seconds()))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
	}
}

// LogoutHandler invalidates the backend session (best effort) and clears the
// gateway session and cookie. Carrying a token past logout is the gap the
// original flows left open; it is closed here.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err == nil && cookie.Value != "" {
			if sess, err := s.store.Get(r.Context(), cookie.Value); err == nil {
				if err := s.client.Logout(r.Context(), sess.AccessToken); err != nil {
					log.Warn().Err(err).Msg("backend logout failed")
				}
			}
			if err := s.store.Clear(r.Context(), cookie.Value); err != nil {
				log.Err(err).Msg("failed to clear session")
			}
		}

		s.ClearSessionCookie(w, r)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

// AdminDashboardHandler returns the signed-in admin's profile summary.
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, sessionID, ok := sessionFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Session expired, please sign in again")
			return
		}

		profile, err := s.client.CurrentUser(r.Context(), sess.AccessToken)
		if err != nil {
			s.handleBackendAuthError(w, r, sessionID, sess, err, "Failed to load dashboard")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"data": profile})
	}
}

// handleBackendAuthError maps a failed authenticated proxy call onto the
// error taxonomy. A 401 clears the stored token so the next request starts
// clean, and is never retried.
func (s *Server) handleBackendAuthError(w http.ResponseWriter, r *http.Request, sessionID string, sess session.Session, err error, fallback string) {
	if errors.Is(err, backend.ErrUnauthorized) {
		// Distinguish a lapsed token from an opaque or revoked one so the
		// client can word the sign-in prompt accordingly.
		expired := session.TokenExpired(sess.AccessToken, time.Now())
		log.Info().Bool("token_expired", expired).Msg("backend rejected stored token")
		_ = s.store.Clear(r.Context(), sessionID)
		s.ClearSessionCookie(w, r)
		detail := "Session invalid, please sign in again"
		if expired {
			detail = "Session expired, please sign in again"
		}
		writeDetail(w, http.StatusUnauthorized, detail)
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		writeDetail(w, apiErr.StatusCode, backend.Detail(err, fallback))
		return
	}

	log.Err(err).Msg(fallback)
	writeDetail(w, http.StatusBadGateway, fallback)
}

// writeValidationErrors surfaces malformed input as inline field errors,
// caught before any network call is made.
func writeValidationErrors(w http.ResponseWriter, err error) {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			name := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				fields[name] = name + " is required"
			case "email":
				fields[name] = "must be a valid email address"
			default:
				fields[name] = "invalid value"
			}
		}
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Validation failed", "fields": fields})
}
