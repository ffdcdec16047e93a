package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tablemate/tablemate-web/backend"
	"github.com/tablemate/tablemate-web/internal/errors"
)

type dinnerOptInRequest struct {
	DinnerID        string `json:"dinner_id" validate:"required"`
	BudgetCategory  string `json:"budget_category"`
	DietaryCategory string `json:"dietary_category"`
}

// HealthHandler is the liveness probe.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// MeHandler returns the signed-in user's profile from the backend.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, sessionID, ok := sessionFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Session expired, please sign in again")
			return
		}

		profile, err := s.client.CurrentUser(r.Context(), sess.AccessToken)
		if err != nil {
			s.handleBackendAuthError(w, r, sessionID, sess, err, "Failed to load profile")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"data": profile})
	}
}

// DinnerOptInHandler books the signed-in user onto a dinner. The preference
// fields default when omitted so a bare booking request still goes through.
func (s *Server) DinnerOptInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, sessionID, ok := sessionFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Session expired, please sign in again")
			return
		}

		var req dinnerOptInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeValidationErrors(w, err)
			return
		}
		if req.BudgetCategory == "" {
			req.BudgetCategory = "medium"
		}
		if req.DietaryCategory == "" {
			req.DietaryCategory = "vegetarian"
		}

		err := s.reconciler.BookDinner(r.Context(), sess.AccessToken, backend.OptInRequest{
			DinnerID:        req.DinnerID,
			BudgetCategory:  req.BudgetCategory,
			DietaryCategory: req.DietaryCategory,
		})
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				writeDetail(w, http.StatusForbidden, "An active subscription is required to book a dinner")
				return
			}
			if errors.Is(err, backend.ErrUnauthorized) {
				s.handleBackendAuthError(w, r, sessionID, sess, err, "Failed to book dinner")
				return
			}
			var apiErr *backend.APIError
			if errors.As(err, &apiErr) {
				writeDetail(w, apiErr.StatusCode, backend.Detail(err, "Failed to book dinner"))
				return
			}
			log.Err(err).Str("dinner_id", req.DinnerID).Msg("dinner opt-in failed")
			writeDetail(w, http.StatusBadGateway, "Failed to book dinner")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "You're booked in! See you at dinner."})
	}
}
