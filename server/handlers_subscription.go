package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tablemate/tablemate-web/backend"
	"github.com/tablemate/tablemate-web/internal/errors"
	"github.com/tablemate/tablemate-web/internal/utils"
	"github.com/tablemate/tablemate-web/subscription"
)

type checkoutRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// PlansHandler lists the subscription plans. The catalogue is static; no
// backend call is made.
func (s *Server) PlansHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": subscription.Plans()})
	}
}

// CheckoutHandler starts a hosted checkout for the requested plan and hands
// the provider URL back for the browser to follow. One redirect per call.
func (s *Server) CheckoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, sessionID, ok := sessionFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Session expired, please sign in again")
			return
		}

		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeValidationErrors(w, err)
			return
		}

		checkoutURL, err := s.reconciler.InitiateCheckout(r.Context(), req.PlanID, sess.AccessToken)
		if err != nil {
			switch {
			case errors.Is(err, errors.ErrUnknownPlan):
				writeDetail(w, http.StatusBadRequest, "Unknown subscription plan")
			case errors.Is(err, errors.ErrNoCheckoutURL):
				writeDetail(w, http.StatusBadGateway, "No checkout URL returned from server")
			case errors.Is(err, backend.ErrUnauthorized):
				s.handleBackendAuthError(w, r, sessionID, sess, err, "Failed to process subscription. Please try again.")
			default:
				log.Err(err).Str("plan", req.PlanID).Msg("checkout initiation failed")
				writeDetail(w, http.StatusBadGateway, "Failed to process subscription. Please try again.")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"checkout_url": checkoutURL})
	}
}

// SubscriptionSuccessHandler is the landing page the payment provider
// redirects back to. It absorbs any token handed back in the URL, performs
// the single status lookup, and renders the terminal outcome. Reloading the
// page repeats the lookup and lands on the same answer.
func (s *Server) SubscriptionSuccessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.ensureSessionID(w, r)
		urlToken := r.URL.Query().Get("access_token")
		checkoutSessionID := r.URL.Query().Get("session_id")

		outcome := s.reconciler.ReconcileSuccess(r.Context(), sessionID, urlToken, checkoutSessionID)
		if outcome.Status == subscription.StatusUnauthorized {
			s.ClearSessionCookie(w, r)
		}

		data := successPageData{
			Title:   "Payment Status",
			Status:  outcome.Status.String(),
			Message: successMessage(outcome),
		}
		if sub := utils.Value(outcome.Subscription); outcome.Status == subscription.StatusActive {
			data.SubscriptionID = sub.ID
			if sub.CurrentPeriodEnd > 0 {
				data.RenewsOn = time.Unix(sub.CurrentPeriodEnd, 0).Format("2 January 2006")
			}
		}
		s.renderTemplate(w, "success.html", data)
	}
}

// SubscriptionCancelHandler is the landing page for an abandoned checkout.
// Nothing is looked up and nothing stored is touched.
func (s *Server) SubscriptionCancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := cancelPageData{
			Title:   "Subscription Cancelled",
			Message: "Your payment was cancelled. You can try again anytime.",
		}
		s.renderTemplate(w, "cancel.html", data)
	}
}

// successMessage maps a reconciliation outcome to the sentence shown on the
// landing page.
func successMessage(outcome subscription.Outcome) string {
	switch outcome.Status {
	case subscription.StatusActive:
		return "Payment successful! Thank you."
	case subscription.StatusUnauthorized:
		return "Session expired or invalid. Please sign in again"
	case subscription.StatusFailed:
		return "Payment failed or not completed."
	case subscription.StatusError:
		if errors.Is(outcome.Err, errors.ErrMissingSession) {
			return "No payment session found. If you completed a payment, please contact support."
		}
		return "Could not verify your payment right now. Please refresh in a moment."
	default:
		return "Verifying your payment..."
	}
}
