// Package subscription implements the session/payment reconciler: the logic
// that combines the locally held bearer token with the payment provider's
// reported state to decide what to persist and what to display.
package subscription

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tablemate/tablemate-web/backend"
	gwerrors "github.com/tablemate/tablemate-web/internal/errors"
	"github.com/tablemate/tablemate-web/internal/utils"
	"github.com/tablemate/tablemate-web/notify"
	"github.com/tablemate/tablemate-web/session"
)

const activeSubscriptionStatus = "active"

// BackendAPI is the slice of the backend client the reconciler needs.
type BackendAPI interface {
	CreateCheckoutSession(ctx context.Context, token string, params backend.CheckoutParams) (backend.CheckoutSession, error)
	SessionInfo(ctx context.Context, token, checkoutSessionID string) (backend.SessionInfo, error)
	CurrentUser(ctx context.Context, token string) (backend.UserProfile, error)
	OptInDinner(ctx context.Context, token string, req backend.OptInRequest) error
}

// Reconciler owns the lifecycle of the stored token and a pending checkout
// attempt. All operations are single network calls, cancellable through ctx,
// with no retries: every non-pending outcome is terminal.
type Reconciler struct {
	store      session.Store
	api        BackendAPI
	notifier   notify.Sender
	devMode    bool
	baseURL    string
	sessionTTL time.Duration
	nowTime    func() time.Time // nowTime function (injectable for testing)
}

// ReconcilerOption defines a function type to modify the Reconciler instance.
type ReconcilerOption func(*Reconciler)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.nowTime = nowFunc
	}
}

// WithNotifier sets the email sender used on activation.
func WithNotifier(sender notify.Sender) ReconcilerOption {
	return func(r *Reconciler) {
		r.notifier = sender
	}
}

// WithDevelopmentMode routes checkout-session creation at the provider's test
// environment.
func WithDevelopmentMode(dev bool) ReconcilerOption {
	return func(r *Reconciler) {
		r.devMode = dev
	}
}

// WithSessionTTL sets the lifetime given to sessions created when a token
// arrives through a redirect without an existing gateway session.
func WithSessionTTL(ttl time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.sessionTTL = ttl
	}
}

// WithRedirectBaseURL sets the public base URL used to build the success and
// cancel landing URLs handed to the payment provider.
func WithRedirectBaseURL(baseURL string) ReconcilerOption {
	return func(r *Reconciler) {
		r.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewReconciler initializes a new Reconciler with required dependencies.
func NewReconciler(store session.Store, api BackendAPI, options ...ReconcilerOption) (*Reconciler, error) {
	if store == nil {
		return nil, errors.New("[NewReconciler] session store is required")
	}
	if api == nil {
		return nil, errors.New("[NewReconciler] backend API is required")
	}

	r := &Reconciler{
		store:      store,
		api:        api,
		notifier:   notify.NewNoopSender(),
		sessionTTL: 24 * time.Hour,
		nowTime:    time.Now,
	}

	for _, opt := range options {
		opt(r)
	}

	return r, nil
}

// AbsorbIncomingToken decides which bearer token is authoritative for this
// page view. A token arriving in the redirect URL supersedes the stored one
// and is persisted with a single write; otherwise the stored token is used
// and nothing is written. Neither present means the downstream call goes out
// unauthenticated and the backend is expected to reject it.
func (r *Reconciler) AbsorbIncomingToken(ctx context.Context, gatewaySessionID, urlToken string) (string, error) {
	stored, err := r.store.Get(ctx, gatewaySessionID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return "", errors.Wrap(err, "[AbsorbIncomingToken] store.Get")
	}

	if urlToken == "" {
		return stored.AccessToken, nil
	}

	now := r.nowTime()
	stored.AccessToken = urlToken
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.ExpiresAt.IsZero() {
		stored.ExpiresAt = now.Add(r.sessionTTL)
	}
	if err := r.store.Put(ctx, gatewaySessionID, stored); err != nil {
		return "", errors.Wrap(err, "[AbsorbIncomingToken] store.Put")
	}
	return urlToken, nil
}

// QueryPaymentStatus issues the single status lookup for one checkout
// session and classifies the result. Idempotent: the same session id and
// token always reconcile to the same terminal status.
func (r *Reconciler) QueryPaymentStatus(ctx context.Context, checkoutSessionID, token string) Outcome {
	if checkoutSessionID == "" {
		return Outcome{Status: StatusError, Err: gwerrors.ErrMissingSession}
	}

	info, err := r.api.SessionInfo(ctx, token, checkoutSessionID)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return Outcome{Status: StatusUnauthorized}
		}
		return Outcome{Status: StatusError, Err: err}
	}

	sub := info.Subscription
	return Outcome{Status: statusFromBackend(sub.Status), Subscription: &sub}
}

// ReconcileSuccess is the success-landing flow: absorb any token handed back
// through the redirect, query the payment outcome once, and apply the
// outcome to the stored session. A 401 clears the stored token so the next
// page load starts clean; an activation triggers a best-effort email.
func (r *Reconciler) ReconcileSuccess(ctx context.Context, gatewaySessionID, urlToken, checkoutSessionID string) Outcome {
	token, err := r.AbsorbIncomingToken(ctx, gatewaySessionID, urlToken)
	if err != nil {
		return Outcome{Status: StatusError, Err: err}
	}

	outcome := r.QueryPaymentStatus(ctx, checkoutSessionID, token)

	switch outcome.Status {
	case StatusUnauthorized:
		if err := r.store.Clear(ctx, gatewaySessionID); err != nil {
			log.Err(err).Str("session_id", gatewaySessionID).Msg("failed to clear rejected token")
		}
	case StatusActive:
		r.notifyActivation(ctx, gatewaySessionID, outcome.Subscription)
	}

	log.Info().
		Str("checkout_session", checkoutSessionID).
		Str("status", outcome.Status.String()).
		Msg("payment reconciliation complete")
	return outcome
}

func (r *Reconciler) notifyActivation(ctx context.Context, gatewaySessionID string, sub *backend.SubscriptionInfo) {
	stored, err := r.store.Get(ctx, gatewaySessionID)
	if err != nil || stored.Email == "" {
		return // no address on record, nothing to send
	}
	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)
	if err := r.notifier.SendSubscriptionActive(ctx, stored.Email, sub.ID, periodEnd); err != nil {
		log.Err(err).Str("email", stored.Email).Msg("failed to send activation email")
	}
}

// InitiateCheckout creates a checkout session for planID and returns the
// provider URL the browser must be sent to. At most one redirect per call;
// the plan's price is validated by the backend, not here.
func (r *Reconciler) InitiateCheckout(ctx context.Context, planID, token string) (string, error) {
	plan, ok := PlanByID(planID)
	if !ok {
		return "", errors.Wrapf(gwerrors.ErrUnknownPlan, "plan %q", planID)
	}

	params := backend.CheckoutParams{
		PriceID:       plan.PriceID,
		IsDevelopment: r.devMode,
	}
	if r.baseURL != "" {
		params.SuccessURL = r.baseURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}"
		params.CancelURL = r.baseURL + "/subscription/cancel"
	}

	cs, err := r.api.CreateCheckoutSession(ctx, token, params)
	if err != nil {
		return "", errors.Wrap(err, "[InitiateCheckout] CreateCheckoutSession")
	}

	redirectURL := utils.FirstNonEmpty(cs.CheckoutURL, cs.SessionURL)
	if redirectURL == "" {
		return "", gwerrors.ErrNoCheckoutURL
	}

	log.Info().Str("plan", plan.ID).Msg("checkout session created")
	return redirectURL, nil
}

// EnsureSubscribed reports whether the token's user already holds an active
// subscription, per the backend's user record.
func (r *Reconciler) EnsureSubscribed(ctx context.Context, token string) (bool, error) {
	profile, err := r.api.CurrentUser(ctx, token)
	if err != nil {
		return false, errors.Wrap(err, "[EnsureSubscribed] CurrentUser")
	}
	return profile.SubscriptionStatus == activeSubscriptionStatus, nil
}

// BookDinner is the direct-booking convenience path: confirm the
// subscription is active, then opt in to the dinner. Two sequential calls,
// no parallelism.
func (r *Reconciler) BookDinner(ctx context.Context, token string, req backend.OptInRequest) error {
	subscribed, err := r.EnsureSubscribed(ctx, token)
	if err != nil {
		return err
	}
	if !subscribed {
		return errors.Wrap(gwerrors.ErrUnauthorized, "active subscription required to book a dinner")
	}

	if err := r.api.OptInDinner(ctx, token, req); err != nil {
		return errors.Wrap(err, "[BookDinner] OptInDinner")
	}
	return nil
}
