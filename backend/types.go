package backend

// Wire types for the remote dining/payment backend. The backend wraps most
// success payloads in an envelope with a "data" field and reports failures as
// a bare {"detail": "..."} object.

// errorBody is the backend's standard failure shape.
type errorBody struct {
	Detail string `json:"detail"`
}

// TokenPair is returned by the admin login endpoint.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CheckoutSession is returned when a hosted checkout session is created.
// Older deployments return session_url, newer ones checkout_url; both are the
// redirect target.
type CheckoutSession struct {
	CheckoutURL string `json:"checkout_url"`
	SessionURL  string `json:"session_url"`
}

// SubscriptionInfo is the provider's view of one subscription.
type SubscriptionInfo struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"` // unix seconds
}

// SessionInfo is the status lookup for one checkout session.
type SessionInfo struct {
	Subscription SubscriptionInfo `json:"subscription"`
}

// UserProfile is the subset of the current-user payload the gateway uses.
type UserProfile struct {
	Email              string `json:"email"`
	Name               string `json:"name"`
	SubscriptionStatus string `json:"subscription_status"`
}

// OptInRequest books the user onto a dinner directly, bypassing checkout when
// a subscription is already active.
type OptInRequest struct {
	DinnerID        string `json:"dinner_id"`
	BudgetCategory  string `json:"budget_category"`
	DietaryCategory string `json:"dietary_category"`
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createCheckoutSessionRequest struct {
	PriceID       string `json:"price_id"`
	IsDevelopment bool   `json:"is_development"`
	SuccessURL    string `json:"success_url,omitempty"`
	CancelURL     string `json:"cancel_url,omitempty"`
}

// CheckoutParams are the inputs for creating a hosted checkout session.
// SuccessURL may contain the provider's {CHECKOUT_SESSION_ID} placeholder.
type CheckoutParams struct {
	PriceID       string
	IsDevelopment bool
	SuccessURL    string
	CancelURL     string
}
