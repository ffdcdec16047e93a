// Package backend is the REST client for the remote dining/payment backend.
// The backend owns logins, subscriptions, checkout sessions and bookings; the
// gateway only issues the documented calls and classifies the responses.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	routeAdminLogin      = "/api/v1/admin/login"
	routeCheckoutSession = "/api/v1/subscription/create-checkout-session"
	routeSessionInfo     = "/api/v1/subscription/session-info"
	routeDinnerOptIn     = "/api/v1/dinner/opt-in"
	routeCurrentUser     = "/api/v1/users/me"
	routeLogout          = "/api/v1/auth/logout"
)

type Client struct {
	baseURL string
	base    *http.Client
}

// New creates a backend client. Every call is bounded by timeout in addition
// to whatever deadline the caller's context carries.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		base:    &http.Client{Timeout: timeout},
	}
}

// httpClient returns the client to use for one call. A non-empty bearer token
// is attached through an oauth2 static token source.
func (c *Client) httpClient(token string) *http.Client {
	if token == "" {
		return c.base
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   c.base.Transport,
		},
		Timeout: c.base.Timeout,
	}
}

// AdminLogin exchanges admin credentials for a token pair. A non-2xx response
// surfaces the backend's detail message verbatim via *APIError.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (TokenPair, error) {
	body, err := c.do(ctx, "", http.MethodPost, routeAdminLogin, adminLoginRequest{Email: email, Password: password})
	if err != nil {
		return TokenPair{}, errors.Wrap(err, "[Client.AdminLogin]")
	}

	// The backend wraps the pair in a data envelope; older deployments return
	// it at the top level.
	var resp struct {
		Data         TokenPair `json:"data"`
		AccessToken  string    `json:"access_token"`
		RefreshToken string    `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return TokenPair{}, errors.Wrap(ErrBadResponse, err.Error())
	}
	pair := resp.Data
	if pair.AccessToken == "" {
		pair = TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	}
	if pair.AccessToken == "" {
		return TokenPair{}, errors.Wrap(ErrBadResponse, "login response missing access_token")
	}
	return pair, nil
}

// CreateCheckoutSession asks the backend to create a hosted checkout session.
// The backend validates the price; the gateway does not.
func (c *Client) CreateCheckoutSession(ctx context.Context, token string, params CheckoutParams) (CheckoutSession, error) {
	body, err := c.do(ctx, token, http.MethodPost, routeCheckoutSession, createCheckoutSessionRequest{
		PriceID:       params.PriceID,
		IsDevelopment: params.IsDevelopment,
		SuccessURL:    params.SuccessURL,
		CancelURL:     params.CancelURL,
	})
	if err != nil {
		return CheckoutSession{}, errors.Wrap(err, "[Client.CreateCheckoutSession]")
	}

	var cs CheckoutSession
	if err := json.Unmarshal(body, &cs); err != nil {
		return CheckoutSession{}, errors.Wrap(ErrBadResponse, err.Error())
	}
	return cs, nil
}

// SessionInfo looks up the payment status for one checkout session. The
// lookup is idempotent on the backend side and safe to repeat.
func (c *Client) SessionInfo(ctx context.Context, token, checkoutSessionID string) (SessionInfo, error) {
	path := routeSessionInfo + "?session_id=" + url.QueryEscape(checkoutSessionID)
	body, err := c.do(ctx, token, http.MethodGet, path, nil)
	if err != nil {
		return SessionInfo{}, errors.Wrap(err, "[Client.SessionInfo]")
	}

	var info SessionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return SessionInfo{}, errors.Wrap(ErrBadResponse, err.Error())
	}
	if info.Subscription.Status == "" {
		return SessionInfo{}, errors.Wrap(ErrBadResponse, "session info missing subscription status")
	}
	return info, nil
}

// OptInDinner books the user onto a dinner directly.
func (c *Client) OptInDinner(ctx context.Context, token string, req OptInRequest) error {
	if _, err := c.do(ctx, token, http.MethodPost, routeDinnerOptIn, req); err != nil {
		return errors.Wrap(err, "[Client.OptInDinner]")
	}
	return nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context, token string) (UserProfile, error) {
	body, err := c.do(ctx, token, http.MethodGet, routeCurrentUser, nil)
	if err != nil {
		return UserProfile{}, errors.Wrap(err, "[Client.CurrentUser]")
	}

	var resp struct {
		Data UserProfile `json:"data"`
		UserProfile
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return UserProfile{}, errors.Wrap(ErrBadResponse, err.Error())
	}
	if resp.Data != (UserProfile{}) {
		return resp.Data, nil
	}
	return resp.UserProfile, nil
}

// Logout invalidates the backend session for token.
func (c *Client) Logout(ctx context.Context, token string) error {
	if _, err := c.do(ctx, token, http.MethodPost, routeLogout, nil); err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

// do issues one request and returns the raw success body. Any non-2xx maps
// to *APIError carrying the backend's detail message; a 401 additionally
// matches the ErrUnauthorized sentinel.
func (c *Client) do(ctx context.Context, token, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "backend request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		log.Warn().Str("path", path).Int("status", resp.StatusCode).Str("detail", eb.Detail).Msg("backend call failed")
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: eb.Detail}
	}
	return body, nil
}
