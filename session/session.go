// Package session holds the gateway-side record of a signed-in browser: the
// bearer token pair issued by the remote backend, keyed by an opaque gateway
// session id carried in a cookie. Presence of a token does not imply validity;
// only the backend can establish that.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	// Tokens issued by the remote backend (refresh is best-effort; the
	// observed flows only ever use the access token).
	AccessToken  string
	RefreshToken string

	Email string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the gateway session itself has lapsed. Independent
// of backend token validity.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}

// Store is the persistent token store. At most one token is held per session
// id; Put is an idempotent overwrite and the last write wins.
type Store interface {
	Get(ctx context.Context, sessionID string) (Session, error)
	Put(ctx context.Context, sessionID string, session Session) error
	Clear(ctx context.Context, sessionID string) error
}

// TokenExpired peeks at the unverified exp claim of a bearer token. The
// backend stays authoritative for validity; this only disambiguates an
// expired token from a missing or opaque one when reporting a 401.
func TokenExpired(rawToken string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
