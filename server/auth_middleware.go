package server

import (
	"context"
	"net/http"
	"time"

	"github.com/tablemate/tablemate-web/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the authenticated gateway session
	ContextKeySession ContextKey = "gateway_session"
	// ContextKeySessionID stores the gateway session id
	ContextKeySessionID ContextKey = "gateway_session_id"
)

// RequireSessionAuth is middleware that validates the gateway session cookie
// and injects the stored session into the request context. A missing, lapsed
// or cleared session yields the distinct expired-session state; it is never
// silently retried.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Session expired, please sign in again")
				return
			}

			sess, err := s.store.Get(r.Context(), cookie.Value)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Session expired, please sign in again")
				return
			}

			if sess.Expired(time.Now()) {
				_ = s.store.Clear(r.Context(), cookie.Value)
				writeDetail(w, http.StatusUnauthorized, "Session expired, please sign in again")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			ctx = context.WithValue(ctx, ContextKeySessionID, cookie.Value)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFromContext returns the session injected by RequireSessionAuth.
func sessionFromContext(ctx context.Context) (session.Session, string, bool) {
	sess, ok := ctx.Value(ContextKeySession).(session.Session)
	if !ok {
		return session.Session{}, "", false
	}
	sid, _ := ctx.Value(ContextKeySessionID).(string)
	return sess, sid, true
}
