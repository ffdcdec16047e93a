package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

const (
	// sessionCookieName is the cookie carrying the opaque gateway session id
	sessionCookieName = "tablemateSessionId"

	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
)

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.SetSessionCookie(w, r, "", -1)
}

// ensureSessionID returns the gateway session id from the request cookie, or
// mints a fresh one and sets the cookie. Landing pages reached by full-page
// redirects from the payment provider need a session to absorb a handed-back
// token into even when the browser arrives without one.
func (s *Server) ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	sessionID := uuid.New().String()
	s.SetSessionCookie(w, r, sessionID, int(s.config.GetSessionTTL().Seconds()))
	return sessionID
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeDetail writes an error response in the backend's {"detail": ...}
// shape, which the web client already knows how to render.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
