// internal/session/session.go
//
// Session cookie helpers.
//
// Context
//   The hosted auth backend issues a signed access token at login.  The
//   dashboard hands it to POST /api/session, which stores it in an HttpOnly
//   cookie so later page loads and API calls carry it automatically.  The
//   cookie holds the token verbatim; its signature is checked on every
//   request by auth.Middleware, so the cookie itself needs no extra MAC.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the session cookie's name.
const CookieName = "cardforge_session"

// Set stores token in the session cookie until expires.
func Set(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// Clear removes the session cookie.
func Clear(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Bearer returns the Authorization bearer value, if one is set.
func Bearer(r *http.Request) (string, bool) {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	tok = strings.TrimSpace(tok)
	return tok, ok && tok != ""
}

// Token returns the caller's access token: the Authorization bearer value
// when present, else the session cookie.
func Token(r *http.Request) (string, bool) {
	if tok, ok := Bearer(r); ok {
		return tok, true
	}
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
