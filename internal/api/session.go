package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/auth"
	"github.com/yanizio/cardforge/internal/respond"
	"github.com/yanizio/cardforge/internal/session"
)

type sessionRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CSRFToken string `json:"csrfToken,omitempty"`
}

// createSession verifies an access token from the hosted auth backend and
// stores it in the session cookie.  The response carries the first CSRF
// token for the new session.
func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := respond.Decode(w, r, &req); err != nil || strings.TrimSpace(req.Token) == "" {
		respond.Error(w, http.StatusBadRequest, "token is required")
		return
	}
	u, err := a.verifier.Verify(req.Token)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	resp := sessionResponse{ID: u.ID, Email: u.Email}
	if a.csrf != nil {
		if resp.CSRFToken, err = a.csrf.Issue(u.ID); err != nil {
			a.log.Error("csrf issue failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	session.Set(w, r, req.Token, time.Now().Add(a.sessionTTL))
	respond.JSON(w, http.StatusOK, resp)
}

func (a *API) deleteSession(w http.ResponseWriter, r *http.Request) {
	session.Clear(w, r)
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// csrfToken hands a cookie session a fresh token, e.g. after a reload.
func (a *API) csrfToken(w http.ResponseWriter, r *http.Request) {
	if a.csrf == nil {
		respond.JSON(w, http.StatusOK, map[string]string{})
		return
	}
	u, _ := auth.UserFrom(r.Context())
	tok, err := a.csrf.Issue(u.ID)
	if err != nil {
		a.log.Error("csrf issue failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"csrfToken": tok})
}
