// internal/api/dashboard.go
//
// Authenticated builder endpoints.  The document is keyed by the session
// user's ID, never by anything in the request.  Saves are whole-document
// and last-write-wins.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/auth"
	"github.com/yanizio/cardforge/internal/builder"
	"github.com/yanizio/cardforge/internal/respond"
	"github.com/yanizio/cardforge/internal/routing"
	"github.com/yanizio/cardforge/internal/site"
)

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	respond.JSON(w, http.StatusOK, map[string]string{"id": u.ID, "email": u.Email, "role": u.Role})
}

// getConfig returns the stored document with schema defaults filled in.
// An owner who never saved gets the template named by ?template= (or the
// site's template) without anything being written.
func (a *API) getConfig(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.UserID(r.Context())

	tpl := r.URL.Query().Get("template")
	if tpl == "" {
		tpl = a.ownerTemplate(r.Context(), owner)
	}
	ed, err := builder.Load(r.Context(), a.sites, owner, tpl)
	if err != nil {
		a.builderError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ed.Snapshot())
}

// ownerTemplate is the template of the owner's site row, or "" when the
// owner has none yet.  It only matters before the first save.
func (a *API) ownerTemplate(ctx context.Context, owner string) string {
	rec, err := a.sites.ByOwner(ctx, owner)
	if err != nil {
		return ""
	}
	return rec.Template
}

func (a *API) putConfig(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.UserID(r.Context())

	var cfg builder.WebsiteConfig
	if err := respond.Decode(w, r, &cfg); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ed, err := builder.NewEditor(owner, a.sites, cfg)
	if err != nil {
		a.builderError(w, err)
		return
	}
	if err := ed.Save(r.Context()); err != nil {
		a.builderError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ed.Snapshot())
}

type patchRequest struct {
	Ops []builder.Op `json:"ops"`
}

func (a *API) patchConfig(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.UserID(r.Context())

	var req patchRequest
	if err := respond.Decode(w, r, &req); err != nil || len(req.Ops) == 0 {
		respond.Error(w, http.StatusBadRequest, "expected a non-empty ops list")
		return
	}
	ed, err := builder.Load(r.Context(), a.sites, owner, a.ownerTemplate(r.Context(), owner))
	if err != nil {
		a.builderError(w, err)
		return
	}
	if err := ed.Apply(req.Ops...); err != nil {
		a.builderError(w, err)
		return
	}
	if err := ed.Save(r.Context()); err != nil {
		a.builderError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ed.Snapshot())
}

type publishRequest struct {
	Published *bool `json:"published"`
}

// publish flips the flag and drops the custom domain from the cache so the
// change is visible on the next request rather than after the TTL.
func (a *API) publish(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.UserID(r.Context())

	var req publishRequest
	if err := respond.Decode(w, r, &req); err != nil || req.Published == nil {
		respond.Error(w, http.StatusBadRequest, "published must be true or false")
		return
	}
	if err := a.sites.SetPublished(r.Context(), owner, *req.Published); err != nil {
		if errors.Is(err, site.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "no site for this account")
			return
		}
		a.log.Error("set published failed", zap.String("owner", owner), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to update site")
		return
	}

	rec, err := a.sites.ByOwner(r.Context(), owner)
	if err != nil {
		a.log.Error("reload site after publish failed", zap.String("owner", owner), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to update site")
		return
	}
	if d := rec.Domain(); d != "" && a.domains != nil {
		a.domains.Invalidate(d)
	}

	a.log.Info("site publish state changed",
		zap.String("owner", owner),
		zap.String("slug", rec.Slug),
		zap.Bool("published", *req.Published))
	respond.JSON(w, http.StatusOK, map[string]any{
		"published": *req.Published,
		"slug":      rec.Slug,
		"domain":    rec.Domain(),
		"url":       a.baseURL + routing.PublicPath(rec.Slug),
	})
}

func (a *API) suggestSlug(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	slug := routing.MakeSlug(name)
	_, err := a.sites.BySlug(r.Context(), slug)
	switch {
	case errors.Is(err, site.ErrNotFound):
		respond.JSON(w, http.StatusOK, map[string]any{"slug": slug, "available": true})
	case err != nil:
		a.log.Error("slug lookup failed", zap.String("slug", slug), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "slug lookup failed")
	default:
		respond.JSON(w, http.StatusOK, map[string]any{"slug": slug, "available": false})
	}
}

// builderError maps edit failures to 400 and storage failures to 500.
func (a *API) builderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, builder.ErrUnknownTemplate),
		errors.Is(err, builder.ErrUnknownColorRole),
		errors.Is(err, builder.ErrEmptyKey),
		errors.Is(err, builder.ErrUnknownOp):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		a.log.Error("builder request failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to process website config")
	}
}
