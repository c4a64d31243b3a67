package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/builder"
	"github.com/yanizio/cardforge/internal/render"
	"github.com/yanizio/cardforge/internal/routing"
	"github.com/yanizio/cardforge/internal/site"
	"github.com/yanizio/cardforge/internal/tenant"
)

// publicPage renders a published site.  Drafts and unknown slugs are 404
// so an unpublished site is indistinguishable from a missing one.
func (a *API) publicPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !routing.ValidSlug(slug) {
		http.NotFound(w, r)
		return
	}

	rec, err := a.sites.BySlug(r.Context(), slug)
	if errors.Is(err, site.ErrNotFound) || (err == nil && !rec.IsPublished) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		a.log.Error("site lookup failed", zap.String("slug", slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ed, err := builder.Load(r.Context(), a.sites, rec.OwnerID, rec.Template)
	if err != nil {
		a.log.Error("website config load failed", zap.String("slug", slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	a.renderer.Render(w, ed.Snapshot(), render.Meta{Canonical: a.canonical(r, rec)})
}

// canonical prefers the custom domain the request arrived on.
func (a *API) canonical(r *http.Request, rec *site.Record) string {
	if ent, ok := tenant.FromContext(r.Context()); ok && ent.Domain != "" {
		return "https://" + ent.Domain + "/"
	}
	if d := rec.Domain(); d != "" {
		return "https://" + d + "/"
	}
	if a.baseURL == "" {
		return ""
	}
	return a.baseURL + routing.PublicPath(rec.Slug)
}
