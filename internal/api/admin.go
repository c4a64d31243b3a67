package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cardforge/internal/respond"
)

func (a *API) cacheStats(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, a.domains.Stats())
}

func (a *API) cacheClear(w http.ResponseWriter, _ *http.Request) {
	a.domains.InvalidateAll()
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *API) cacheDrop(w http.ResponseWriter, r *http.Request) {
	a.domains.Invalidate(chi.URLParam(r, "domain"))
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
