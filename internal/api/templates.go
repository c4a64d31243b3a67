package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cardforge/internal/builder"
	"github.com/yanizio/cardforge/internal/respond"
)

// templateCard is one gallery entry.
type templateCard struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Colors      builder.Colors `json:"colors"`
}

func (a *API) listTemplates(w http.ResponseWriter, _ *http.Request) {
	ids := builder.Templates()
	out := make([]templateCard, 0, len(ids))
	for _, id := range ids {
		s, _ := builder.Lookup(id)
		out = append(out, templateCard{ID: s.ID, Name: s.Name, Description: s.Description, Colors: s.Colors})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"templates": out})
}

func (a *API) getTemplate(w http.ResponseWriter, r *http.Request) {
	cfg, err := builder.Default(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "unknown template")
		return
	}
	respond.JSON(w, http.StatusOK, cfg)
}
