// internal/api/api.go
//
// HTTP surface of the service.
//
// Context
// -------
// Mount registers every route on a chi router:
//
//	GET    /s/{slug}                    public page (slug routing, custom domains rewrite here)
//	GET    /api/templates               template gallery
//	GET    /api/templates/{id}          one template's default config
//	POST   /api/contact                 contact form (Options.Contact)
//	POST   /api/session                 exchange an access token for a session cookie
//	DELETE /api/session                 clear the cookie
//	GET    /api/csrf                    fresh CSRF token                [session]
//	GET    /api/me                      current user                    [session]
//	POST   /api/upload                  asset upload (Options.Upload)   [session]
//	GET    /api/builder/config          load the tenant's config        [session]
//	PUT    /api/builder/config          replace it                      [session]
//	PATCH  /api/builder/config          apply field edits               [session]
//	POST   /api/builder/publish         toggle the publish flag         [session]
//	GET    /api/builder/slug            suggest a slug for a name       [session]
//	GET    /api/admin/cache             domain cache stats              [admin token]
//	DELETE /api/admin/cache             clear it                        [admin token]
//	DELETE /api/admin/cache/{domain}    drop one domain                 [admin token]
//
// Session routes that change state also pass through Options.CSRF when set;
// cookie-authenticated callers must echo the token in X-CSRF-Token.
//
// Every JSON error has the shape {"error": "..."}.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/auth"
	"github.com/yanizio/cardforge/internal/builder"
	"github.com/yanizio/cardforge/internal/csrf"
	"github.com/yanizio/cardforge/internal/domaincache"
	"github.com/yanizio/cardforge/internal/render"
	"github.com/yanizio/cardforge/internal/site"
)

// SiteStore is the persistence the handlers need.  *site.Repository
// satisfies it.
type SiteStore interface {
	builder.Store
	BySlug(ctx context.Context, slug string) (*site.Record, error)
	ByOwner(ctx context.Context, owner string) (*site.Record, error)
	SetPublished(ctx context.Context, owner string, published bool) error
}

// DomainCache is the admin view of the custom-domain cache.
// *tenant.Resolver satisfies it.
type DomainCache interface {
	Invalidate(host string)
	InvalidateAll()
	Stats() domaincache.Stats
}

// Options wires the API.
type Options struct {
	Sites      SiteStore
	Domains    DomainCache
	Renderer   *render.Renderer
	Verifier   *auth.Verifier
	CSRF       *csrf.Guard
	Contact    http.Handler
	Upload     http.Handler
	AdminToken string
	SessionTTL time.Duration
	BaseURL    string // e.g. https://cardforge.app; used for canonical links
	Log        *zap.Logger
}

// API holds the handler dependencies.
type API struct {
	sites      SiteStore
	domains    DomainCache
	renderer   *render.Renderer
	verifier   *auth.Verifier
	csrf       *csrf.Guard
	contact    http.Handler
	upload     http.Handler
	adminToken string
	sessionTTL time.Duration
	baseURL    string
	log        *zap.Logger
}

// New returns an API.
func New(o Options) *API {
	if o.Log == nil {
		o.Log = zap.L()
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 7 * 24 * time.Hour
	}
	return &API{
		sites:      o.Sites,
		domains:    o.Domains,
		renderer:   o.Renderer,
		verifier:   o.Verifier,
		csrf:       o.CSRF,
		contact:    o.Contact,
		upload:     o.Upload,
		adminToken: o.AdminToken,
		sessionTTL: o.SessionTTL,
		baseURL:    strings.TrimRight(o.BaseURL, "/"),
		log:        o.Log.Named("api"),
	}
}

// Mount registers the routes on r.
func (a *API) Mount(r chi.Router) {
	r.Get("/s/{slug}", a.publicPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", a.listTemplates)
		r.Get("/templates/{id}", a.getTemplate)

		if a.contact != nil {
			r.Method(http.MethodPost, "/contact", a.contact)
		}
		r.Post("/session", a.createSession)
		r.Delete("/session", a.deleteSession)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			if a.csrf != nil {
				r.Use(a.csrf.Middleware)
			}
			r.Get("/me", a.me)
			r.Get("/csrf", a.csrfToken)
			if a.upload != nil {
				r.Method(http.MethodPost, "/upload", a.upload)
			}
			r.Route("/builder", func(r chi.Router) {
				r.Get("/config", a.getConfig)
				r.Put("/config", a.putConfig)
				r.Patch("/config", a.patchConfig)
				r.Post("/publish", a.publish)
				r.Get("/slug", a.suggestSlug)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(a.adminToken))
			r.Get("/cache", a.cacheStats)
			r.Delete("/cache", a.cacheClear)
			r.Delete("/cache/{domain}", a.cacheDrop)
		})
	})
}
