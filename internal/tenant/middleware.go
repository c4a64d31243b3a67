// internal/tenant/middleware.go
//
// Domain routing middleware.
//
// Context
// -------
// Requests for the product's own hostnames (marketing site, dashboard, API)
// pass through untouched.  Any other Host is treated as a tenant's custom
// domain:
//
//  1. Resolve host → entry through the Resolver (cache first).
//  2. Unknown, unmapped, or unpublished domains get 404.
//  3. Published tenants have the path rewritten under PublicPrefix/<slug>
//     so the public page handler serves them, and the entry is attached to
//     the request context.
//
// Paths under PassthroughPrefixes (static assets, the contact API) are not
// rewritten but still carry the entry.
package tenant

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/routing"
)

// MiddlewareOptions configures Middleware.
type MiddlewareOptions struct {
	PrimaryHosts        []string // e.g. "cardforge.app", "www.cardforge.app"
	LocalhostAlias      string   // dev only: treat localhost as this domain
	PublicPrefix        string   // default "/s"
	PassthroughPrefixes []string // default "/static/", "/api/"
}

// Middleware returns the routing middleware bound to res.
func Middleware(res *Resolver, opts MiddlewareOptions) func(http.Handler) http.Handler {
	primary := make(map[string]struct{}, len(opts.PrimaryHosts))
	for _, h := range opts.PrimaryHosts {
		primary[NormalizeHost(h)] = struct{}{}
	}
	if opts.PublicPrefix == "" {
		opts.PublicPrefix = routing.PublicPrefix
	}
	if opts.PassthroughPrefixes == nil {
		opts.PassthroughPrefixes = []string{"/static/", "/api/"}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := NormalizeHost(r.Host)
			if isLoopback(host) {
				if opts.LocalhostAlias == "" {
					next.ServeHTTP(w, r)
					return
				}
				host = NormalizeHost(opts.LocalhostAlias)
			}
			if _, ok := primary[host]; ok || host == "" {
				next.ServeHTTP(w, r)
				return
			}

			ent, err := res.Resolve(r.Context(), host)
			if err != nil {
				res.log.Error("domain resolve failed", zap.String("host", host), zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !ent.Mapped() || !ent.IsPublished {
				http.NotFound(w, r)
				return
			}

			ctx := WithEntry(r.Context(), ent)
			for _, p := range opts.PassthroughPrefixes {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			r2 := r.Clone(ctx)
			r2.URL.Path = routing.BuildPath(opts.PublicPrefix, ent.Slug) + strings.TrimSuffix(r.URL.Path, "/")
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
		})
	}
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "[::1]"
}
