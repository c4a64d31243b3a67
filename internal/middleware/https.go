// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/yanizio/cardforge/internal/domaincache"
	"github.com/yanizio/cardforge/internal/tenant"
)

// HostResolver answers whether a custom domain belongs to a live site.
// *tenant.Resolver satisfies it.
type HostResolver interface {
	Resolve(ctx context.Context, host string) (domaincache.Entry, error)
}

// ForceHTTPS issues a 308 to the https:// URL when the request arrived over
// plain HTTP and the host is either a primary host or a published tenant
// domain.  Loopback hosts, unknown domains, and requests a TLS-terminating
// proxy already marked https (X-Forwarded-Proto) pass through.
func ForceHTTPS(res HostResolver, primaryHosts []string) func(http.Handler) http.Handler {
	primary := make(map[string]struct{}, len(primaryHosts))
	for _, h := range primaryHosts {
		primary[tenant.NormalizeHost(h)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHTTPS(r) {
				next.ServeHTTP(w, r)
				return
			}
			host := tenant.NormalizeHost(r.Host)
			if host == "" || host == "localhost" || host == "127.0.0.1" || host == "[::1]" {
				next.ServeHTTP(w, r)
				return
			}

			redirect := false
			if _, ok := primary[host]; ok {
				redirect = true
			} else if ent, err := res.Resolve(r.Context(), host); err == nil && ent.Mapped() && ent.IsPublished {
				redirect = true
			}
			if !redirect {
				next.ServeHTTP(w, r)
				return
			}

			http.Redirect(w, r, "https://"+tenant.StripPort(r.Host)+r.URL.RequestURI(), http.StatusPermanentRedirect)
		})
	}
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if i := strings.IndexByte(proto, ','); i != -1 {
		proto = proto[:i]
	}
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}
