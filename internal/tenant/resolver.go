// internal/tenant/resolver.go
//
// Hostname → tenant resolution.
//
// Context
// -------
// The Resolver fronts the site table with the process-wide domain cache.
// A miss is collapsed per host with singleflight so a burst of requests for
// a cold domain costs one query.  Domains with no site row are cached too,
// with an empty slug, so unknown hosts do not hammer the database.
//
// Lookup failures (driver errors, timeouts) are NOT cached; the next request
// retries naturally.  The shared lookup runs detached from the first
// caller's cancellation, bounded by LookupTimeout, so one client hanging up
// does not fail every request waiting on the same host.
package tenant

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/cardforge/internal/domaincache"
	"github.com/yanizio/cardforge/internal/metrics"
	"github.com/yanizio/cardforge/internal/site"
)

// LookupTimeout bounds one shared database lookup.
const LookupTimeout = 5 * time.Second

// Lookup is the authoritative source.  *site.Repository satisfies it.
type Lookup interface {
	ByDomain(ctx context.Context, domain string) (*site.Record, error)
}

// Resolver is safe for concurrent use.
type Resolver struct {
	cache  *domaincache.Cache
	lookup Lookup
	sfg    singleflight.Group
	log    *zap.Logger
}

// NewResolver wires cache and lookup.  A nil logger falls back to zap.L().
func NewResolver(cache *domaincache.Cache, lookup Lookup, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.L()
	}
	return &Resolver{cache: cache, lookup: lookup, log: log}
}

// Cache exposes the underlying cache.
func (r *Resolver) Cache() *domaincache.Cache { return r.cache }

// Stats reports the cache's size and limits.
func (r *Resolver) Stats() domaincache.Stats { return r.cache.Stats() }

// Resolve returns the cached entry for host, loading it on a miss.
func (r *Resolver) Resolve(ctx context.Context, host string) (domaincache.Entry, error) {
	if ent, ok := r.cache.Get(host); ok {
		return ent, nil
	}

	v, err, _ := r.sfg.Do(host, func() (any, error) {
		// Double-check after the singleflight barrier.  Peek so the miss
		// above is not counted twice.
		if ent, ok := r.cache.Peek(host); ok {
			return ent, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LookupTimeout)
		defer cancel()
		rec, err := r.lookup.ByDomain(lctx, host)
		switch {
		case errors.Is(err, site.ErrNotFound):
			return r.cache.Set(host, "", false), nil
		case err != nil:
			metrics.DomainResolveErrors.Inc()
			return nil, err
		}
		ent := r.cache.Set(host, rec.Slug, rec.IsPublished)
		r.log.Debug("domain resolved",
			zap.String("host", host),
			zap.String("slug", rec.Slug),
			zap.Bool("published", rec.IsPublished))
		return ent, nil
	})
	if err != nil {
		return domaincache.Entry{}, err
	}
	return v.(domaincache.Entry), nil
}

// Invalidate drops host after its settings changed.
func (r *Resolver) Invalidate(host string) {
	if host == "" {
		return
	}
	r.cache.Invalidate(NormalizeHost(host))
	r.log.Info("domain cache invalidated", zap.String("host", host))
}

// InvalidateAll clears every cached host.
func (r *Resolver) InvalidateAll() {
	r.cache.InvalidateAll()
	r.log.Info("domain cache cleared")
}
