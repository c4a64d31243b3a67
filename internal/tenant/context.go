package tenant

import (
	"context"

	"github.com/yanizio/cardforge/internal/domaincache"
)

// ctxKey is unexported to avoid context-key collisions.
type ctxKey struct{}

// WithEntry attaches the resolved tenant to ctx.
func WithEntry(ctx context.Context, ent domaincache.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, ent)
}

// FromContext returns the tenant resolved for this request, if any.
func FromContext(ctx context.Context) (domaincache.Entry, bool) {
	ent, ok := ctx.Value(ctxKey{}).(domaincache.Entry)
	return ent, ok
}
