// internal/auth/context.go
//
// Authenticated-user helpers.
//
// Usage
// -----
//
//	// Attach the caller after token verification.
//	ctx = auth.WithUser(ctx, auth.User{ID: "8f14e45f", Email: "a@b.c"})
//
//	// Downstream code retrieves it.
//	u, ok := auth.UserFrom(ctx)
//
// The ID is the hosted backend's user identifier (the token subject).  It
// scopes uploads and keys the builder config, so it is never derived from
// request input.
package auth

import "context"

// User is the verified caller.
type User struct {
	ID    string
	Email string
	Role  string
}

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom extracts the user from ctx.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok && u.ID != ""
}

// UserID is a shorthand for UserFrom(ctx).ID.
func UserID(ctx context.Context) (string, bool) {
	u, ok := UserFrom(ctx)
	return u.ID, ok
}
