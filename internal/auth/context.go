package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const ownerKey contextKey = "owner"

// WithOwner returns a context carrying the verified owner id.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// OwnerFromContext returns the owner id stored by the auth middleware.
func OwnerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerKey).(string)
	return id, ok && id != ""
}
