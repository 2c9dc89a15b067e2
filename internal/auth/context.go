package auth

import "context"

type identityKey struct{}

// WithIdentity attaches the resolved caller to the request context. The
// identity travels with the request; nothing here is process-global.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by WithIdentity, or false for
// an anonymous request.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
