package auth

import "context"

type identityContextKey struct{}

// Identity is the authenticated caller, attached to the request context by
// the auth middleware and the websocket handshake.
type Identity struct {
	UserID int64
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}
