package booktracker

import (
	"context"
)

var userIDCtxKey = &contextKey{"user_id"}
var renewedTokenCtxKey = &contextKey{"renewed_token"}

type contextKey struct {
	name string
}

// WithUserID sets the authenticated user id in the given context
func WithUserID(r context.Context, userID string) context.Context {
	return context.WithValue(r, userIDCtxKey, userID)
}

// UserIDFromContext finds the authenticated user id from the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(userIDCtxKey).(string)
	return raw, ok
}

// WithRenewedToken stores an access token minted during session renewal so
// handlers can echo it back to the client.
func WithRenewedToken(r context.Context, token string) context.Context {
	return context.WithValue(r, renewedTokenCtxKey, token)
}

// RenewedTokenFromContext returns the renewed access token, if any.
func RenewedTokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(renewedTokenCtxKey).(string)
	return raw, ok
}
