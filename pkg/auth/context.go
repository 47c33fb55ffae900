package auth

import "context"

type contextKey string

const rawTokenKey contextKey = "raw_token"

// WithRawToken stores the verified bearer token on the request context so
// outbound backend calls run with the same identity the actor presented.
func WithRawToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, rawTokenKey, token)
}

// RawTokenFromContext returns the verified bearer token, or "" for an
// anonymous request. The signature matches backend.WithTokenSource so the
// daemon can forward actor identity on every backend call.
func RawTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(rawTokenKey).(string); ok {
		return token
	}
	return ""
}
