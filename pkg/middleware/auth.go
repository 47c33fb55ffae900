package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tuutta/wayfinder/pkg/auth"
	"github.com/tuutta/wayfinder/pkg/httputil"
)

type contextKey string

// actorKey carries the auth.Actor resolved by AuthMiddleware.
const actorKey contextKey = "actor"

// WithActor stores the acting user on the context.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor resolved by AuthMiddleware, or
// auth.Anonymous when the request carried no credential.
func ActorFromContext(ctx context.Context) auth.Actor {
	if actor, ok := ctx.Value(actorKey).(auth.Actor); ok {
		return actor
	}
	return auth.Anonymous
}

// AuthMiddleware verifies bearer tokens and places the resulting actor on
// the request context.
type AuthMiddleware struct {
	verifier auth.Verifier
	// optional lets unauthenticated requests through as auth.Anonymous.
	// The resolver still redirects them to the landing page.
	optional bool
}

// NewAuthMiddleware creates authentication middleware around a verifier.
func NewAuthMiddleware(verifier auth.Verifier, optional bool) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, optional: optional}
}

// Handler wraps an HTTP handler with token verification.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if m.optional {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), auth.Anonymous)))
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		actor, err := m.verifier.Verify(r.Context(), parts[1])
		if err != nil {
			// An invalid token is never downgraded to anonymous, even in
			// optional mode. Presenting a bad credential is a hard failure.
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		// The raw token rides along so the backend client can act as this
		// user; authorization decisions stay server-side.
		ctx := auth.WithRawToken(r.Context(), parts[1])
		next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
	})
}
