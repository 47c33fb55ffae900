package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tuutta/wayfinder/pkg/observability"
)

// RequestIDHeader is the header that carries the request ID in both
// directions. An inbound value from a trusted proxy is reused so one ID
// follows the request across services.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request an ID, stores it on the context, and
// echoes it on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := observability.WithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
