// Package middleware provides the HTTP middleware chain for the resolver
// daemon: request IDs, request logging, panic recovery, token
// authentication, and rate limiting.
//
// # Ordering
//
// Middlewares compose outermost first:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.Logging(logger))
//	router.Use(middleware.Recovery(logger))
//	router.Use(authMW.Handler)
//	router.Use(rateMW.Handler)
//
// RequestID must run before Logging so every log line carries the ID.
// Rate limiting runs after authentication so authenticated users are
// keyed by identity rather than IP.
//
// # Authentication
//
// AuthMiddleware verifies bearer tokens through an auth.Verifier and
// stores the resulting auth.Actor on the context. Handlers read it back
// with ActorFromContext, which yields auth.Anonymous when no credential
// was presented. In optional mode missing credentials pass through as
// anonymous; invalid credentials are always rejected.
//
// # Rate limiting
//
// RateLimitMiddleware keeps token buckets in process memory.
// DistributedRateLimitMiddleware shares counters through Redis across
// instances and fails open on Redis errors by default.
package middleware
