// Package auth resolves the acting user for navigation requests.
//
// An Actor carries the verified identity, platform role, and onboarding
// state that the resolver and policy layers consume. Actors come from a
// Verifier, which turns a raw bearer token into an Actor:
//
//	verifier, err := auth.NewOIDCVerifier(ctx, issuerURL, clientID)
//	actor, err := verifier.Verify(ctx, rawToken)
//
// OIDCVerifier validates ID tokens against the platform's identity
// provider. StaticVerifier maps fixed tokens to actors for tests and
// local development. When no credential is presented, callers use the
// Anonymous actor, which is unauthenticated and carries the learner role.
//
// Verification failures are errors, never degraded actors. Callers must
// treat an invalid or expired token exactly like a missing one.
package auth
