// Package auth resolves the acting user for a resolution request: identity
// and role from a verified OIDC token, plus the onboarding state that gates
// navigation until setup is complete.
package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/tuutta/wayfinder/pkg/policy"
)

// Onboarding tracks the setup steps a new account must finish before the
// resolver allows navigation beyond the onboarding flow.
type Onboarding struct {
	ProfileSetup          bool `json:"profile_setup"`
	OrganizationSelection bool `json:"organization_selection"`
	DiagnosticAssessment  bool `json:"diagnostic_assessment"`
	FirstRecommendation   bool `json:"first_recommendation"`
	Completed             bool `json:"completed"`
}

// Complete reports whether onboarding is finished. An explicit Completed
// override wins; otherwise all steps must be done.
func (o Onboarding) Complete() bool {
	if o.Completed {
		return true
	}
	return o.ProfileSetup && o.OrganizationSelection && o.DiagnosticAssessment && o.FirstRecommendation
}

// Actor is the authenticated (or anonymous) user a resolution runs for.
type Actor struct {
	UserID        string
	Email         string
	Role          policy.Role
	Authenticated bool
	Onboarding    Onboarding
}

// Anonymous is the actor used when no credential is presented.
var Anonymous = Actor{Role: policy.RoleLearner}

// Verifier turns a bearer token into an Actor.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Actor, error)
}

// tokenClaims is the claim set the platform's identity provider issues.
type tokenClaims struct {
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Onboarding Onboarding `json:"onboarding"`
}

// OIDCVerifier validates ID tokens against the platform's identity provider.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider and builds a verifier for clientID.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider %s: %w", issuerURL, err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify implements Verifier. An invalid or expired token yields an error;
// callers must treat that as unauthenticated, never as a degraded actor.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (Actor, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Anonymous, fmt.Errorf("token verification failed: %w", err)
	}

	var claims tokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return Anonymous, fmt.Errorf("failed to extract token claims: %w", err)
	}

	return Actor{
		UserID:        idToken.Subject,
		Email:         claims.Email,
		Role:          policy.ParseRole(claims.Role),
		Authenticated: true,
		Onboarding:    claims.Onboarding,
	}, nil
}

// StaticVerifier maps fixed tokens to actors; used in tests and local dev.
type StaticVerifier struct {
	Actors map[string]Actor
}

// Verify implements Verifier.
func (v StaticVerifier) Verify(_ context.Context, rawToken string) (Actor, error) {
	actor, ok := v.Actors[rawToken]
	if !ok {
		return Anonymous, fmt.Errorf("unknown token")
	}
	return actor, nil
}
