package workspace

import (
	"errors"
)

// ErrStateNotFound reports that a store holds no persisted state for the
// session. Denials never surface as errors; they resolve into redirects
// carrying a DenialReason.
var ErrStateNotFound = errors.New("workspace: no persisted state for session")

// DenialReason is carried on denial redirects so a generic forbidden surface
// can render context-appropriate messaging.
type DenialReason string

const (
	ReasonUnauthenticated      DenialReason = "unauthenticated"
	ReasonOnboardingIncomplete DenialReason = "onboarding_incomplete"
	ReasonUnauthorized         DenialReason = "unauthorized"
	ReasonOrgNotFound          DenialReason = "org_not_found"
)
