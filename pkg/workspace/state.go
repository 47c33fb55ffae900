package workspace

import (
	"time"
)

// Axis is the tenant-scope dimension of a session: whose data the actor is
// looking at. It is independent of the logical context (which screen-class
// is active).
type Axis string

const (
	AxisPersonal Axis = "personal"
	AxisOrg      Axis = "org"
	AxisMaster   Axis = "master"
)

// StateVersion is the current schema version of the persisted state. Loading
// an older version resets to defaults rather than guessing a migration.
const StateVersion = 2

// State is the session-scoped workspace state persisted across reloads and
// cleared on logout. The resolver is its only writer.
type State struct {
	Version           int       `json:"version"`
	SessionID         string    `json:"session_id"`
	ActiveAxis        Axis      `json:"active_axis"`
	ActiveOrgSlug     string    `json:"active_org_slug,omitempty"`
	LastResolvedRoute string    `json:"last_resolved_route,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewState returns the default state for a fresh session: personal axis, no
// org bound.
func NewState(sessionID string) *State {
	return &State{
		Version:    StateVersion,
		SessionID:  sessionID,
		ActiveAxis: AxisPersonal,
		UpdatedAt:  time.Now().UTC(),
	}
}

// OrgBound reports whether the session has an organization bound.
func (s *State) OrgBound() bool {
	return s.ActiveOrgSlug != ""
}

// migrate normalizes a loaded state. Unknown or stale versions reset to the
// default; corrupt axis values reset too (fail safe, never fail open into an
// org binding we cannot vouch for).
func migrate(s *State, sessionID string) *State {
	if s == nil || s.Version != StateVersion {
		return NewState(sessionID)
	}
	switch s.ActiveAxis {
	case AxisPersonal, AxisOrg, AxisMaster:
	default:
		return NewState(sessionID)
	}
	if s.ActiveAxis == AxisOrg && s.ActiveOrgSlug == "" {
		return NewState(sessionID)
	}
	return s
}
