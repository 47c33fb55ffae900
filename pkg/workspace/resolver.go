package workspace

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuutta/wayfinder/pkg/auth"
	"github.com/tuutta/wayfinder/pkg/backend"
	"github.com/tuutta/wayfinder/pkg/observability"
	"github.com/tuutta/wayfinder/pkg/policy"
	"github.com/tuutta/wayfinder/pkg/urlparse"
)

// Well-known routes the resolver redirects to.
const (
	RouteLanding    = "/landing"
	RouteOnboarding = "/onboarding"
	RouteForbidden  = "/403"
	RouteHome       = "/home"
)

// publicSections are reachable without authentication.
var publicSections = map[string]bool{
	"landing": true,
	"login":   true,
	"signup":  true,
	"403":     true,
}

// transientSections are resolver/chooser surfaces never recorded as the
// session's last resolved route.
var transientSections = map[string]bool{
	"landing":          true,
	"login":            true,
	"signup":           true,
	"onboarding":       true,
	"403":              true,
	"choose-workspace": true,
}

// Redirect instructs the routing collaborator to move the browser.
type Redirect struct {
	To      string       `json:"to"`
	Replace bool         `json:"replace"`
	Reason  DenialReason `json:"reason,omitempty"`
	From    string       `json:"from,omitempty"`
}

// Commit is the resolved navigation state handed to page components.
type Commit struct {
	Context    policy.Context        `json:"context"`
	Location   urlparse.Result       `json:"location"`
	Axis       Axis                  `json:"axis"`
	OrgSlug    string                `json:"orgSlug,omitempty"`
	Org        *backend.Organization `json:"org,omitempty"`
	Membership *backend.Membership   `json:"membership,omitempty"`
	Route      string                `json:"route"`
	// ReplaceAddress is set when a legacy alias was translated: the router
	// should replace the address bar with Route instead of pushing.
	ReplaceAddress bool     `json:"replaceAddress,omitempty"`
	OrgData        *OrgData `json:"-"`
}

// Outcome is the result of one navigation resolution. Exactly one of Commit
// and Redirect is set unless the resolution was superseded by a newer
// navigation or degraded by a transient backend failure (in which case the
// last good state is retained and neither is set).
type Outcome struct {
	Commit     *Commit
	Redirect   *Redirect
	Superseded bool
	Transient  bool
}

// Config carries the session's collaborators.
type Config struct {
	Parser     *urlparse.Parser
	Table      *policy.Table
	Backend    backend.Service
	Store      Store
	Prefetcher *Prefetcher
	Logger     *observability.Logger
	Metrics    *Metrics
}

// Session is the workspace resolver for one actor session. It is the only
// writer to the session's State; readers get copies. Navigations may run
// concurrently: a monotonically increasing generation token makes the last
// navigation win, and stale resolutions are discarded before any commit.
type Session struct {
	id  string
	cfg Config

	generation atomic.Uint64

	mu         sync.Mutex
	actor      auth.Actor
	state      *State
	workspaces backend.AuthorizedWorkspaces
	org        *backend.Organization
	membership *backend.Membership
	lastCommit *Commit
}

// NewSession creates a resolver session with default (personal) state.
func NewSession(cfg Config, sessionID string, actor auth.Actor) *Session {
	return &Session{
		id:    sessionID,
		actor: actor,
		cfg:   cfg,
		state: NewState(sessionID),
	}
}

// State returns a copy of the current workspace state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state
}

// Actor returns the session's current actor.
func (s *Session) Actor() auth.Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actor
}

// UpdateActor refreshes the actor from a newly verified credential. Claims
// such as onboarding progress change between requests and must not stay
// frozen at session creation.
func (s *Session) UpdateActor(actor auth.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor = actor
}

// LastCommit returns the most recently committed resolution, or nil before
// the first commit. The returned value is shared and must be treated as
// read-only.
func (s *Session) LastCommit() *Commit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCommit
}

// Start restores persisted state and asks the backend where the session
// should land. A transient backend failure falls back to the last known
// state for the already-bound org only; it never grants access to a new org
// from cache.
func (s *Session) Start(ctx context.Context) Outcome {
	if persisted, err := s.cfg.Store.Load(ctx, s.id); err == nil {
		s.mu.Lock()
		s.state = migrate(persisted, s.id)
		s.mu.Unlock()
	} else if !errors.Is(err, ErrStateNotFound) {
		s.cfg.Logger.WithError(err).Warn("Failed to load persisted workspace state")
	}

	if !s.Actor().Authenticated {
		return Outcome{Redirect: &Redirect{To: RouteLanding, Replace: true, Reason: ReasonUnauthenticated}}
	}

	res, err := s.cfg.Backend.ResolveWorkspace(ctx)
	if err != nil {
		if backend.IsTransient(err) {
			s.cfg.Logger.WithError(err).Warn("Workspace resolve failed, retaining last known state")
			return Outcome{Transient: true}
		}
		// A hard failure resets to the personal axis rather than trusting
		// a binding the server would not confirm.
		s.mu.Lock()
		s.state = NewState(s.id)
		s.mu.Unlock()
		return s.Navigate(ctx, RouteHome, "")
	}

	s.mu.Lock()
	s.workspaces = res.Workspaces
	s.state.ActiveOrgSlug = res.ActiveOrgSlug
	if res.ActiveOrgSlug != "" {
		s.state.ActiveAxis = AxisOrg
	} else {
		s.state.ActiveAxis = AxisPersonal
	}
	route := s.state.LastResolvedRoute
	s.mu.Unlock()

	if route == "" {
		route = res.DefaultRoute
	}
	if route == "" {
		route = RouteHome
	}
	return s.Navigate(ctx, route, "")
}

// Navigate resolves one location change end to end: alias translation,
// authentication and onboarding gates, URL parsing, policy check, org access
// validation, prefetch, and finally the state commit. Safe to call
// concurrently; superseded resolutions are discarded silently.
func (s *Session) Navigate(ctx context.Context, path, rawQuery string) Outcome {
	gen := s.generation.Add(1)
	actor := s.Actor()

	canonical, aliased := urlparse.TranslateAlias(path)

	if !actor.Authenticated && !isPublic(canonical) {
		s.cfg.Metrics.denial(ReasonUnauthenticated)
		return Outcome{Redirect: &Redirect{
			To:      RouteLanding,
			Replace: true,
			Reason:  ReasonUnauthenticated,
			From:    path,
		}}
	}

	if actor.Authenticated && !actor.Onboarding.Complete() &&
		!isOnboarding(canonical) && !isPublic(canonical) {
		s.cfg.Metrics.denial(ReasonOnboardingIncomplete)
		return Outcome{Redirect: &Redirect{
			To:      RouteOnboarding,
			Replace: true,
			Reason:  ReasonOnboardingIncomplete,
			From:    path,
		}}
	}

	s.mu.Lock()
	boundSlug := s.state.ActiveOrgSlug
	axis := s.state.ActiveAxis
	s.mu.Unlock()

	result := s.cfg.Parser.Parse(canonical, rawQuery, boundSlug != "")

	if !s.cfg.Table.CanEnter(actor.Role, result.Context) {
		s.cfg.Metrics.denial(ReasonUnauthorized)
		s.cfg.Logger.WithFields(map[string]interface{}{
			"role":    string(actor.Role),
			"context": string(result.Context),
			"path":    path,
		}).Warn("Navigation denied by context policy")
		return Outcome{Redirect: forbidden(ReasonUnauthorized, path)}
	}

	if result.Master && axis != AxisMaster {
		outcome, ok := s.enterMaster(ctx, gen, path)
		if !ok {
			return outcome
		}
		axis = AxisMaster
	}

	org := s.currentOrg()
	membership := s.currentMembership()

	// An explicit slug differing from the bound org triggers backend
	// validation; the backend is the only source of truth for cross-tenant
	// access.
	if result.OrgSlug != "" && result.OrgSlug != boundSlug {
		outcome, newOrg, newMembership, ok := s.validateAndBind(ctx, gen, result.OrgSlug, path)
		if !ok {
			return outcome
		}
		org, membership = newOrg, newMembership
		boundSlug = result.OrgSlug
	}

	effectiveSlug := boundSlug
	if result.OrgSlug != "" {
		effectiveSlug = result.OrgSlug
	}

	var orgData *OrgData
	if effectiveSlug != "" && result.Context != policy.ContextPersonal && s.cfg.Prefetcher != nil {
		data, err := s.cfg.Prefetcher.Ensure(ctx, effectiveSlug)
		if err != nil {
			// Prefetch is an optimization; rendering proceeds without it.
			s.cfg.Logger.WithError(err).WithField("org", effectiveSlug).Debug("Org prefetch failed")
		} else {
			orgData = data
		}
	}

	s.mu.Lock()
	// Staleness is decided under the state lock: a resolution that was
	// current an instant ago may have lost the race to a newer navigation.
	if s.stale(gen) {
		s.mu.Unlock()
		s.cfg.Metrics.superseded()
		return Outcome{Superseded: true}
	}

	newAxis := nextAxis(axis, result, effectiveSlug)
	s.state.ActiveAxis = newAxis
	s.state.ActiveOrgSlug = effectiveSlug
	if !isTransient(canonical) {
		s.state.LastResolvedRoute = canonical
	}
	s.org = org
	s.membership = membership
	commit := &Commit{
		Context:        result.Context,
		Location:       result,
		Axis:           newAxis,
		OrgSlug:        effectiveSlug,
		Org:            org,
		Membership:     membership,
		Route:          canonical,
		ReplaceAddress: aliased,
		OrgData:        orgData,
	}
	s.lastCommit = commit
	stateCopy := *s.state
	s.mu.Unlock()

	if err := s.cfg.Store.Save(ctx, &stateCopy); err != nil {
		s.cfg.Logger.WithError(err).Warn("Failed to persist workspace state")
	}

	s.cfg.Metrics.resolution("committed", string(result.Context))
	return Outcome{Commit: commit}
}

// Logout clears persisted state and resets the session to the personal
// context. Any in-flight resolution is superseded.
func (s *Session) Logout(ctx context.Context) Outcome {
	s.generation.Add(1)

	s.mu.Lock()
	s.state = NewState(s.id)
	s.org = nil
	s.membership = nil
	s.lastCommit = nil
	s.workspaces = backend.AuthorizedWorkspaces{}
	s.mu.Unlock()

	if err := s.cfg.Store.Clear(ctx, s.id); err != nil {
		s.cfg.Logger.WithError(err).Warn("Failed to clear persisted workspace state")
	}

	return Outcome{Redirect: &Redirect{To: RouteLanding, Replace: true}}
}

// SwitchRoute maps a navigation event to the default route of its target
// context. Nested contexts (course, path) are entered via explicit deep
// links, not switch events, so their templated defaults are returned as-is.
func (s *Session) SwitchRoute(event policy.SwitchEvent) string {
	s.mu.Lock()
	current := s.contextForAxisLocked()
	s.mu.Unlock()
	target := policy.ResolveSwitch(event, current)
	return s.cfg.Table.ConfigFor(target).DefaultRoute
}

// LeaveMaster drops the master axis, falling back to the bound org or the
// personal axis. The master axis is never left implicitly.
func (s *Session) LeaveMaster(ctx context.Context) {
	s.mu.Lock()
	if s.state.ActiveAxis == AxisMaster {
		if s.state.OrgBound() {
			s.state.ActiveAxis = AxisOrg
		} else {
			s.state.ActiveAxis = AxisPersonal
		}
	}
	stateCopy := *s.state
	s.mu.Unlock()

	if err := s.cfg.Store.Save(ctx, &stateCopy); err != nil {
		s.cfg.Logger.WithError(err).Warn("Failed to persist workspace state")
	}
}

// enterMaster confirms master access with the backend before switching the
// axis. Only the server-computed workspace set can grant it.
func (s *Session) enterMaster(ctx context.Context, gen uint64, from string) (Outcome, bool) {
	res, err := s.cfg.Backend.ResolveWorkspace(ctx)
	if err != nil {
		if backend.IsTransient(err) {
			return Outcome{Transient: true}, false
		}
		s.cfg.Metrics.denial(ReasonUnauthorized)
		return Outcome{Redirect: forbidden(ReasonUnauthorized, from)}, false
	}
	if s.stale(gen) {
		s.cfg.Metrics.superseded()
		return Outcome{Superseded: true}, false
	}
	if !res.Workspaces.Master {
		s.cfg.Metrics.denial(ReasonUnauthorized)
		return Outcome{Redirect: forbidden(ReasonUnauthorized, from)}, false
	}

	s.mu.Lock()
	if s.stale(gen) {
		s.mu.Unlock()
		s.cfg.Metrics.superseded()
		return Outcome{Superseded: true}, false
	}
	s.workspaces = res.Workspaces
	s.mu.Unlock()
	return Outcome{}, true
}

// validateAndBind runs the org access check and, on approval, fetches the
// org record and the actor's membership. Every failure path leaves the
// current binding untouched.
func (s *Session) validateAndBind(ctx context.Context, gen uint64, slug, from string) (Outcome, *backend.Organization, *backend.Membership, bool) {
	userID := s.Actor().UserID
	start := time.Now()
	allowed, err := s.cfg.Backend.ValidateOrgAccess(ctx, slug)
	s.cfg.Metrics.validationSeconds(time.Since(start).Seconds())

	if err != nil {
		if backend.IsTransient(err) {
			// Fail closed on access, but do not punish a backend blip with
			// a 403: keep the last good state.
			s.cfg.Logger.WithError(err).WithField("org", slug).Warn("Org validation unavailable")
			return Outcome{Transient: true}, nil, nil, false
		}
		reason := ReasonUnauthorized
		if errors.Is(err, backend.ErrNotFound) {
			reason = ReasonOrgNotFound
		}
		s.cfg.Metrics.denial(reason)
		return Outcome{Redirect: forbidden(reason, from)}, nil, nil, false
	}
	if !allowed {
		s.cfg.Metrics.denial(ReasonUnauthorized)
		s.cfg.Logger.WithFields(map[string]interface{}{
			"org":  slug,
			"user": userID,
		}).Warn("Org access denied")
		return Outcome{Redirect: forbidden(ReasonUnauthorized, from)}, nil, nil, false
	}

	org, err := s.cfg.Backend.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		if backend.IsTransient(err) {
			return Outcome{Transient: true}, nil, nil, false
		}
		s.cfg.Metrics.denial(ReasonOrgNotFound)
		return Outcome{Redirect: forbidden(ReasonOrgNotFound, from)}, nil, nil, false
	}
	if !org.IsActive {
		s.cfg.Metrics.denial(ReasonOrgNotFound)
		return Outcome{Redirect: forbidden(ReasonOrgNotFound, from)}, nil, nil, false
	}

	memberships, err := s.cfg.Backend.ListMembershipsForUser(ctx, userID)
	if err != nil {
		if backend.IsTransient(err) {
			return Outcome{Transient: true}, nil, nil, false
		}
		s.cfg.Metrics.denial(ReasonUnauthorized)
		return Outcome{Redirect: forbidden(ReasonUnauthorized, from)}, nil, nil, false
	}

	var membership *backend.Membership
	for i := range memberships {
		if memberships[i].OrgSlug == slug && memberships[i].Active() {
			membership = &memberships[i]
			break
		}
	}
	if membership == nil {
		s.cfg.Metrics.denial(ReasonUnauthorized)
		return Outcome{Redirect: forbidden(ReasonUnauthorized, from)}, nil, nil, false
	}

	// Bind only if this is still the navigation the actor wants; a racing
	// validation for another org must not cross-contaminate the binding.
	if s.stale(gen) {
		s.cfg.Metrics.superseded()
		return Outcome{Superseded: true}, nil, nil, false
	}
	return Outcome{}, org, membership, true
}

func (s *Session) stale(gen uint64) bool {
	return s.generation.Load() != gen
}

func (s *Session) currentOrg() *backend.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.org
}

func (s *Session) currentMembership() *backend.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.membership
}

func (s *Session) contextForAxisLocked() policy.Context {
	switch s.state.ActiveAxis {
	case AxisMaster:
		return policy.ContextAdmin
	case AxisOrg:
		return policy.ContextOrg
	default:
		return policy.ContextPersonal
	}
}

// nextAxis derives the tenant axis after a commit. The master axis is
// sticky: it is left only via LeaveMaster or Logout, never by plain
// navigation.
func nextAxis(axis Axis, result urlparse.Result, slug string) Axis {
	if result.Master || axis == AxisMaster {
		return AxisMaster
	}
	if slug != "" && result.Context != policy.ContextPersonal {
		return AxisOrg
	}
	if slug != "" {
		return axis
	}
	return AxisPersonal
}

func forbidden(reason DenialReason, from string) *Redirect {
	values := url.Values{}
	values.Set("reason", string(reason))
	values.Set("from", from)
	return &Redirect{
		To:      RouteForbidden + "?" + values.Encode(),
		Replace: true,
		Reason:  reason,
		From:    from,
	}
}

func firstSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func isPublic(path string) bool     { return publicSections[firstSegment(path)] }
func isOnboarding(path string) bool { return firstSegment(path) == "onboarding" }
func isTransient(path string) bool  { return transientSections[firstSegment(path)] }
