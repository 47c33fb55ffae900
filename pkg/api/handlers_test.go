package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuutta/wayfinder/pkg/auth"
	"github.com/tuutta/wayfinder/pkg/backend"
	"github.com/tuutta/wayfinder/pkg/middleware"
	"github.com/tuutta/wayfinder/pkg/navrender"
	"github.com/tuutta/wayfinder/pkg/observability"
	"github.com/tuutta/wayfinder/pkg/policy"
	"github.com/tuutta/wayfinder/pkg/urlparse"
	"github.com/tuutta/wayfinder/pkg/workspace"
)

// stubBackend authorizes a single org for every actor.
type stubBackend struct {
	org backend.Organization
}

func (b *stubBackend) ResolveWorkspace(ctx context.Context) (*backend.WorkspaceResolution, error) {
	return &backend.WorkspaceResolution{
		ActiveContext: policy.ContextPersonal,
		DefaultRoute:  "/home",
		Workspaces: backend.AuthorizedWorkspaces{
			Organizations: []backend.WorkspaceOrg{{Slug: b.org.Slug, Name: b.org.Name}},
		},
	}, nil
}

func (b *stubBackend) ValidateOrgAccess(ctx context.Context, slug string) (bool, error) {
	return slug == b.org.Slug, nil
}

func (b *stubBackend) GetOrganizationBySlug(ctx context.Context, slug string) (*backend.Organization, error) {
	if slug != b.org.Slug {
		return nil, backend.ErrNotFound
	}
	org := b.org
	return &org, nil
}

func (b *stubBackend) ListMembershipsForUser(ctx context.Context, userID string) ([]backend.Membership, error) {
	return []backend.Membership{{OrgSlug: b.org.Slug, Role: policy.RoleLearner, Status: "active"}}, nil
}

func (b *stubBackend) ListCourses(ctx context.Context, slug string) ([]backend.Course, error) {
	return []backend.Course{{ID: "c1", Title: "Intro to Go"}}, nil
}

func (b *stubBackend) ListEnrollments(ctx context.Context, slug string) ([]backend.Enrollment, error) {
	return nil, nil
}

func (b *stubBackend) ListLearningPaths(ctx context.Context, slug string) ([]backend.LearningPath, error) {
	return nil, nil
}

type memStore struct {
	mu     sync.Mutex
	states map[string]workspace.State
	saves  int
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]workspace.State)}
}

func (m *memStore) Load(ctx context.Context, sessionID string) (*workspace.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[sessionID]
	if !ok {
		return nil, workspace.ErrStateNotFound
	}
	copied := state
	return &copied, nil
}

func (m *memStore) Save(ctx context.Context, state *workspace.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.SessionID] = *state
	m.saves++
	return nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	server, _ := newTestServerWithStore(t)
	return server
}

func newTestServerWithStore(t *testing.T) (*Server, *memStore) {
	t.Helper()

	table, err := policy.Default()
	require.NoError(t, err)
	renderer, err := navrender.NewRenderer(table, nil)
	require.NoError(t, err)

	svc := &stubBackend{org: backend.Organization{
		Slug:     "acme",
		Name:     "Acme Corp",
		Plan:     backend.PlanProfessional,
		IsActive: true,
	}}

	store := newMemStore()
	cfg := workspace.Config{
		Parser:     urlparse.NewParser(),
		Table:      table,
		Backend:    svc,
		Store:      store,
		Prefetcher: workspace.NewPrefetcher(svc, time.Minute),
		Logger:     observability.NewLogger(observability.ErrorLevel, os.Stderr),
	}

	registry := NewSessionRegistry(cfg, time.Hour)
	logger := observability.NewLogger(observability.ErrorLevel, os.Stderr)
	return NewServer(registry, renderer, nil, logger), store
}

func learnerActor() auth.Actor {
	return auth.Actor{
		UserID:        "u-1",
		Role:          policy.RoleLearner,
		Authenticated: true,
		Onboarding:    auth.Onboarding{Completed: true},
	}
}

func doRequest(t *testing.T, server *Server, actor auth.Actor, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeOutcome(t *testing.T, rec *httptest.ResponseRecorder) outcomeResponse {
	t.Helper()
	var resp outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestStartSession(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, learnerActor(), http.MethodPost, "/v1/sessions/s1/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeOutcome(t, rec)
	assert.Equal(t, "commit", resp.Kind)
	require.NotNil(t, resp.Commit)
	assert.Equal(t, "/home", resp.Commit.Route)
}

func TestStartSession_Unauthenticated(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, auth.Anonymous, http.MethodPost, "/v1/sessions/s1/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeOutcome(t, rec)
	assert.Equal(t, "redirect", resp.Kind)
	require.NotNil(t, resp.Redirect)
	assert.Equal(t, "/landing", resp.Redirect.To)
}

func TestNavigate_CommitWithView(t *testing.T) {
	server := newTestServer(t)
	actor := learnerActor()

	rec := doRequest(t, server, actor, http.MethodPost, "/v1/sessions/s1/navigate",
		`{"location":"/org/acme/courses"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeOutcome(t, rec)
	require.Equal(t, "commit", resp.Kind)
	assert.Equal(t, "acme", resp.Commit.OrgSlug)
	require.NotNil(t, resp.View)
	assert.NotEmpty(t, resp.View.NavItems)
	assert.Contains(t, resp.View.Breadcrumb, "Acme Corp")
}

func TestNavigate_DeniedOrgRedirects(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, learnerActor(), http.MethodPost, "/v1/sessions/s1/navigate",
		`{"location":"/org/beta/home"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeOutcome(t, rec)
	require.Equal(t, "redirect", resp.Kind)
	assert.Contains(t, resp.Redirect.To, "/403")
	assert.Nil(t, resp.View)
}

func TestNavigate_MissingLocation(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, learnerActor(), http.MethodPost, "/v1/sessions/s1/navigate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "location is required")
}

func TestNavigate_InvalidJSON(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, learnerActor(), http.MethodPost, "/v1/sessions/s1/navigate", "{nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSwitchContext(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, learnerActor(), http.MethodPost, "/v1/sessions/s1/switch",
		`{"event":"open_admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/admin/dashboard", resp["route"])
}

func TestGetState(t *testing.T) {
	server := newTestServer(t)
	actor := learnerActor()

	doRequest(t, server, actor, http.MethodPost, "/v1/sessions/s1/navigate",
		`{"location":"/org/acme/courses"}`)

	rec := doRequest(t, server, actor, http.MethodGet, "/v1/sessions/s1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state workspace.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "acme", state.ActiveOrgSlug)
	assert.Equal(t, workspace.AxisOrg, state.ActiveAxis)
}

func TestGetNavigation(t *testing.T) {
	server := newTestServer(t)
	actor := learnerActor()

	doRequest(t, server, actor, http.MethodPost, "/v1/sessions/s1/navigate",
		`{"location":"/org/acme/courses"}`)

	rec := doRequest(t, server, actor, http.MethodGet, "/v1/sessions/s1/navigation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view navrender.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.NotEmpty(t, view.NavItems)
	assert.Contains(t, view.Breadcrumb, "Acme Corp")
}

func TestGetNavigation_BeforeFirstCommitReturnsNone(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, learnerActor(), http.MethodGet, "/v1/sessions/s1/navigation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeOutcome(t, rec)
	assert.Equal(t, "none", resp.Kind)
	assert.Nil(t, resp.View)
}

// Reading the navigation surface must not mutate the session: no state save,
// no route change, no superseding of anything in flight.
func TestGetNavigation_DoesNotAdvanceSession(t *testing.T) {
	server, store := newTestServerWithStore(t)
	actor := learnerActor()

	doRequest(t, server, actor, http.MethodPost, "/v1/sessions/s1/navigate",
		`{"location":"/org/acme/courses"}`)
	saves := store.saveCount()

	rec := doRequest(t, server, actor, http.MethodGet, "/v1/sessions/s1/navigation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, saves, store.saveCount(), "reads must not persist state")
	session, err := server.sessions.Get("s1", actor)
	require.NoError(t, err)
	assert.Equal(t, "/org/acme/courses", session.State().LastResolvedRoute)
}

// Onboarding progress carried on a fresh token takes effect on the next
// request; the session must not keep the actor it was created with.
func TestNavigate_OnboardingRefreshedPerRequest(t *testing.T) {
	server := newTestServer(t)

	incomplete := learnerActor()
	incomplete.Onboarding = auth.Onboarding{}
	rec := doRequest(t, server, incomplete, http.MethodPost, "/v1/sessions/s1/navigate",
		`{"location":"/org/acme/courses"}`)
	resp := decodeOutcome(t, rec)
	require.Equal(t, "redirect", resp.Kind)
	assert.Equal(t, "/onboarding", resp.Redirect.To)

	rec = doRequest(t, server, learnerActor(), http.MethodPost, "/v1/sessions/s1/navigate",
		`{"location":"/org/acme/courses"}`)
	resp = decodeOutcome(t, rec)
	require.Equal(t, "commit", resp.Kind)
	assert.Equal(t, "acme", resp.Commit.OrgSlug)
}

func TestLogout_ClearsSession(t *testing.T) {
	server := newTestServer(t)
	actor := learnerActor()

	doRequest(t, server, actor, http.MethodPost, "/v1/sessions/s1/navigate",
		`{"location":"/org/acme/courses"}`)
	require.Equal(t, 1, server.sessions.Len())

	rec := doRequest(t, server, actor, http.MethodPost, "/v1/sessions/s1/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeOutcome(t, rec)
	assert.Equal(t, "redirect", resp.Kind)
	assert.Equal(t, "/landing", resp.Redirect.To)
	assert.Equal(t, 0, server.sessions.Len())
}

func TestSessionOwnership(t *testing.T) {
	server := newTestServer(t)

	doRequest(t, server, learnerActor(), http.MethodPost, "/v1/sessions/s1/start", "")

	other := learnerActor()
	other.UserID = "u-2"
	rec := doRequest(t, server, other, http.MethodGet, "/v1/sessions/s1/state", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionRegistry_EvictionKeepsPersistedState(t *testing.T) {
	table, err := policy.Default()
	require.NoError(t, err)

	svc := &stubBackend{org: backend.Organization{Slug: "acme", Name: "Acme", IsActive: true}}
	store := newMemStore()
	cfg := workspace.Config{
		Parser:     urlparse.NewParser(),
		Table:      table,
		Backend:    svc,
		Store:      store,
		Prefetcher: workspace.NewPrefetcher(svc, time.Minute),
		Logger:     observability.NewLogger(observability.ErrorLevel, os.Stderr),
	}
	registry := NewSessionRegistry(cfg, time.Hour)

	session, err := registry.Get("s1", learnerActor())
	require.NoError(t, err)
	session.Navigate(context.Background(), "/org/acme/courses", "")

	registry.Drop("s1")

	revived, err := registry.Get("s1", learnerActor())
	require.NoError(t, err)
	outcome := revived.Start(context.Background())
	require.NotNil(t, outcome.Commit)
	assert.Equal(t, "acme", revived.State().ActiveOrgSlug)
}
