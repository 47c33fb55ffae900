package workspace

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuutta/wayfinder/pkg/auth"
	"github.com/tuutta/wayfinder/pkg/backend"
	"github.com/tuutta/wayfinder/pkg/observability"
	"github.com/tuutta/wayfinder/pkg/policy"
	"github.com/tuutta/wayfinder/pkg/urlparse"
)

// fakeBackend is an in-memory backend.Service with per-slug validation
// blocking for race tests.
type fakeBackend struct {
	mu            sync.Mutex
	resolution    *backend.WorkspaceResolution
	resolveErr    error
	access        map[string]bool
	accessErr     map[string]error
	blockValidate map[string]chan struct{}
	validateCalls []string
	orgs          map[string]*backend.Organization
	memberships   []backend.Membership
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		access:        make(map[string]bool),
		accessErr:     make(map[string]error),
		blockValidate: make(map[string]chan struct{}),
		orgs:          make(map[string]*backend.Organization),
	}
}

func (f *fakeBackend) addOrg(slug, name string, role policy.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access[slug] = true
	f.orgs[slug] = &backend.Organization{Slug: slug, Name: name, Plan: backend.PlanFree, IsActive: true}
	f.memberships = append(f.memberships, backend.Membership{OrgSlug: slug, Role: role, Status: "active"})
}

func (f *fakeBackend) ResolveWorkspace(ctx context.Context) (*backend.WorkspaceResolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if f.resolution != nil {
		return f.resolution, nil
	}
	return &backend.WorkspaceResolution{
		ActiveContext: policy.ContextPersonal,
		DefaultRoute:  "/home",
	}, nil
}

func (f *fakeBackend) ValidateOrgAccess(ctx context.Context, slug string) (bool, error) {
	f.mu.Lock()
	f.validateCalls = append(f.validateCalls, slug)
	block := f.blockValidate[slug]
	err := f.accessErr[slug]
	allowed := f.access[slug]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return false, err
	}
	return allowed, nil
}

func (f *fakeBackend) GetOrganizationBySlug(ctx context.Context, slug string) (*backend.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[slug]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return org, nil
}

func (f *fakeBackend) ListMembershipsForUser(ctx context.Context, userID string) ([]backend.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.Membership(nil), f.memberships...), nil
}

func (f *fakeBackend) ListCourses(ctx context.Context, slug string) ([]backend.Course, error) {
	return []backend.Course{{ID: "c1", Title: "Course One"}}, nil
}

func (f *fakeBackend) ListEnrollments(ctx context.Context, slug string) ([]backend.Enrollment, error) {
	return nil, nil
}

func (f *fakeBackend) ListLearningPaths(ctx context.Context, slug string) ([]backend.LearningPath, error) {
	return nil, nil
}

func (f *fakeBackend) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.validateCalls...)
}

// memStore is a Store backed by a map.
type memStore struct {
	mu     sync.Mutex
	states map[string]State
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]State)}
}

func (m *memStore) Load(_ context.Context, sessionID string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	copied := state
	return &copied, nil
}

func (m *memStore) Save(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.SessionID] = *state
	return nil
}

func (m *memStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}

func testActor(role policy.Role) auth.Actor {
	return auth.Actor{
		UserID:        "u1",
		Role:          role,
		Authenticated: true,
		Onboarding:    auth.Onboarding{Completed: true},
	}
}

func newTestSession(t *testing.T, fb *fakeBackend, actor auth.Actor) (*Session, *memStore) {
	t.Helper()
	table, err := policy.Default()
	require.NoError(t, err)

	store := newMemStore()
	session := NewSession(Config{
		Parser:  urlparse.NewParser(),
		Table:   table,
		Backend: fb,
		Store:   store,
		Logger:  observability.NewLogger(observability.ErrorLevel, os.Stderr),
	}, "sess-1", actor)
	return session, store
}
