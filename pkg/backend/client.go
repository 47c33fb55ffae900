// Package backend is the HTTP client boundary to the platform's
// authorization and workspace endpoints. It is the only source of truth for
// cross-tenant access: callers must never grant org access from locally
// cached membership lists.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound marks a missing organization or user. The resolver treats it
// as an access denial.
var ErrNotFound = errors.New("backend: not found")

// TransientError wraps network failures, timeouts, and 5xx responses. The
// resolver retains the last good workspace state instead of redirecting.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("backend: transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a recoverable backend failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Service is the set of backend calls the resolution engine consumes.
type Service interface {
	// ResolveWorkspace returns the session's landing context, bound org,
	// default route, and authorized workspace set.
	ResolveWorkspace(ctx context.Context) (*WorkspaceResolution, error)

	// ValidateOrgAccess asks whether the current actor may access the org.
	// Any error must be treated as denial by the caller (fail closed).
	ValidateOrgAccess(ctx context.Context, slug string) (bool, error)

	// GetOrganizationBySlug fetches the org record for binding.
	GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error)

	// ListMembershipsForUser fetches the actor's membership records.
	ListMembershipsForUser(ctx context.Context, userID string) ([]Membership, error)

	// Prefetch endpoints for rendering the bound org.
	ListCourses(ctx context.Context, slug string) ([]Course, error)
	ListEnrollments(ctx context.Context, slug string) ([]Enrollment, error)
	ListLearningPaths(ctx context.Context, slug string) ([]LearningPath, error)
}

// Client is the HTTP implementation of Service. Concurrent ValidateOrgAccess
// calls for the same actor and slug are collapsed via singleflight; results
// are never cached across calls (no TTL), so a role change server-side takes
// effect on the next validation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      func(ctx context.Context) string
	validate   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout. Unresolved-after-timeout calls
// surface as TransientError.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource sets the bearer-token provider attached to every request.
func WithTokenSource(fn func(ctx context.Context) string) Option {
	return func(c *Client) { c.token = fn }
}

// WithOAuth2TokenSource attaches an oauth2 token source, typically a client
// credentials source for service-to-service calls. Token refresh errors are
// swallowed; the request proceeds unauthenticated and the backend rejects it.
func WithOAuth2TokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.token = func(ctx context.Context) string {
			token, err := ts.Token()
			if err != nil {
				return ""
			}
			return token.AccessToken
		}
	}
}

// NewClient creates a backend client with an otel-instrumented transport.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveWorkspace implements Service.
func (c *Client) ResolveWorkspace(ctx context.Context) (*WorkspaceResolution, error) {
	var res WorkspaceResolution
	if err := c.getJSON(ctx, "/api/v1/workspace/resolve", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ValidateOrgAccess implements Service. The flight key includes the caller's
// credential: validations by different actors must never share an answer.
func (c *Client) ValidateOrgAccess(ctx context.Context, slug string) (bool, error) {
	key := slug
	if c.token != nil {
		key = c.token(ctx) + "\x00" + slug
	}
	v, err, _ := c.validate.Do(key, func() (interface{}, error) {
		var res struct {
			CanAccessOrg bool `json:"can_access_org"`
		}
		path := "/api/v1/orgs/" + url.PathEscape(slug) + "/access"
		if err := c.getJSON(ctx, path, &res); err != nil {
			return false, err
		}
		return res.CanAccessOrg, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// GetOrganizationBySlug implements Service.
func (c *Client) GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error) {
	var org Organization
	if err := c.getJSON(ctx, "/api/v1/orgs/"+url.PathEscape(slug), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListMembershipsForUser implements Service.
func (c *Client) ListMembershipsForUser(ctx context.Context, userID string) ([]Membership, error) {
	var memberships []Membership
	path := "/api/v1/users/" + url.PathEscape(userID) + "/memberships"
	if err := c.getJSON(ctx, path, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListCourses implements Service.
func (c *Client) ListCourses(ctx context.Context, slug string) ([]Course, error) {
	var courses []Course
	if err := c.getJSON(ctx, "/api/v1/orgs/"+url.PathEscape(slug)+"/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListEnrollments implements Service.
func (c *Client) ListEnrollments(ctx context.Context, slug string) ([]Enrollment, error) {
	var enrollments []Enrollment
	if err := c.getJSON(ctx, "/api/v1/orgs/"+url.PathEscape(slug)+"/enrollments", &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ListLearningPaths implements Service.
func (c *Client) ListLearningPaths(ctx context.Context, slug string) ([]LearningPath, error) {
	var paths []LearningPath
	if err := c.getJSON(ctx, "/api/v1/orgs/"+url.PathEscape(slug)+"/learning-paths", &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if token := c.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode >= 500:
		return &TransientError{Op: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("backend: unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
