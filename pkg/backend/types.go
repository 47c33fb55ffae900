package backend

import (
	"github.com/tuutta/wayfinder/pkg/policy"
)

// Organization is the org record returned by the platform backend.
type Organization struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	LogoURL  string `json:"logo_url,omitempty"`
	Plan     string `json:"plan"`
	IsActive bool   `json:"is_active"`
}

// Organization plans.
const (
	PlanFree         = "free"
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

// Membership is the actor's membership record inside one organization.
type Membership struct {
	OrgSlug    string      `json:"org_slug"`
	Role       policy.Role `json:"role"`
	Department string      `json:"department,omitempty"`
	Team       string      `json:"team,omitempty"`
	JobTitle   string      `json:"job_title,omitempty"`
	Status     string      `json:"status"`
}

// Active reports whether the membership grants access. Suspended or pending
// memberships fail closed.
func (m Membership) Active() bool {
	return m.Status == "active"
}

// WorkspaceOrg is one entry in the actor's authorized workspace set.
type WorkspaceOrg struct {
	Slug string      `json:"slug"`
	Name string      `json:"name"`
	Role policy.Role `json:"role"`
}

// AuthorizedWorkspaces is the server-computed workspace set for the actor.
// The client never infers org membership from local cache alone.
type AuthorizedWorkspaces struct {
	Organizations []WorkspaceOrg `json:"organizations"`
	Master        bool           `json:"master"`
}

// HasOrg reports whether slug appears in the authorized org list.
func (w AuthorizedWorkspaces) HasOrg(slug string) bool {
	for _, org := range w.Organizations {
		if org.Slug == slug {
			return true
		}
	}
	return false
}

// WorkspaceResolution is the backend's answer to "where should this session
// land": active context, bound org, default route, and the workspace set.
type WorkspaceResolution struct {
	ActiveContext policy.Context       `json:"active_context"`
	ActiveOrgSlug string               `json:"active_org_slug,omitempty"`
	DefaultRoute  string               `json:"default_route"`
	Workspaces    AuthorizedWorkspaces `json:"authorized_workspaces"`
}

// Course is the minimal course record used for org prefetch.
type Course struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Enrollment is the minimal enrollment record used for org prefetch.
type Enrollment struct {
	CourseID string  `json:"course_id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
}

// LearningPath is the minimal learning-path record used for org prefetch.
type LearningPath struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
