package urlparse

import (
	"github.com/tuutta/wayfinder/pkg/policy"
)

// Course sub-routes (the tail segment of /course/{id}/...).
const (
	CourseSubHome      = "home"
	CourseSubPlayer    = "player"
	CourseSubOutline   = "outline"
	CourseSubResources = "resources"
	CourseSubNotes     = "notes"
)

// Learning-path sub-routes (the tail segment of /path/{id}/...).
const (
	PathSubOverview   = "overview"
	PathSubCurrent    = "current"
	PathSubMilestones = "milestones"
)

// Result is the outcome of parsing a location. Context is the candidate
// logical context; the remaining fields are sub-identifiers lifted from path
// segments and query parameters. Master marks locations under /master/**,
// which render admin-shaped but live on a separate workspace axis.
type Result struct {
	Context policy.Context `json:"context"`
	Master  bool           `json:"master,omitempty"`

	// Org-scoped locations.
	OrgSlug string `json:"orgSlug,omitempty"`
	Section string `json:"section,omitempty"`

	// Nested course context.
	CourseID string `json:"courseId,omitempty"`
	SubRoute string `json:"subRoute,omitempty"`
	ModuleID string `json:"moduleId,omitempty"`
	LessonID string `json:"lessonId,omitempty"`

	// Nested learning-path context.
	PathID      string `json:"pathId,omitempty"`
	MilestoneID string `json:"milestoneId,omitempty"`

	// Admin context.
	AdminSection string `json:"adminSection,omitempty"`
}

// topLevelSections is the fixed allow-list of top-level routes that resolve
// to the org context when an org is bound, and to personal otherwise.
var topLevelSections = map[string]bool{
	"home":          true,
	"chat":          true,
	"courses":       true,
	"paths":         true,
	"discussions":   true,
	"announcements": true,
	"analytics":     true,
	"progress":      true,
	"achievements":  true,
	"notifications": true,
	"join-org":      true,
}

// IsTopLevelSection reports whether a section is on the top-level allow-list.
func IsTopLevelSection(section string) bool {
	return topLevelSections[section]
}

func courseSubRoute(tail string) string {
	switch tail {
	case CourseSubHome, CourseSubPlayer, CourseSubOutline, CourseSubResources, CourseSubNotes:
		return tail
	default:
		return CourseSubHome
	}
}

func pathSubRoute(tail string) string {
	switch tail {
	case PathSubOverview, PathSubCurrent, PathSubMilestones:
		return tail
	default:
		return PathSubOverview
	}
}
