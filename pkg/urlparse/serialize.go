package urlparse

import (
	"net/url"

	"github.com/tuutta/wayfinder/pkg/policy"
)

// CanonicalPath serializes a Result back to its canonical location. The
// round-trip property holds: parsing the returned path and query yields an
// equal Result (given the same org binding).
func CanonicalPath(r Result) (path, query string) {
	switch r.Context {
	case policy.ContextAdmin:
		section := r.AdminSection
		if section == "" {
			section = "dashboard"
		}
		if r.Master {
			return "/master/" + section, ""
		}
		return "/admin/" + section, ""

	case policy.ContextCourse:
		sub := courseSubRoute(r.SubRoute)
		values := url.Values{}
		if r.ModuleID != "" {
			values.Set("moduleId", r.ModuleID)
		}
		if r.LessonID != "" {
			values.Set("lessonId", r.LessonID)
		}
		return "/course/" + r.CourseID + "/" + sub, values.Encode()

	case policy.ContextPath:
		sub := pathSubRoute(r.SubRoute)
		values := url.Values{}
		if r.MilestoneID != "" {
			values.Set("milestoneId", r.MilestoneID)
		}
		return "/path/" + r.PathID + "/" + sub, values.Encode()

	case policy.ContextOrg:
		section := r.Section
		if !IsTopLevelSection(section) {
			section = "home"
		}
		if r.OrgSlug != "" {
			return "/org/" + r.OrgSlug + "/" + section, ""
		}
		return "/" + section, ""

	default:
		section := r.Section
		if !IsTopLevelSection(section) {
			section = "home"
		}
		return "/" + section, ""
	}
}
