package urlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuutta/wayfinder/pkg/policy"
)

func TestParse(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		path     string
		query    string
		orgBound bool
		want     Result
	}{
		{
			name: "admin root",
			path: "/admin",
			want: Result{Context: policy.ContextAdmin, AdminSection: "dashboard"},
		},
		{
			name: "admin section",
			path: "/admin/members",
			want: Result{Context: policy.ContextAdmin, AdminSection: "members"},
		},
		{
			name: "admin deep path keeps section",
			path: "/admin/reports/compliance/q3",
			want: Result{Context: policy.ContextAdmin, AdminSection: "reports"},
		},
		{
			name: "master is admin shaped",
			path: "/master/orgs",
			want: Result{Context: policy.ContextAdmin, Master: true, AdminSection: "orgs"},
		},
		{
			name:  "course player with module and lesson",
			path:  "/course/c1/player",
			query: "moduleId=m2&lessonId=l9",
			want: Result{
				Context:  policy.ContextCourse,
				CourseID: "c1",
				SubRoute: CourseSubPlayer,
				ModuleID: "m2",
				LessonID: "l9",
			},
		},
		{
			name: "course without tail defaults to home",
			path: "/course/c1",
			want: Result{Context: policy.ContextCourse, CourseID: "c1", SubRoute: CourseSubHome},
		},
		{
			name: "course with unknown tail defaults to home",
			path: "/course/c1/grades",
			want: Result{Context: policy.ContextCourse, CourseID: "c1", SubRoute: CourseSubHome},
		},
		{
			name:  "learning path milestones",
			path:  "/path/p7/milestones",
			query: "milestoneId=ms3",
			want: Result{
				Context:     policy.ContextPath,
				PathID:      "p7",
				SubRoute:    PathSubMilestones,
				MilestoneID: "ms3",
			},
		},
		{
			name: "org scoped route carries slug",
			path: "/org/acme/courses",
			want: Result{Context: policy.ContextOrg, OrgSlug: "acme", Section: "courses"},
		},
		{
			name: "org root defaults to home section",
			path: "/org/acme",
			want: Result{Context: policy.ContextOrg, OrgSlug: "acme", Section: "home"},
		},
		{
			name:     "top level route with org bound",
			path:     "/discussions",
			orgBound: true,
			want:     Result{Context: policy.ContextOrg, Section: "discussions"},
		},
		{
			name: "top level route without org bound",
			path: "/discussions",
			want: Result{Context: policy.ContextPersonal, Section: "discussions"},
		},
		{
			name:     "root path",
			path:     "/",
			orgBound: true,
			want:     Result{Context: policy.ContextOrg, Section: "home"},
		},
		{
			name: "unknown path falls back to personal",
			path: "/definitely/not/a/route",
			want: Result{Context: policy.ContextPersonal, Section: "home"},
		},
		{
			name: "unknown single segment falls back to personal home",
			path: "/xyzzy",
			want: Result{Context: policy.ContextPersonal, Section: "home"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tt.path, tt.query, tt.orgBound)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Parsing the same location twice must yield the same result.
func TestParse_Idempotent(t *testing.T) {
	parser := NewParser()

	paths := []struct {
		path  string
		query string
	}{
		{"/admin/members", ""},
		{"/course/c1/player", "moduleId=m2&lessonId=l9"},
		{"/path/p7/current", ""},
		{"/org/acme/home", ""},
		{"/me/courses", ""},
		{"/", ""},
	}

	for _, p := range paths {
		for _, bound := range []bool{false, true} {
			first := parser.Parse(p.path, p.query, bound)
			second := parser.Parse(p.path, p.query, bound)
			assert.Equal(t, first, second, "parse of %s not idempotent", p.path)
		}
	}
}

// Serializing a parsed result and re-parsing must reproduce the result.
func TestParse_RoundTrip(t *testing.T) {
	parser := NewParser()

	locations := []struct {
		path     string
		query    string
		orgBound bool
	}{
		{"/admin/reports", "", false},
		{"/master/orgs", "", false},
		{"/course/c1/player", "moduleId=m2&lessonId=l9", true},
		{"/course/c1/notes", "", false},
		{"/path/p7/milestones", "milestoneId=ms3", true},
		{"/org/acme/announcements", "", true},
		{"/home", "", true},
		{"/progress", "", false},
	}

	for _, loc := range locations {
		t.Run(loc.path, func(t *testing.T) {
			parsed := parser.Parse(loc.path, loc.query, loc.orgBound)
			path, query := CanonicalPath(parsed)
			reparsed := parser.Parse(path, query, loc.orgBound)
			assert.Equal(t, parsed, reparsed)
		})
	}
}

func TestTranslateAlias(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		want        string
		wantChanged bool
	}{
		{"me root", "/me", "/home", true},
		{"me section", "/me/courses", "/courses", true},
		{"me unknown section", "/me/old-widgets", "/home", true},
		{"legacy dashboard", "/dashboard", "/home", true},
		{"legacy nested course", "/org/acme/courses/c1/player", "/course/c1/player", true},
		{"legacy learning paths list", "/org/acme/learning-paths", "/org/acme/paths", true},
		{"legacy learning path detail", "/org/acme/learning-paths/p7", "/path/p7", true},
		{"legacy org admin", "/org/acme/admin/members", "/admin/members", true},
		{"unrecognized org section defaults to home", "/org/acme/widgets", "/org/acme/home", true},
		{"canonical org path untouched", "/org/acme/home", "/org/acme/home", false},
		{"canonical course untouched", "/course/c1/player", "/course/c1/player", false},
		{"canonical top level untouched", "/courses", "/courses", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := TranslateAlias(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestParse_LegacyAliasesResolve(t *testing.T) {
	parser := NewParser()

	got := parser.Parse("/org/acme/courses/c1/player", "moduleId=m2", true)
	require.Equal(t, policy.ContextCourse, got.Context)
	assert.Equal(t, "c1", got.CourseID)
	assert.Equal(t, CourseSubPlayer, got.SubRoute)
	assert.Equal(t, "m2", got.ModuleID)

	got = parser.Parse("/me/progress", "", false)
	assert.Equal(t, Result{Context: policy.ContextPersonal, Section: "progress"}, got)
}
