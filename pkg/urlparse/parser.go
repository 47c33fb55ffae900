package urlparse

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/tuutta/wayfinder/pkg/policy"
)

// Parser matches locations against the canonical route table. It holds no
// mutable state after construction and is safe for concurrent use.
type Parser struct {
	router *mux.Router
}

// NewParser builds the route table. Registration order is the matching
// precedence: admin/master first, then nested contexts, then org-scoped and
// top-level routes.
func NewParser() *Parser {
	r := mux.NewRouter()

	r.Path("/admin").Name("admin_root")
	r.Path("/admin/{section}").Name("admin_section")
	r.Path("/admin/{section}/{rest:.*}").Name("admin_section")

	r.Path("/master").Name("master_root")
	r.Path("/master/{section}").Name("master_section")
	r.Path("/master/{section}/{rest:.*}").Name("master_section")

	r.Path("/course/{id}").Name("course")
	r.Path("/course/{id}/{tail}").Name("course")
	r.Path("/course/{id}/{tail}/{rest:.*}").Name("course")

	r.Path("/path/{id}").Name("path")
	r.Path("/path/{id}/{tail}").Name("path")
	r.Path("/path/{id}/{tail}/{rest:.*}").Name("path")

	r.Path("/org/{slug}").Name("org")
	r.Path("/org/{slug}/{section}").Name("org")
	r.Path("/org/{slug}/{section}/{rest:.*}").Name("org")

	r.Path("/").Name("top_root")
	r.Path("/{page}").Name("top_page")
	r.Path("/{page}/{rest:.*}").Name("top_page")

	return &Parser{router: r}
}

// Parse maps a location to a candidate context and its sub-identifiers.
// orgBound reports whether the session currently has an organization bound;
// it decides whether allow-listed top-level routes resolve to the org or the
// personal context. Parse is pure: no I/O, no mutation, and two calls with
// the same inputs yield the same Result.
func (p *Parser) Parse(path, rawQuery string, orgBound bool) Result {
	canonical, _ := TranslateAlias(path)
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}

	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: canonical}}
	var match mux.RouteMatch
	if !p.router.Match(req, &match) || match.Route == nil {
		return Result{Context: policy.ContextPersonal, Section: "home"}
	}

	vars := match.Vars
	switch match.Route.GetName() {
	case "admin_root":
		return Result{Context: policy.ContextAdmin, AdminSection: "dashboard"}
	case "admin_section":
		return Result{Context: policy.ContextAdmin, AdminSection: vars["section"]}
	case "master_root":
		return Result{Context: policy.ContextAdmin, Master: true, AdminSection: "dashboard"}
	case "master_section":
		return Result{Context: policy.ContextAdmin, Master: true, AdminSection: vars["section"]}
	case "course":
		return Result{
			Context:  policy.ContextCourse,
			CourseID: vars["id"],
			SubRoute: courseSubRoute(vars["tail"]),
			ModuleID: query.Get("moduleId"),
			LessonID: query.Get("lessonId"),
		}
	case "path":
		return Result{
			Context:     policy.ContextPath,
			PathID:      vars["id"],
			SubRoute:    pathSubRoute(vars["tail"]),
			MilestoneID: query.Get("milestoneId"),
		}
	case "org":
		section := vars["section"]
		if !IsTopLevelSection(section) {
			section = "home"
		}
		return Result{Context: policy.ContextOrg, OrgSlug: vars["slug"], Section: section}
	case "top_root":
		return p.topLevel("home", orgBound)
	case "top_page":
		return p.topLevel(vars["page"], orgBound)
	}

	return Result{Context: policy.ContextPersonal, Section: "home"}
}

func (p *Parser) topLevel(page string, orgBound bool) Result {
	if !IsTopLevelSection(page) {
		return Result{Context: policy.ContextPersonal, Section: "home"}
	}
	if orgBound {
		return Result{Context: policy.ContextOrg, Section: page}
	}
	return Result{Context: policy.ContextPersonal, Section: page}
}
