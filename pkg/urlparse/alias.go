package urlparse

import (
	"strings"
)

// TranslateAlias rewrites legacy alias paths to canonical form. It returns
// the canonical path and whether a rewrite happened (the resolver issues a
// replace-redirect when it did). Paths already canonical pass through
// untouched.
//
// Recognized aliases:
//
//   - /me and /me/{section}: the pre-workspace personal grammar
//   - /dashboard: the pre-rebrand name for /home
//   - /org/{slug}/courses/{id}/...: the older nested-course grammar, now
//     /course/{id}/...
//   - /org/{slug}/learning-paths[/{id}]: now /paths or /path/{id}
//   - /org/{slug}/admin/...: admin moved off the org prefix
//
// Unrecognized sections under /org/{slug} default to the org home route
// rather than erroring.
func TranslateAlias(path string) (string, bool) {
	segs := splitPath(path)

	switch {
	case len(segs) >= 1 && segs[0] == "me":
		if len(segs) == 1 {
			return "/home", true
		}
		if IsTopLevelSection(segs[1]) {
			return "/" + strings.Join(segs[1:], "/"), true
		}
		return "/home", true

	case len(segs) == 1 && segs[0] == "dashboard":
		return "/home", true

	case len(segs) >= 3 && segs[0] == "org":
		slug, section := segs[1], segs[2]
		switch {
		case section == "courses" && len(segs) >= 4:
			return "/course/" + strings.Join(segs[3:], "/"), true
		case section == "learning-paths":
			if len(segs) >= 4 {
				return "/path/" + strings.Join(segs[3:], "/"), true
			}
			return "/org/" + slug + "/paths", true
		case section == "admin":
			if len(segs) >= 4 {
				return "/admin/" + strings.Join(segs[3:], "/"), true
			}
			return "/admin", true
		case IsTopLevelSection(section):
			return path, false
		default:
			return "/org/" + slug + "/home", true
		}
	}

	return path, false
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
