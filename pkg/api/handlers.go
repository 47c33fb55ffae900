package api

import (
	"net/http"

	"github.com/tuutta/wayfinder/pkg/httputil"
	"github.com/tuutta/wayfinder/pkg/middleware"
	"github.com/tuutta/wayfinder/pkg/navrender"
	"github.com/tuutta/wayfinder/pkg/policy"
	"github.com/tuutta/wayfinder/pkg/workspace"
)

type navigateRequest struct {
	// Location is the path component of the target address.
	Location string `json:"location"`
	// Query is the raw query string, without the leading "?".
	Query string `json:"query,omitempty"`
}

type switchRequest struct {
	Event string `json:"event"`
}

// outcomeResponse is the wire shape of a resolution. Kind tells the client
// which branch to act on without probing for nulls.
type outcomeResponse struct {
	Kind      string              `json:"kind"`
	Commit    *workspace.Commit   `json:"commit,omitempty"`
	Redirect  *workspace.Redirect `json:"redirect,omitempty"`
	Transient bool                `json:"transient,omitempty"`
	View      *navrender.View     `json:"view,omitempty"`
}

// session resolves the path session ID against the registry, enforcing that
// the authenticated actor owns the session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*workspace.Session, bool) {
	sessionID, ok := httputil.ParsePathStringOrError(w, r, "sessionId")
	if !ok {
		return nil, false
	}

	actor := middleware.ActorFromContext(r.Context())
	session, err := s.sessions.Get(sessionID, actor)
	if err != nil {
		httputil.WriteForbidden(w, err.Error())
		return nil, false
	}

	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
	}
	return session, true
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeOutcome(w, session, session.Start(r.Context()))
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req navigateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Location, "location") {
		return
	}

	s.writeOutcome(w, session, session.Navigate(r.Context(), req.Location, req.Query))
}

func (s *Server) switchContext(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req switchRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Event, "event") {
		return
	}

	route := session.SwitchRoute(policy.SwitchEvent(req.Event))
	httputil.WriteSuccess(w, map[string]string{"route": route})
}

func (s *Server) leaveMaster(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	session.LeaveMaster(r.Context())
	httputil.WriteSuccess(w, session.State())
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	outcome := session.Logout(r.Context())
	s.sessions.Drop(session.State().SessionID)
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
	}
	s.writeOutcome(w, session, outcome)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, session.State())
}

// getNavigation renders the navigation surface from the last committed
// resolution. Reads never advance the session: a GET must not supersede an
// in-flight navigation or touch persisted state.
func (s *Server) getNavigation(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	commit := session.LastCommit()
	if commit == nil {
		httputil.WriteSuccess(w, outcomeResponse{Kind: "none"})
		return
	}
	httputil.WriteSuccess(w, s.renderView(session, commit))
}

func (s *Server) writeOutcome(w http.ResponseWriter, session *workspace.Session, outcome workspace.Outcome) {
	resp := outcomeResponse{Transient: outcome.Transient}

	switch {
	case outcome.Superseded:
		resp.Kind = "superseded"
	case outcome.Commit != nil:
		resp.Kind = "commit"
		resp.Commit = outcome.Commit
		resp.View = s.renderView(session, outcome.Commit)
	case outcome.Redirect != nil:
		resp.Kind = "redirect"
		resp.Redirect = outcome.Redirect
	default:
		resp.Kind = "none"
	}

	httputil.WriteSuccess(w, resp)
}

// renderView builds the navigation surface for a committed resolution.
func (s *Server) renderView(session *workspace.Session, commit *workspace.Commit) *navrender.View {
	if s.renderer == nil {
		return nil
	}

	labels := navrender.Labels{
		Section:  commit.Location.Section,
		CourseID: commit.Location.CourseID,
		PathID:   commit.Location.PathID,
	}
	if commit.Org != nil {
		labels.Org = commit.Org.Name
	}
	if commit.OrgData != nil {
		for _, course := range commit.OrgData.Courses {
			if course.ID == commit.Location.CourseID {
				labels.Course = course.Title
				break
			}
		}
		for _, path := range commit.OrgData.Paths {
			if path.ID == commit.Location.PathID {
				labels.Path = path.Title
				break
			}
		}
	}

	view := s.renderer.Render(session.Actor().Role, commit.Context, labels)
	return &view
}
