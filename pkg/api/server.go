package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tuutta/wayfinder/pkg/navrender"
	"github.com/tuutta/wayfinder/pkg/observability"
)

// Server exposes the resolver over HTTP. Each endpoint is scoped to one
// session; the acting user comes from the auth middleware.
type Server struct {
	router   *mux.Router
	sessions *SessionRegistry
	renderer *navrender.Renderer
	metrics  *observability.Metrics
	logger   *observability.Logger
}

// NewServer creates the API server and registers its routes.
func NewServer(sessions *SessionRegistry, renderer *navrender.Renderer, metrics *observability.Metrics, logger *observability.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		sessions: sessions,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/v1/sessions/{sessionId}/start", s.startSession).Methods("POST")
	s.router.HandleFunc("/v1/sessions/{sessionId}/navigate", s.navigate).Methods("POST")
	s.router.HandleFunc("/v1/sessions/{sessionId}/switch", s.switchContext).Methods("POST")
	s.router.HandleFunc("/v1/sessions/{sessionId}/leave-master", s.leaveMaster).Methods("POST")
	s.router.HandleFunc("/v1/sessions/{sessionId}/logout", s.logout).Methods("POST")
	s.router.HandleFunc("/v1/sessions/{sessionId}/state", s.getState).Methods("GET")
	s.router.HandleFunc("/v1/sessions/{sessionId}/navigation", s.getNavigation).Methods("GET")
}

// Router returns the underlying router so the daemon can attach middleware
// and operational endpoints.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
