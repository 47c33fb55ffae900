package api

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tuutta/wayfinder/pkg/auth"
	"github.com/tuutta/wayfinder/pkg/workspace"
)

// SessionRegistry holds the live resolver sessions. Sessions are created on
// first use and evicted after an idle period; persisted workspace state
// survives eviction, so a returning session resumes through Start.
type SessionRegistry struct {
	cfg   workspace.Config
	cache *gocache.Cache
	mu    sync.Mutex
}

// NewSessionRegistry creates a registry evicting sessions idle for idleTTL.
func NewSessionRegistry(cfg workspace.Config, idleTTL time.Duration) *SessionRegistry {
	if idleTTL <= 0 {
		idleTTL = time.Hour
	}
	return &SessionRegistry{
		cfg:   cfg,
		cache: gocache.New(idleTTL, 2*idleTTL),
	}
}

// Get returns the session for sessionID, creating it for the actor if
// absent. A session belongs to the actor that created it; presenting a
// different identity for the same session ID is an error.
func (r *SessionRegistry) Get(sessionID string, actor auth.Actor) (*workspace.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache.Get(sessionID); ok {
		session := cached.(*workspace.Session)
		if session.Actor().UserID != actor.UserID {
			return nil, fmt.Errorf("session %s belongs to a different user", sessionID)
		}
		// Same user, fresh token: claims like onboarding progress follow the
		// newly verified credential, not the one the session was created with.
		session.UpdateActor(actor)
		r.cache.SetDefault(sessionID, session)
		return session, nil
	}

	session := workspace.NewSession(r.cfg, sessionID, actor)
	r.cache.SetDefault(sessionID, session)
	return session, nil
}

// Drop removes a session from the registry. Used on logout so the next
// request starts from a fresh session.
func (r *SessionRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(sessionID)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	return r.cache.ItemCount()
}
