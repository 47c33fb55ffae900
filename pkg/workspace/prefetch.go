package workspace

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tuutta/wayfinder/pkg/backend"
)

// OrgData is the prefetched render set for one organization.
type OrgData struct {
	Courses     []backend.Course
	Enrollments []backend.Enrollment
	Paths       []backend.LearningPath
}

// Prefetcher loads the sub-resources needed to render an org (course list,
// enrollments, learning paths) and caches them per slug. This is a
// cache-avoidance optimization, not a correctness requirement: a failed
// prefetch never blocks a navigation commit.
type Prefetcher struct {
	svc   backend.Service
	cache *gocache.Cache
}

// NewPrefetcher caches org data for ttl, keeping the cache small by evicting
// at 2x ttl.
func NewPrefetcher(svc backend.Service, ttl time.Duration) *Prefetcher {
	return &Prefetcher{
		svc:   svc,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Ensure returns the cached org data, loading it if absent.
func (p *Prefetcher) Ensure(ctx context.Context, slug string) (*OrgData, error) {
	if cached, ok := p.cache.Get(slug); ok {
		return cached.(*OrgData), nil
	}

	courses, err := p.svc.ListCourses(ctx, slug)
	if err != nil {
		return nil, err
	}
	enrollments, err := p.svc.ListEnrollments(ctx, slug)
	if err != nil {
		return nil, err
	}
	paths, err := p.svc.ListLearningPaths(ctx, slug)
	if err != nil {
		return nil, err
	}

	data := &OrgData{Courses: courses, Enrollments: enrollments, Paths: paths}
	p.cache.SetDefault(slug, data)
	return data, nil
}

// Invalidate drops the cached data for one org.
func (p *Prefetcher) Invalidate(slug string) {
	p.cache.Delete(slug)
}
