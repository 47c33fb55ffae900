// Package navrender derives the visible navigation surface from the resolved
// role and context. Rendering is pure: the same (role, context, flag set)
// always yields the same items, so the filtered set is memoized and only the
// per-location template expansion runs on every call.
package navrender

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tuutta/wayfinder/pkg/flags"
	"github.com/tuutta/wayfinder/pkg/policy"
)

// flagPrefix namespaces navigation items in the feature-flag file.
const flagPrefix = "nav."

// Labels carries the location-specific values substituted into route
// templates and breadcrumb segments.
type Labels struct {
	Org      string
	Course   string
	Path     string
	Section  string
	CourseID string
	PathID   string
}

// View is the rendered navigation surface handed to page components.
type View struct {
	NavItems   []policy.NavigationItem `json:"navItems"`
	Tabs       []policy.SidePanelTab   `json:"tabs"`
	Breadcrumb []string                `json:"breadcrumb"`
	Assistant  policy.AssistantConfig  `json:"assistant"`
}

type cacheKey struct {
	role    policy.Role
	context policy.Context
	version uint64
}

// cached is the location-independent part of a view: items filtered by
// policy visibility and feature flags, routes still templated.
type cached struct {
	items []policy.NavigationItem
	tabs  []policy.SidePanelTab
}

// Renderer computes views from the policy table and a feature-flag gate.
// Safe for concurrent use.
type Renderer struct {
	table *policy.Table
	gate  flags.Gate
	cache *lru.Cache[cacheKey, *cached]
}

// NewRenderer builds a renderer. A nil gate disables flag filtering.
func NewRenderer(table *policy.Table, gate flags.Gate) (*Renderer, error) {
	cache, err := lru.New[cacheKey, *cached](128)
	if err != nil {
		return nil, err
	}
	if gate == nil {
		gate = flags.Static{}
	}
	return &Renderer{table: table, gate: gate, cache: cache}, nil
}

// Render returns the navigation surface for one resolved navigation. An item
// appears only if both the role policy and the feature-flag gate allow it;
// either one alone never suffices.
func (r *Renderer) Render(role policy.Role, ctx policy.Context, labels Labels) View {
	key := cacheKey{role: role, context: ctx, version: r.gate.Version()}

	entry, ok := r.cache.Get(key)
	if !ok {
		entry = r.build(role, ctx)
		r.cache.Add(key, entry)
	}

	cfg := r.table.ConfigFor(ctx)
	return View{
		NavItems:   expandItems(entry.items, labels),
		Tabs:       entry.tabs,
		Breadcrumb: expandBreadcrumb(cfg.Breadcrumb, labels),
		Assistant:  cfg.Assistant,
	}
}

func (r *Renderer) build(role policy.Role, ctx policy.Context) *cached {
	cfg := r.table.ConfigFor(ctx)

	items := make([]policy.NavigationItem, 0, len(cfg.NavItems))
	for _, id := range cfg.NavItems {
		item, ok := r.table.NavItem(id)
		if !ok {
			continue
		}
		if !r.visible(item, role) {
			continue
		}
		item.Children = r.filterChildren(item.Children, role)
		items = append(items, item)
	}

	tabs := make([]policy.SidePanelTab, 0, len(cfg.Tabs))
	for _, id := range cfg.Tabs {
		if tab, ok := r.table.Tab(id); ok {
			tabs = append(tabs, tab)
		}
	}

	return &cached{items: items, tabs: tabs}
}

func (r *Renderer) visible(item policy.NavigationItem, role policy.Role) bool {
	if item.Divider {
		return true
	}
	return r.table.IsNavItemVisible(item.ID, role) && r.gate.Enabled(flagPrefix+item.ID)
}

func (r *Renderer) filterChildren(children []policy.NavigationItem, role policy.Role) []policy.NavigationItem {
	if len(children) == 0 {
		return nil
	}
	kept := make([]policy.NavigationItem, 0, len(children))
	for _, child := range children {
		if !r.visible(child, role) {
			continue
		}
		child.Children = r.filterChildren(child.Children, role)
		kept = append(kept, child)
	}
	return kept
}

func expandItems(items []policy.NavigationItem, labels Labels) []policy.NavigationItem {
	replacer := strings.NewReplacer(
		"{courseId}", labels.CourseID,
		"{pathId}", labels.PathID,
	)
	out := make([]policy.NavigationItem, len(items))
	for i, item := range items {
		item.Route = replacer.Replace(item.Route)
		if len(item.Children) > 0 {
			item.Children = expandItems(item.Children, labels)
		}
		out[i] = item
	}
	return out
}

func expandBreadcrumb(segments []string, labels Labels) []string {
	replacer := strings.NewReplacer(
		"{org}", labels.Org,
		"{course}", labels.Course,
		"{path}", labels.Path,
		"{section}", labels.Section,
	)
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		expanded := replacer.Replace(seg)
		if expanded == "" {
			continue
		}
		out = append(out, expanded)
	}
	return out
}
