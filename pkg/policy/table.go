package policy

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// IntegrityError reports referential-integrity problems found while loading a
// policy table. It is fatal: a partially loaded table could silently drop a
// security-relevant restriction.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("policy table integrity check failed: %s", strings.Join(e.Problems, "; "))
}

// tableFile is the on-disk YAML shape of the policy table.
type tableFile struct {
	NavItems      []NavigationItem          `yaml:"nav_items"`
	Tabs          []SidePanelTab            `yaml:"tabs"`
	Contexts      map[Context]ContextConfig `yaml:"contexts"`
	RoleContexts  map[Role][]Context        `yaml:"roles"`
	NavVisibility map[string][]Role         `yaml:"nav_visibility"`
}

// Table is the loaded, validated role/context policy table. It is immutable
// after Load and safe for concurrent readers.
type Table struct {
	navItems      map[string]NavigationItem
	navOrder      []string
	tabs          map[string]SidePanelTab
	contexts      map[Context]ContextConfig
	roleContexts  map[Role]map[Context]bool
	navVisibility map[string]map[Role]bool
}

// Load parses and validates a policy table from YAML. Any referential
// mismatch between context configs and the nav-item/tab registries, or a role
// whose allowed-context set is empty or missing the personal context, returns
// an *IntegrityError.
func Load(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy table: %w", err)
	}

	t := &Table{
		navItems:      make(map[string]NavigationItem, len(file.NavItems)),
		navOrder:      make([]string, 0, len(file.NavItems)),
		tabs:          make(map[string]SidePanelTab, len(file.Tabs)),
		contexts:      file.Contexts,
		roleContexts:  make(map[Role]map[Context]bool, len(file.RoleContexts)),
		navVisibility: make(map[string]map[Role]bool, len(file.NavVisibility)),
	}

	var problems []string

	for _, item := range file.NavItems {
		if item.ID == "" {
			problems = append(problems, "nav item with empty id")
			continue
		}
		if _, dup := t.navItems[item.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate nav item id %q", item.ID))
			continue
		}
		t.navItems[item.ID] = item
		t.navOrder = append(t.navOrder, item.ID)
	}

	for _, tab := range file.Tabs {
		if tab.ID == "" {
			problems = append(problems, "side panel tab with empty id")
			continue
		}
		if _, dup := t.tabs[tab.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate tab id %q", tab.ID))
			continue
		}
		t.tabs[tab.ID] = tab
	}

	for _, ctx := range AllContexts {
		cfg, ok := file.Contexts[ctx]
		if !ok {
			problems = append(problems, fmt.Sprintf("context %q has no configuration", ctx))
			continue
		}
		if cfg.DefaultRoute == "" {
			problems = append(problems, fmt.Sprintf("context %q has no default route", ctx))
		}
		for _, id := range cfg.NavItems {
			if _, ok := t.navItems[id]; !ok {
				problems = append(problems, fmt.Sprintf("context %q references unknown nav item %q", ctx, id))
			}
		}
		for _, id := range cfg.Tabs {
			if _, ok := t.tabs[id]; !ok {
				problems = append(problems, fmt.Sprintf("context %q references unknown tab %q", ctx, id))
			}
		}
		switch cfg.Assistant.Mode {
		case AssistantPrimary, AssistantSecondary, AssistantHidden:
		default:
			problems = append(problems, fmt.Sprintf("context %q has invalid assistant mode %q", ctx, cfg.Assistant.Mode))
		}
	}
	for ctx := range file.Contexts {
		if !ctx.Valid() {
			problems = append(problems, fmt.Sprintf("configuration for unknown context %q", ctx))
		}
	}

	for _, role := range AllRoles {
		contexts, ok := file.RoleContexts[role]
		if !ok || len(contexts) == 0 {
			problems = append(problems, fmt.Sprintf("role %q has no allowed contexts", role))
			continue
		}
		set := make(map[Context]bool, len(contexts))
		for _, ctx := range contexts {
			if !ctx.Valid() {
				problems = append(problems, fmt.Sprintf("role %q references unknown context %q", role, ctx))
				continue
			}
			set[ctx] = true
		}
		if !set[ContextPersonal] {
			problems = append(problems, fmt.Sprintf("role %q must include the personal context", role))
		}
		t.roleContexts[role] = set
	}
	for role := range file.RoleContexts {
		if ParseRole(string(role)) != role {
			problems = append(problems, fmt.Sprintf("allowed-context entry for unknown role %q", role))
		}
	}

	for itemID, roles := range file.NavVisibility {
		if _, ok := t.navItems[itemID]; !ok {
			problems = append(problems, fmt.Sprintf("visibility restriction for unknown nav item %q", itemID))
			continue
		}
		set := make(map[Role]bool, len(roles))
		for _, role := range roles {
			if ParseRole(string(role)) != role {
				problems = append(problems, fmt.Sprintf("nav item %q restricted to unknown role %q", itemID, role))
				continue
			}
			set[role] = true
		}
		t.navVisibility[itemID] = set
	}

	if len(problems) > 0 {
		return nil, &IntegrityError{Problems: problems}
	}
	return t, nil
}

// AllowedContexts returns the set of logical contexts a role may enter.
func (t *Table) AllowedContexts(role Role) []Context {
	set := t.roleContexts[role]
	out := make([]Context, 0, len(set))
	for _, ctx := range AllContexts {
		if set[ctx] {
			out = append(out, ctx)
		}
	}
	return out
}

// CanEnter reports whether a role may enter a logical context.
func (t *Table) CanEnter(role Role, ctx Context) bool {
	return t.roleContexts[role][ctx]
}

// IsNavItemVisible reports whether a nav item is visible to a role. Items
// without an explicit restriction are visible to every role that can reach
// the containing context.
func (t *Table) IsNavItemVisible(itemID string, role Role) bool {
	restricted, ok := t.navVisibility[itemID]
	if !ok {
		_, known := t.navItems[itemID]
		return known
	}
	return restricted[role]
}

// ConfigFor returns the UI configuration for a context. Load guarantees every
// valid context has a configuration; unknown contexts fall back to personal.
func (t *Table) ConfigFor(ctx Context) ContextConfig {
	if cfg, ok := t.contexts[ctx]; ok {
		return cfg
	}
	return t.contexts[ContextPersonal]
}

// NavItem returns a registry entry by id.
func (t *Table) NavItem(id string) (NavigationItem, bool) {
	item, ok := t.navItems[id]
	return item, ok
}

// Tab returns a side-panel tab registry entry by id.
func (t *Table) Tab(id string) (SidePanelTab, bool) {
	tab, ok := t.tabs[id]
	return tab, ok
}
