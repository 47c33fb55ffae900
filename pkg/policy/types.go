package policy

// Role represents a platform role as issued by the membership backend.
// Roles are ordered roughly by increasing privilege but do not form a strict
// total order: two roles may have disjoint context sets.
type Role string

const (
	RoleLearner    Role = "learner"
	RoleInstructor Role = "instructor"
	RoleTeamLead   Role = "team_lead"
	RoleLDManager  Role = "ld_manager"
	RoleOrgAdmin   Role = "org_admin"
	RoleSuperAdmin Role = "super_admin"
)

// AllRoles lists every known role, least privileged first.
var AllRoles = []Role{
	RoleLearner,
	RoleInstructor,
	RoleTeamLead,
	RoleLDManager,
	RoleOrgAdmin,
	RoleSuperAdmin,
}

// ParseRole converts a role string from the backend to a Role.
// Unknown or empty values map to RoleLearner (least privilege).
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleInstructor, RoleTeamLead, RoleLDManager, RoleOrgAdmin, RoleSuperAdmin:
		return Role(s)
	default:
		return RoleLearner
	}
}

// Context represents the logical screen-class currently active.
// Exactly one context is active at any time.
type Context string

const (
	ContextPersonal Context = "personal"
	ContextOrg      Context = "org"
	ContextCourse   Context = "course"
	ContextPath     Context = "path"
	ContextAdmin    Context = "admin"
)

// AllContexts lists every logical context.
var AllContexts = []Context{
	ContextPersonal,
	ContextOrg,
	ContextCourse,
	ContextPath,
	ContextAdmin,
}

// Valid reports whether c is a known logical context.
func (c Context) Valid() bool {
	switch c {
	case ContextPersonal, ContextOrg, ContextCourse, ContextPath, ContextAdmin:
		return true
	}
	return false
}

// AssistantMode controls how the AI assistant surfaces in a context.
type AssistantMode string

const (
	AssistantPrimary   AssistantMode = "primary"
	AssistantSecondary AssistantMode = "assistant"
	AssistantHidden    AssistantMode = "hidden"
)

// AssistantConfig describes assistant behavior for a context.
type AssistantConfig struct {
	Mode         AssistantMode `yaml:"mode" json:"mode"`
	Floating     bool          `yaml:"floating" json:"floating"`
	ContextAware bool          `yaml:"context_aware" json:"contextAware"`
}

// NavigationItem is a single entry in the navigation registry.
// Divider items are non-interactive separators that consume a slot
// in a context's nav list but carry no route or label.
type NavigationItem struct {
	ID       string           `yaml:"id" json:"id"`
	Label    string           `yaml:"label,omitempty" json:"label,omitempty"`
	Icon     string           `yaml:"icon,omitempty" json:"icon,omitempty"`
	Route    string           `yaml:"route,omitempty" json:"route,omitempty"`
	Badge    string           `yaml:"badge,omitempty" json:"badge,omitempty"`
	Divider  bool             `yaml:"divider,omitempty" json:"divider,omitempty"`
	Children []NavigationItem `yaml:"children,omitempty" json:"children,omitempty"`
}

// SidePanelTab is a single entry in the side-panel tab registry.
type SidePanelTab struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// ContextConfig is the immutable UI configuration for one logical context.
// NavItems and Tabs reference ids in the global registries; referential
// integrity is checked once at load time.
type ContextConfig struct {
	DefaultRoute string          `yaml:"default_route" json:"defaultRoute"`
	NavItems     []string        `yaml:"nav" json:"navItems"`
	Tabs         []string        `yaml:"tabs" json:"tabs"`
	Assistant    AssistantConfig `yaml:"assistant" json:"assistant"`
	Breadcrumb   []string        `yaml:"breadcrumb" json:"breadcrumb"`
}
