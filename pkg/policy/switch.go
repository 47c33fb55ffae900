package policy

// SwitchEvent is a discrete navigation event that moves the session to a new
// logical context.
type SwitchEvent string

const (
	EventLogin      SwitchEvent = "login"
	EventLogout     SwitchEvent = "logout"
	EventOpenOrg    SwitchEvent = "open_org"
	EventExitOrg    SwitchEvent = "exit_org"
	EventOpenCourse SwitchEvent = "open_course"
	EventExitCourse SwitchEvent = "exit_course"
	EventOpenPath   SwitchEvent = "open_path"
	EventExitPath   SwitchEvent = "exit_path"
	EventOpenAdmin  SwitchEvent = "open_admin"
	EventExitAdmin  SwitchEvent = "exit_admin"
)

// switchTable maps each event to its target context. The mapping is
// deliberately context-independent: an "exit" event lands on the same
// known-safe context no matter where it originated, which keeps the table
// auditable and prevents an attacker-influenced return target.
var switchTable = map[SwitchEvent]Context{
	EventLogin:      ContextPersonal,
	EventLogout:     ContextPersonal,
	EventOpenOrg:    ContextOrg,
	EventExitOrg:    ContextPersonal,
	EventOpenCourse: ContextCourse,
	EventExitCourse: ContextOrg,
	EventOpenPath:   ContextPath,
	EventExitPath:   ContextOrg,
	EventOpenAdmin:  ContextAdmin,
	EventExitAdmin:  ContextOrg,
}

// ResolveSwitch returns the target context for a navigation event. The
// current context is accepted for call-site symmetry but never consulted.
// Unknown events resolve to the personal context.
func ResolveSwitch(event SwitchEvent, _ Context) Context {
	if target, ok := switchTable[event]; ok {
		return target
	}
	return ContextPersonal
}

// SwitchEvents returns the set of events the table understands.
func SwitchEvents() []SwitchEvent {
	events := make([]SwitchEvent, 0, len(switchTable))
	for e := range switchTable {
		events = append(events, e)
	}
	return events
}
