// Package policy provides the declarative role/context policy table for the
// Tuutta navigation engine.
//
// # Overview
//
// The table answers three questions, all as pure synchronous lookups:
//
//   - which logical contexts may a role enter (AllowedContexts, CanEnter)
//   - which navigation items are visible to a role (IsNavItemVisible)
//   - what UI configuration does a context carry (ConfigFor): ordered nav
//     list, side-panel tabs, assistant behavior, breadcrumb template
//
// The table is loaded once at process start from YAML (a built-in default is
// embedded, an override file may be supplied) and validated eagerly: every
// nav-item and tab id referenced by a context config must resolve in the
// global registries, every role must have a non-empty allowed-context set
// that includes the personal context. A mismatch returns *IntegrityError and
// must abort startup; a partially loaded table could silently drop a
// security-relevant restriction.
//
// # Context Switching
//
// ResolveSwitch maps discrete navigation events (open course, exit admin,
// logout) to target contexts via a fixed table that never consults the
// current context, so the transition set stays auditable.
package policy
