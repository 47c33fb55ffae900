// Package workspace is the orchestrating resolver that keeps the browser
// location, the logical context, and server-validated org access in sync.
//
// # Overview
//
// A Session runs one resolution per location change:
//
//  1. translate legacy alias paths
//  2. gate on authentication and onboarding completion
//  3. parse the URL into a candidate context and sub-identifiers
//  4. check the role/context policy
//  5. validate org access with the backend when the location names an org
//     other than the bound one, binding on approval (org record + the
//     actor's membership)
//  6. prefetch org render data (best effort)
//  7. commit the new state and persist it
//
// # Concurrency
//
// The session is the single writer to its State. Resolutions may race:
// each Navigate captures a generation token and checks it before every
// commit, so the last navigation always wins regardless of backend
// completion order, and a stale validation can never bind the wrong org.
//
// # Failure policy
//
// Access checks fail closed: any validation error denies the new org.
// Transient backend failures (network, 5xx, timeout) retain the last good
// state without redirecting, so the UI can show a non-fatal indicator and
// retry on the next navigation.
//
// # Persistence
//
// State survives reloads through a Store (file, sqlite, or redis backend),
// is versioned with an explicit reset path for unknown versions, and is
// cleared on logout. A cron janitor sweeps expired sessions.
package workspace
