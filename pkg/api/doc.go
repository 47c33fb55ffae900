// Package api exposes the workspace resolver over HTTP.
//
// Every endpoint is scoped to a session:
//
//	POST /v1/sessions/{sessionId}/start
//	POST /v1/sessions/{sessionId}/navigate      {"location": "/org/acme/courses", "query": ""}
//	POST /v1/sessions/{sessionId}/switch        {"event": "open_admin"}
//	POST /v1/sessions/{sessionId}/leave-master
//	POST /v1/sessions/{sessionId}/logout
//	GET  /v1/sessions/{sessionId}/state
//	GET  /v1/sessions/{sessionId}/navigation
//
// Resolutions answer with a kind-tagged outcome: "commit" carries the
// resolved context plus the rendered navigation view, "redirect" carries
// the target the client must move to, and "superseded" means a newer
// navigation won and the result must be discarded.
//
// GET endpoints are pure reads: they never advance the session or touch the
// persisted state.
//
// Sessions live in a SessionRegistry keyed by session ID and owned by the
// actor that created them. Each request refreshes the session's actor from
// the newly verified token. Idle sessions are evicted; their workspace state
// remains in the store and is restored by the next start call.
package api
