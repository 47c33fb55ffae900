// Package httputil provides JSON request and response helpers shared by
// the daemon's handlers.
//
// Responses use a flat {"error": message} shape for failures:
//
//	httputil.WriteJSON(w, http.StatusOK, outcome)
//	httputil.WriteBadRequest(w, "location is required")
//	httputil.WriteUnauthorized(w, "invalid or expired token")
//
// Request parsing mirrors the response helpers; the OrError variants
// write the 400 themselves so handlers can return early:
//
//	var req resolveRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return
//	}
//	sessionID, ok := httputil.ParsePathStringOrError(w, r, "sessionId")
package httputil
