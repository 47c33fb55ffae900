// Package urlparse maps browser locations to candidate logical contexts.
//
// # Overview
//
// Parse is a pure, idempotent function from (path, query) to a Result:
// the candidate context plus extracted sub-identifiers (org slug, course id,
// path id, module/lesson ids, admin section). It performs no network calls
// and no state mutation; redirects and prefetch triggered by a parse result
// are the workspace resolver's job.
//
// Matching runs against a fixed gorilla/mux route table (match-only, no
// handlers) in registration order, first match wins:
//
//  1. /admin/** and /master/**        -> admin (master is admin-shaped)
//  2. /course/{id}/**                 -> course
//  3. /path/{id}/**                   -> path
//  4. /org/{slug}/** and a fixed
//     top-level route allow-list      -> org if an org is bound, else personal
//  5. anything else                   -> personal
//
// Legacy alias paths (/me/**, the older /org/{slug} segment grammar) are
// rewritten to canonical form by TranslateAlias before matching.
// CanonicalPath serializes a Result back to its canonical location.
package urlparse
