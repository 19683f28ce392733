// Package authz implements the authorization policy engine for the
// inventory backend: role resolution against the admin allow-list,
// request-level access decisions with demo-mode support, and field-level
// mutation restrictions applied inside the write path.
//
// All decision functions in this package are pure: they take per-request
// values plus the externally-owned allow-list and return decision values.
// I/O (reading configuration, persisting roles) belongs to the calling
// layer. Decisions are values, not errors, so the HTTP layer can map them
// deterministically to 401/403 responses.
//
// Evaluation order for request decisions (first match wins):
//
//  1. OPTIONS preflight and public paths are allowed unconditionally.
//  2. Demo mode allows anonymous GETs on the readable resource whitelist.
//  3. Unauthenticated requests are denied with DenyUnauthenticated.
//  4. Authenticated GETs are allowed.
//  5. Mutating methods are denied in demo mode for every role, then
//     denied for non-admins, then allowed.
//
// The carve-outs in steps 1-2 must run before the authentication gate,
// otherwise demo mode could never serve anonymous traffic; the demo check
// in step 5 must precede the role check so an admin cannot bypass demo
// read-only enforcement.
package authz
