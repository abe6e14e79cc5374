// Package httpapi mounts the engine's actions and queries on a chi router.
//
// Form actions accept either url-encoded forms or flat JSON objects and answer with a
// JSON FormState. Redirect outcomes become 303 responses that also carry the target in
// the body for fetch-based clients. Faults map to 401, 404 or 500.
//
// # What this package must NOT do
//
//   - Make authorization decisions. The action guards and [middleware.RequireSession]
//     own those.
//   - Write session cookies itself.
package httpapi
