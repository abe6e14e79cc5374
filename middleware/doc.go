// Package middleware adapts the session layer to net/http.
//
// # Middlewares
//
//   - [Sessions] attaches the request's cookie jar and client IP to the context so
//     engine actions can read and write the session cookie. On safe requests it also
//     clears cookies that no longer decode and, when enabled, renews valid ones.
//   - [RequireSession] redirects page requests without a valid session to the sign-in
//     path.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into session.Manager calls. It does NOT decide
// authorization for actions; the action guards do that.
//
// # What this package must NOT do
//
//   - Encode or decode session tokens directly.
//   - Access storage.
package middleware
