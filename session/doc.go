// Package session binds signed session tokens to the `session` cookie and manages their
// lifecycle: create, refresh with a preserved expiry, resolve, and destroy.
//
// # Cookie jar
//
// Cookies are read and written through a per-request jar attached to the context with
// [WithCookies]. The jar gives read-your-writes inside one request and guarantees a
// single Set-Cookie header for the session cookie no matter how many writes happen.
//
// # Architecture boundaries
//
// This package owns the cookie attributes and the [Manager] state machine. Token
// cryptography belongs to package jwt; user lookup is delegated to a [UserLookup].
// There is no server-side session record.
//
// # What this package must NOT do
//
//   - Import goSaaS, action, or middleware (no upward imports).
//   - Surface tamper or expiry as an error from [Manager.Current]; those collapse to absent.
//   - Read the signing secret from the environment.
package session
