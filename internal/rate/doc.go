// Package rate implements fixed-window attempt counters for sign-in and sign-up
// throttling.
//
// # Window semantics
//
// The first hit in a window sets its TTL; later hits only increment. Key prefixes:
//   - si:  — sign-in failures per email
//   - sii: — sign-in failures per client IP
//   - su:  — sign-up attempts per client IP
//
// Counters live in Redis ([NewRedisCounter]) when several processes share the limit, or
// in a ttlcache ([NewMemoryCounter]) for a single process.
//
// # What this package must NOT do
//
//   - Decide user-facing messages (the engine maps [ErrRateLimited]).
//   - Be imported outside the goSaaS module.
package rate
