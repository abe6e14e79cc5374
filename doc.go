// Package goSaaS is the account, team and billing engine of a multi-tenant SaaS shell.
//
// An [Engine] is assembled once through [Builder.Build] and exposes every business action
// as an [action.Action] that the HTTP layer runs against decoded form input. Engine methods
// are safe to call from multiple goroutines.
//
// # Architecture boundaries
//
// goSaaS is the public surface. It owns [Config], [Builder], [Engine], [Metrics] and the
// result types. Session tokens live in jwt and session, the guard pipeline in action,
// storage behind domain.Store, and throttling and audit dispatch under internal/.
//
// # What this package must NOT do
//
//   - Write HTTP responses. Actions return outcomes; httpapi renders them.
//   - Touch the session cookie outside session.Manager.
//   - Import httpapi, middleware or any storage implementation.
package goSaaS
