// Package action implements the authorization pipeline that wraps every server action.
//
// An [Action] receives form-like [Input] and answers through three separate channels:
//
//   - a result: [Outcome] of kind Proceed (handler value) or ValidationFailed (message);
//   - a redirect: [Outcome] of kind Redirect;
//   - a fault: a returned error such as [ErrUnauthenticated] or [ErrUserNotFound].
//
// The channels never mix. Bad input is a result, a missing session in a full-context
// action is a redirect, and a missing session in a user-scoped action is a fault.
//
// # Guards
//
//   - [Validated] parses input and calls the handler.
//   - [ValidatedWithUser] resolves the session and active user first.
//   - [WithTeam] resolves user and team concurrently and redirects to /sign-in when either
//     is missing.
//
// # What this package must NOT do
//
//   - Write cookies or know about HTTP.
//   - Retry storage calls.
package action
