// Package jwt signs and verifies session tokens: a compact HS256 envelope around the
// session payload (user, team, role, logical expiry).
//
// # Expiry
//
// The envelope carries its own exp claim. In [ExpiryFixedWindow] mode (the default) exp is
// always issuance + TTL, so a refreshed token re-stamps a full window even when the payload's
// own Expires is earlier. [ExpiryFromPayload] derives exp from Expires instead.
//
// # What this package must NOT do
//
//   - Accept any algorithm other than HS256.
//   - Read the secret from the environment; it is injected through [Config].
//   - Check the payload Expires field on decode (callers own that check).
package jwt
