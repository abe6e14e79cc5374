// Package audit dispatches security events asynchronously so request paths never wait
// on a log writer.
//
// # Components
//
//   - [Sink] — event consumer (channel, JSON lines, zerolog, no-op).
//   - [Dispatcher] — buffered relay with drop-if-full or block-if-full delivery.
//   - [Event] — timestamped record with user, team, IP and free-form metadata.
//
// # What this package must NOT do
//
//   - Decide which events to emit; the engine does that.
//   - Import goSaaS or sibling internal packages.
package audit
