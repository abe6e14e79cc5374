// Package internaldefs holds the exported metric names and help strings so every
// exporter publishes identical series for the engine's counters.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
