// Package prometheus exposes engine counters to Prometheus.
//
// [Exporter] is a prometheus.Collector that reads an engine snapshot on every scrape and
// emits const metrics, so the hot path keeps its lock-free counters. Counter names are
// prefixed gosaas_ and end in _total.
//
// # What this package must NOT do
//
//   - Register with the global Prometheus registry. Handler uses a private one.
//   - Mutate engine state.
package prometheus
