// Package telemetry exposes launcher counters over Prometheus.
//
// Metrics cover measurement cycles, result delivery, and the metadata
// stream. The HTTP endpoint is opt-in; without a listen address the
// collectors are registered but never served, which is the normal mode on
// testbed nodes where results are the only export channel.
package telemetry
