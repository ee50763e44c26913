// Package netperf wraps the external netperfmeter measurement binary.
//
// A [Spec] describes one measurement: destination, transport protocol,
// runtime, and the constant-rate traffic pattern for the outgoing and
// incoming directions. A [Runner] turns a spec into a netperfmeter command
// line bound to a specific network interface, executes it, and reports the
// vector and scalar output files it produced.
//
// The package does not interpret measurement results; netperfmeter's own
// output files are handed to the results package for compression and
// delivery.
package netperf
