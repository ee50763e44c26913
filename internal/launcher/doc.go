// Package launcher supervises periodic netperfmeter measurements on a
// multi-homed testbed node.
//
// A [Launcher] reads the experiment configuration and node identity,
// subscribes to the node's modem metadata stream, and waits for a modem
// matching the configured carrier (MCC/MNC, optionally a specific SIM by
// ICCID). When one appears, it starts a measurement instance bound to the
// modem's network interface and keeps exactly one instance alive per
// measurement ID, restarting it on the next matching update if it dies.
//
// Each instance loops forever: run netperfmeter, compress and deliver the
// result files, sleep the configured interval. Cycle failures back off and
// retry rather than terminating the instance. A matching modem that is
// roaming aborts the whole launcher unless roaming is explicitly
// authorised.
//
// While running, the launcher serves its state over a local control socket
// and optionally exposes Prometheus metrics.
package launcher
