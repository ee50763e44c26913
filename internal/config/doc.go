// Package config reads the experiment configuration and node identity files
// mounted into the experiment container.
//
// The configuration is a flat JSON object with fixed keys: the SIM card
// ICCID (optional), the measurement identifier, and the mobile country and
// network codes of the carrier the experiment should bind to. The node
// identity file holds a single integer assigned by the testbed.
package config
