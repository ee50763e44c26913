package netperf

import (
	"fmt"
	"time"
)

// Transport protocol used for the measurement flow.
type Transport string

const (
	TCP  Transport = "tcp"
	UDP  Transport = "udp"
	SCTP Transport = "sctp"
	DCCP Transport = "dccp"
)

// Parses a transport protocol name.
func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case TCP, UDP, SCTP, DCCP:
		return Transport(s), nil
	}
	return "", fmt.Errorf("%w: transport %q", ErrInvalidSpec, s)
}

// Default measurement parameters.
//
// The destination is the project's netperfmeter server. The traffic pattern
// is a short unidirectional burst: a handful of large frames per second for
// a few seconds, repeated every six hours.
const (
	DefaultDestAddr = "185.196.88.34"
	DefaultDestPort = 15211
	DefaultRuntime  = 5 * time.Second
	DefaultInterval = 6 * time.Hour

	DefaultOutgoingFrameRate = 30     // frames per second
	DefaultOutgoingFrameSize = 166666 // bytes
	DefaultIncomingFrameRate = 0
	DefaultIncomingFrameSize = 0

	DefaultTransport = UDP

	// Maximum measurement runtime. Longer runs would interfere with other
	// experiments scheduled on the node.
	maxRuntime = 60 * time.Second
)

// Parameters for a single netperfmeter run.
type Spec struct {
	DestAddr  string        // Destination address of the netperfmeter server.
	DestPort  int           // Destination port.
	Runtime   time.Duration // How long to transmit.
	Transport Transport     // Transport protocol for the measurement flow.

	OutgoingFrameRate int // Outgoing frames per second.
	OutgoingFrameSize int // Outgoing frame size in bytes.
	IncomingFrameRate int // Incoming frames per second.
	IncomingFrameSize int // Incoming frame size in bytes.
}

// Returns a spec populated with the default measurement parameters.
func DefaultSpec() Spec {
	return Spec{
		DestAddr:          DefaultDestAddr,
		DestPort:          DefaultDestPort,
		Runtime:           DefaultRuntime,
		Transport:         DefaultTransport,
		OutgoingFrameRate: DefaultOutgoingFrameRate,
		OutgoingFrameSize: DefaultOutgoingFrameSize,
		IncomingFrameRate: DefaultIncomingFrameRate,
		IncomingFrameSize: DefaultIncomingFrameSize,
	}
}

// Checks the spec for values netperfmeter would reject or that violate the
// node's scheduling constraints.
func (s Spec) Validate() error {
	if s.DestAddr == "" {
		return fmt.Errorf("%w: empty destination address", ErrInvalidSpec)
	}
	if s.DestPort < 1 || s.DestPort > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidSpec, s.DestPort)
	}
	if s.Runtime < 0 || s.Runtime > maxRuntime {
		return fmt.Errorf("%w: runtime %s", ErrInvalidSpec, s.Runtime)
	}
	if _, err := ParseTransport(string(s.Transport)); err != nil {
		return err
	}
	if s.OutgoingFrameRate < 0 || s.OutgoingFrameSize < 0 ||
		s.IncomingFrameRate < 0 || s.IncomingFrameSize < 0 {
		return fmt.Errorf("%w: negative frame parameter", ErrInvalidSpec)
	}
	return nil
}

// Renders the netperfmeter flow specification for the spec's traffic
// pattern.
//
// netperfmeter describes a bidirectional flow as four colon-separated
// random variables: outgoing rate, outgoing size, incoming rate, incoming
// size. Constant distributions are used throughout.
func (s Spec) flowSpec() string {
	return fmt.Sprintf("const%d:const%d:const%d:const%d",
		s.OutgoingFrameRate, s.OutgoingFrameSize,
		s.IncomingFrameRate, s.IncomingFrameSize,
	)
}
