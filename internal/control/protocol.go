package control

import (
	"encoding/json"
	"fmt"
)

// Command carried in a control envelope.
type Command string

const (
	CmdStatus Command = "status" // Query launcher state.
	CmdStop   Command = "stop"   // Request a graceful shutdown.
	CmdOK     Command = "ok"     // Successful response.
	CmdError  Command = "error"  // Error response.
)

// Wire envelope for one control exchange.
//
// A connection carries exactly one newline-delimited envelope in each
// direction.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Launcher state reported in response to a status command.
type StatusResult struct {
	Version   string           `json:"version"`
	Pid       int              `json:"pid"`
	NodeID    int              `json:"node_id"`
	Uptime    string           `json:"uptime"`
	Instances []InstanceStatus `json:"instances"`
}

// State of a single measurement instance.
type InstanceStatus struct {
	MeasurementID int    `json:"measurement_id"`
	Interface     string `json:"interface"`
	State         string `json:"state"`
	Cycles        int    `json:"cycles"`
	Failures      int    `json:"failures"`
}

// Error payload for failed commands.
type ErrorResult struct {
	Message string `json:"message"`
}

// Serializes a command and payload into an envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		env.Payload = raw
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return data, nil
}

// Parses an envelope from a wire message.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if env.Command == "" {
		return Envelope{}, fmt.Errorf("%w: missing command", ErrProtocol)
	}
	return env, nil
}

// Parses a typed payload from an envelope's raw payload.
func DecodePayload[T any](raw json.RawMessage) (*T, error) {
	var v T
	if len(raw) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return &v, nil
}
