package control

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	status := &StatusResult{
		Version: "0.1.0",
		Pid:     1234,
		NodeID:  534,
		Uptime:  "1h0m0s",
		Instances: []InstanceStatus{
			{MeasurementID: 42, Interface: "op0", State: "running", Cycles: 3, Failures: 1},
		},
	}

	data, err := Encode(CmdOK, status)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Command != CmdOK {
		t.Fatalf("command = %q, want %q", env.Command, CmdOK)
	}

	got, err := DecodePayload[StatusResult](env.Payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.NodeID != 534 || got.Pid != 1234 {
		t.Errorf("payload = %+v", got)
	}
	if len(got.Instances) != 1 || got.Instances[0].MeasurementID != 42 {
		t.Errorf("instances = %+v", got.Instances)
	}
}

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(CmdStop, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.Payload) != 0 {
		t.Fatalf("payload = %q, want empty", env.Payload)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "not json",
			data: "status",
		},
		{
			name: "missing command",
			data: `{"payload": {}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); !errors.Is(err, ErrProtocol) {
				t.Fatalf("error = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	res, err := DecodePayload[ErrorResult](nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "" {
		t.Fatalf("message = %q, want empty", res.Message)
	}
}
