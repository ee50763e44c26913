package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		exp     Experiment
		wantErr bool
	}{
		{
			name: "valid without iccid",
			exp:  Experiment{MeasurementID: 1, MCC: "242", MNC: "01"},
		},
		{
			name: "valid with iccid",
			exp:  Experiment{ICCID: "89470000000000000001", MeasurementID: 7, MCC: "242", MNC: "002"},
		},
		{
			name:    "zero measurement id",
			exp:     Experiment{MCC: "242", MNC: "01"},
			wantErr: true,
		},
		{
			name:    "negative measurement id",
			exp:     Experiment{MeasurementID: -3, MCC: "242", MNC: "01"},
			wantErr: true,
		},
		{
			name:    "short mcc",
			exp:     Experiment{MeasurementID: 1, MCC: "24", MNC: "01"},
			wantErr: true,
		},
		{
			name:    "non-numeric mcc",
			exp:     Experiment{MeasurementID: 1, MCC: "24x", MNC: "01"},
			wantErr: true,
		},
		{
			name:    "short mnc",
			exp:     Experiment{MeasurementID: 1, MCC: "242", MNC: "1"},
			wantErr: true,
		},
		{
			name:    "long mnc",
			exp:     Experiment{MeasurementID: 1, MCC: "242", MNC: "0001"},
			wantErr: true,
		},
		{
			name:    "short iccid",
			exp:     Experiment{ICCID: "8947", MeasurementID: 1, MCC: "242", MNC: "01"},
			wantErr: true,
		},
		{
			name:    "non-numeric iccid",
			exp:     Experiment{ICCID: "89470000000000000X01", MeasurementID: 1, MCC: "242", MNC: "01"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.exp.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidField) {
					t.Fatalf("error = %v, want ErrInvalidField", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config",
		`{"iccid": "89470000000000000001", "measurement_id": 42, "mcc": "242", "mnc": "01"}`)

	exp, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.MeasurementID != 42 {
		t.Errorf("MeasurementID = %d, want 42", exp.MeasurementID)
	}
	if exp.MCC != "242" || exp.MNC != "01" {
		t.Errorf("carrier = %s/%s, want 242/01", exp.MCC, exp.MNC)
	}
	if exp.ICCID != "89470000000000000001" {
		t.Errorf("ICCID = %q", exp.ICCID)
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := writeFile(t, "config",
		`{"measurement_id": 1, "mcc": "242", "mnc": "01", "script": "netperfmeter"}`)

	if _, err := Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "not json",
			content: "mcc=242",
		},
		{
			name:    "invalid config",
			content: `{"measurement_id": 0, "mcc": "242", "mnc": "01"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config", tt.content)
			if _, err := Load(path); !errors.Is(err, ErrConfig) {
				t.Fatalf("error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrConfig) {
		t.Fatalf("error = %v, want ErrConfig", err)
	}
}

func TestReadNodeID(t *testing.T) {
	path := writeFile(t, "nodeid", " 534\n")

	id, err := ReadNodeID(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 534 {
		t.Errorf("id = %d, want 534", id)
	}
}

func TestReadNodeIDInvalid(t *testing.T) {
	path := writeFile(t, "nodeid", "node-534")

	if _, err := ReadNodeID(path); !errors.Is(err, ErrNodeID) {
		t.Fatalf("error = %v, want ErrNodeID", err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
