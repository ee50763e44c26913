package metadata

import (
	"errors"
	"testing"

	"github.com/simula/nperfd/internal/config"
)

func TestParseUpdate(t *testing.T) {
	payload := []byte(`{
		"InterfaceName": "op0",
		"IMSIMCCMNC": "24201",
		"NWMCCMNC": "24201",
		"ICCID": "89470000000000000001"
	}`)

	u, err := ParseUpdate(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Interface != "op0" {
		t.Errorf("Interface = %q, want op0", u.Interface)
	}
	if u.MCC() != "242" {
		t.Errorf("MCC = %q, want 242", u.MCC())
	}
	if u.MNC() != "01" {
		t.Errorf("MNC = %q, want 01", u.MNC())
	}
	if u.Roaming() {
		t.Error("Roaming = true, want false")
	}
}

func TestParseUpdateNumericFields(t *testing.T) {
	// Some metadata sources publish MCC/MNC and ICCID as JSON numbers.
	payload := []byte(`{
		"InterfaceName": "op1",
		"IMSIMCCMNC": 24202,
		"NWMCCMNC": 24201,
		"ICCID": 89470000000000000002
	}`)

	u, err := ParseUpdate(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.IMSIMCCMNC != "24202" {
		t.Errorf("IMSIMCCMNC = %q, want 24202", u.IMSIMCCMNC)
	}
	if u.ICCID != "89470000000000000002" {
		t.Errorf("ICCID = %q", u.ICCID)
	}
	if !u.Roaming() {
		t.Error("Roaming = false, want true")
	}
}

func TestParseUpdateErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "not json",
			payload: "InterfaceName=op0",
		},
		{
			name:    "missing interface",
			payload: `{"IMSIMCCMNC": "24201", "NWMCCMNC": "24201"}`,
		},
		{
			name:    "short imsi",
			payload: `{"InterfaceName": "op0", "IMSIMCCMNC": "242"}`,
		},
		{
			name:    "missing imsi",
			payload: `{"InterfaceName": "op0"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseUpdate([]byte(tt.payload)); !errors.Is(err, ErrMalformed) {
				t.Fatalf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	update := &ModemUpdate{
		Interface:  "op0",
		IMSIMCCMNC: "24201",
		NWMCCMNC:   "24201",
		ICCID:      "89470000000000000001",
	}

	tests := []struct {
		name string
		exp  config.Experiment
		want bool
	}{
		{
			name: "carrier match without iccid",
			exp:  config.Experiment{MCC: "242", MNC: "01"},
			want: true,
		},
		{
			name: "carrier and iccid match",
			exp:  config.Experiment{MCC: "242", MNC: "01", ICCID: "89470000000000000001"},
			want: true,
		},
		{
			name: "wrong mcc",
			exp:  config.Experiment{MCC: "262", MNC: "01"},
		},
		{
			name: "wrong mnc",
			exp:  config.Experiment{MCC: "242", MNC: "02"},
		},
		{
			name: "wrong iccid",
			exp:  config.Experiment{MCC: "242", MNC: "01", ICCID: "89470000000000000099"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := update.Matches(&tt.exp); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
