package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/simula/nperfd/internal/config"
)

// Modem state update published by the metadata broker.
//
// IMSIMCCMNC identifies the SIM's home carrier, NWMCCMNC the network the
// modem is currently registered on. The two differ when roaming.
type ModemUpdate struct {
	Interface  string `json:"InterfaceName"` // Network interface backing the modem.
	IMSIMCCMNC string `json:"IMSIMCCMNC"`    // Home carrier MCC+MNC from the SIM.
	NWMCCMNC   string `json:"NWMCCMNC"`      // MCC+MNC of the serving network.
	ICCID      string `json:"ICCID"`         // SIM card identifier.
}

// Decodes a modem update payload.
//
// The broker is not consistent about numeric fields: depending on the
// metadata source, MCC/MNC values and the ICCID arrive either as JSON
// strings or as numbers. Both are accepted.
func ParseUpdate(payload []byte) (*ModemUpdate, error) {
	var raw struct {
		Interface  string          `json:"InterfaceName"`
		IMSIMCCMNC json.RawMessage `json:"IMSIMCCMNC"`
		NWMCCMNC   json.RawMessage `json:"NWMCCMNC"`
		ICCID      json.RawMessage `json:"ICCID"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	u := &ModemUpdate{
		Interface:  raw.Interface,
		IMSIMCCMNC: flexString(raw.IMSIMCCMNC),
		NWMCCMNC:   flexString(raw.NWMCCMNC),
		ICCID:      flexString(raw.ICCID),
	}

	if u.Interface == "" {
		return nil, fmt.Errorf("%w: missing InterfaceName", ErrMalformed)
	}
	if len(u.IMSIMCCMNC) < 4 {
		return nil, fmt.Errorf("%w: IMSIMCCMNC %q", ErrMalformed, u.IMSIMCCMNC)
	}

	return u, nil
}

// Returns the mobile country code of the SIM's home carrier.
func (u *ModemUpdate) MCC() string {
	return u.IMSIMCCMNC[:3]
}

// Returns the mobile network code of the SIM's home carrier.
func (u *ModemUpdate) MNC() string {
	return u.IMSIMCCMNC[3:]
}

// Reports whether the modem is roaming.
//
// Roaming means the serving network is not the SIM's home carrier.
func (u *ModemUpdate) Roaming() bool {
	return u.IMSIMCCMNC != u.NWMCCMNC
}

// Reports whether the update matches the experiment's target carrier.
//
// The carrier matches when MCC and MNC are equal. An experiment without an
// ICCID matches any SIM on the carrier; with an ICCID, the SIM must match
// too.
func (u *ModemUpdate) Matches(exp *config.Experiment) bool {
	if u.MCC() != exp.MCC || u.MNC() != exp.MNC {
		return false
	}
	return exp.ICCID == "" || exp.ICCID == u.ICCID
}

// Renders a raw JSON value as a string, accepting both string and number
// encodings. Anything else becomes the empty string.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	// Numbers decode into json.Number to avoid float formatting artifacts.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return strings.TrimSpace(n.String())
	}

	return ""
}
