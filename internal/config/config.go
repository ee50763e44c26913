package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ICCID length bounds in digits. ICCIDs are 19 or 20 digits in practice,
// but SIM vendors occasionally truncate or pad, so the bounds are loose.
const (
	iccidMinDigits = 18
	iccidMaxDigits = 22
)

// Experiment configuration deployed to the node as a flat JSON object.
//
// The scheduler writes this file before starting the experiment container.
// Keys beyond the known set are ignored so that scheduler-side additions do
// not break older experiment images.
type Experiment struct {
	ICCID         string `json:"iccid,omitempty"` // SIM card identifier. Empty matches any SIM on the carrier.
	MeasurementID int    `json:"measurement_id"`  // Measurement instance identifier, used in result file names.
	MCC           string `json:"mcc"`             // Mobile country code of the target carrier.
	MNC           string `json:"mnc"`             // Mobile network code of the target carrier.
}

// Reads and validates the experiment configuration file.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	var exp Experiment
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}

	if err := exp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}

	return &exp, nil
}

// Checks that the configuration identifies a measurement and a carrier.
//
// The measurement ID must be positive. MCC is always three digits and MNC
// two or three digits. The ICCID is optional; when present it must look
// like a SIM card identifier.
func (e *Experiment) Validate() error {
	if e.MeasurementID <= 0 {
		return fmt.Errorf("%w: measurement_id %d", ErrInvalidField, e.MeasurementID)
	}
	if !allDigits(e.MCC) || len(e.MCC) != 3 {
		return fmt.Errorf("%w: mcc %q", ErrInvalidField, e.MCC)
	}
	if !allDigits(e.MNC) || len(e.MNC) < 2 || len(e.MNC) > 3 {
		return fmt.Errorf("%w: mnc %q", ErrInvalidField, e.MNC)
	}
	if e.ICCID != "" {
		if !allDigits(e.ICCID) || len(e.ICCID) < iccidMinDigits || len(e.ICCID) > iccidMaxDigits {
			return fmt.Errorf("%w: iccid %q", ErrInvalidField, e.ICCID)
		}
	}
	return nil
}

// Reads the node identity file.
//
// The file contains a single integer, the node's identifier within the
// testbed. Surrounding whitespace is tolerated.
func ReadNodeID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNodeID, err)
	}

	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNodeID, path, err)
	}

	return id, nil
}

// Reports whether s is non-empty and consists only of ASCII digits.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
