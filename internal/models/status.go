package models

import "time"

// UnitStatus is one best-effort status reading of a single vent unit.
// Field names mirror the wire response of GET /api/status.
type UnitStatus struct {
	SlaveID int     `json:"slave_id"`
	Status  int     `json:"Status"` // 0|1 from the on/off discrete input
	Temp    float64 `json:"Temp"`   // register value / 10, °C
	Speed   int     `json:"Speed"`
}

// VentQuery is the addressing triple needed to poll one unit in a bulk run.
type VentQuery struct {
	SlaveID      int `json:"slave_id"`
	OnAddress    int `json:"on"`
	TempAddress  int `json:"temp"`
	SpeedAddress int `json:"speed"`
}

// VentResult is one unit's entry in a bulk status snapshot.
// Status carries 0|1 on success or the string "error" when the reader
// failed for that unit; VentNumber is nil when the two address-derived
// formulas disagree (or on error).
type VentResult struct {
	SlaveID    int     `json:"slave_id"`
	Status     any     `json:"Status"`
	Temp       float64 `json:"Temp"`
	Speed      int     `json:"Speed"`
	Message    string  `json:"message,omitempty"`
	VentNumber *int    `json:"vent_number"`
}

// BulkSnapshot is the completed output of one bulk status run. Exactly one
// snapshot is retained at a time; each completed run overwrites the last.
type BulkSnapshot struct {
	Results    []VentResult `json:"results"`
	CapturedAt time.Time    `json:"captured_at"`
}
