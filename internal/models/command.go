package models

import "time"

// Recognized command actions. An action fully determines whether the
// command targets a coil or a register.
const (
	ActionCoil     = "coil"
	ActionTemp     = "temp"
	ActionFanSpeed = "fan_speed"
)

// DefaultSlaveID is used when a command or query omits slave_id.
const DefaultSlaveID = 1

// Command is one control instruction for a vent unit on the bus.
type Command struct {
	Action  string `json:"action" binding:"required"` // coil | temp | fan_speed
	Value   int    `json:"value"`
	Address int    `json:"address"`
	SlaveID int    `json:"slave_id"`
}

// CommandOutcome is the result of executing a single Command.
type CommandOutcome struct {
	Command   Command `json:"command"`
	Succeeded bool    `json:"succeeded"`
	Message   string  `json:"message"`
}

// CommandRun is the retrievable record of one bulk command batch.
type CommandRun struct {
	RunID       string           `json:"run_id"`
	SubmittedAt time.Time        `json:"submitted_at"`
	Accepted    int              `json:"accepted"`
	Done        bool             `json:"done"`
	Outcomes    []CommandOutcome `json:"outcomes"`
}
