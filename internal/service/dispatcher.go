package service

import (
	"context"
	"fmt"
	"math"

	"vent_bridge/internal/bus"
	"vent_bridge/internal/logger"
	"vent_bridge/internal/models"
)

// Outcome messages. Temperature registers carry tenths of a degree, so the
// reported setpoint is the raw value divided by ten.
const (
	msgNotConnected  = "Modbus device not connected"
	msgInvalidAction = "Invalid action specified"
	msgCanceled      = "Command canceled before execution"
)

// DispatcherService executes single control commands against the bus.
type DispatcherService struct {
	tr        bus.Transport
	connected bool // link state captured at construction
	log       *logger.Logger
}

func NewDispatcherService(tr bus.Transport, log *logger.Logger) *DispatcherService {
	return &DispatcherService{tr: tr, connected: tr.Connected(), log: log}
}

// Execute runs exactly one bus write (coil or register, never both) and
// converts any transport fault into a failed outcome. It never panics and
// never lets a bus error escape to the caller.
func (s *DispatcherService) Execute(ctx context.Context, cmd models.Command) models.CommandOutcome {
	if cmd.SlaveID == 0 {
		cmd.SlaveID = models.DefaultSlaveID
	}
	if err := ctx.Err(); err != nil {
		return failed(cmd, msgCanceled)
	}
	if !s.connected {
		return failed(cmd, msgNotConnected)
	}

	switch cmd.Action {
	case models.ActionCoil, models.ActionTemp, models.ActionFanSpeed:
	default:
		return failed(cmd, msgInvalidAction)
	}

	addr, ok := toUint16(cmd.Address)
	if !ok {
		return failed(cmd, fmt.Sprintf("Address %d outside the valid register range", cmd.Address))
	}
	slave, ok := toUint8(cmd.SlaveID)
	if !ok {
		return failed(cmd, fmt.Sprintf("Slave id %d outside the valid unit range", cmd.SlaveID))
	}

	var (
		err error
		msg string
	)
	switch cmd.Action {
	case models.ActionCoil:
		err = s.tr.WriteCoil(addr, cmd.Value != 0, slave)
		msg = fmt.Sprintf("Coil at address %d set to %d", cmd.Address, cmd.Value)
	case models.ActionTemp:
		value, vok := toUint16(cmd.Value)
		if !vok {
			return failed(cmd, fmt.Sprintf("Value %d outside the valid register range", cmd.Value))
		}
		err = s.tr.WriteRegister(addr, value, slave)
		msg = fmt.Sprintf("Temperature at address %d set to %.1f°C", cmd.Address, float64(cmd.Value)/10)
	case models.ActionFanSpeed:
		value, vok := toUint16(cmd.Value)
		if !vok {
			return failed(cmd, fmt.Sprintf("Value %d outside the valid register range", cmd.Value))
		}
		err = s.tr.WriteRegister(addr, value, slave)
		msg = fmt.Sprintf("Fan speed at address %d set to %d", cmd.Address, cmd.Value)
	}

	if err != nil {
		if s.log != nil {
			s.log.Errorw("command_write_failed", "err", err,
				"action", cmd.Action, "address", cmd.Address, "slave_id", cmd.SlaveID)
		}
		return failed(cmd, msg)
	}
	return models.CommandOutcome{Command: cmd, Succeeded: true, Message: msg}
}

func failed(cmd models.Command, msg string) models.CommandOutcome {
	return models.CommandOutcome{Command: cmd, Succeeded: false, Message: msg}
}

func toUint16(v int) (uint16, bool) {
	if v < 0 || v > math.MaxUint16 {
		return 0, false
	}
	return uint16(v), true
}

func toUint8(v int) (uint8, bool) {
	if v < 0 || v > math.MaxUint8 {
		return 0, false
	}
	return uint8(v), true
}
