package service

import (
	"context"
	"fmt"

	"vent_bridge/internal/bus"
	"vent_bridge/internal/logger"
	"vent_bridge/internal/models"
)

// Fixed readings reported when the bus link was never established. They let
// the bridge serve a disconnected/demo deployment instead of erroring.
const (
	simStatus = 1
	simTempC  = 20.0
	simSpeed  = 1
)

// StatusService reads one unit's on/off bit, temperature and fan speed.
type StatusService struct {
	tr        bus.Transport
	connected bool
	log       *logger.Logger
}

func NewStatusService(tr bus.Transport, log *logger.Logger) *StatusService {
	return &StatusService{tr: tr, connected: tr.Connected(), log: log}
}

// Read performs three sequential bus transactions: the on/off discrete
// input, then the temperature and speed input registers. An individual
// read fault defaults that field to 0 rather than aborting the read; the
// caller still gets a best-effort status. Read errors only when the query
// addresses are malformed or every transaction failed (unit unreachable).
func (s *StatusService) Read(ctx context.Context, q models.VentQuery) (models.UnitStatus, error) {
	if q.SlaveID == 0 {
		q.SlaveID = models.DefaultSlaveID
	}

	slave, ok := toUint8(q.SlaveID)
	if !ok {
		return models.UnitStatus{}, fmt.Errorf("slave id %d outside the valid unit range", q.SlaveID)
	}
	onAddr, ok := toUint16(q.OnAddress)
	if !ok {
		return models.UnitStatus{}, fmt.Errorf("on/off address %d outside the valid register range", q.OnAddress)
	}
	tempAddr, ok := toUint16(q.TempAddress)
	if !ok {
		return models.UnitStatus{}, fmt.Errorf("temperature address %d outside the valid register range", q.TempAddress)
	}
	speedAddr, ok := toUint16(q.SpeedAddress)
	if !ok {
		return models.UnitStatus{}, fmt.Errorf("speed address %d outside the valid register range", q.SpeedAddress)
	}

	if !s.connected {
		return models.UnitStatus{
			SlaveID: q.SlaveID,
			Status:  simStatus,
			Temp:    simTempC,
			Speed:   simSpeed,
		}, nil
	}
	if err := ctx.Err(); err != nil {
		return models.UnitStatus{}, err
	}

	st := models.UnitStatus{SlaveID: q.SlaveID}
	faults := 0

	on, err := s.tr.ReadDiscreteInput(onAddr, slave)
	switch {
	case err != nil:
		s.logReadFault("on_off", q.SlaveID, q.OnAddress, err)
		faults++
	case on:
		st.Status = 1
	}

	if regs, err := s.tr.ReadInputRegisters(tempAddr, 1, slave); err != nil {
		s.logReadFault("temperature", q.SlaveID, q.TempAddress, err)
		faults++
	} else if len(regs) > 0 {
		st.Temp = float64(regs[0]) / 10
	}

	if regs, err := s.tr.ReadInputRegisters(speedAddr, 1, slave); err != nil {
		s.logReadFault("speed", q.SlaveID, q.SpeedAddress, err)
		faults++
	} else if len(regs) > 0 {
		st.Speed = int(regs[0])
	}

	if faults == 3 {
		return models.UnitStatus{}, fmt.Errorf("unit %d unreachable: all reads failed", q.SlaveID)
	}
	return st, nil
}

func (s *StatusService) logReadFault(field string, slaveID, address int, err error) {
	if s.log != nil {
		s.log.Warnw("status_read_failed", "field", field, "slave_id", slaveID, "address", address, "err", err)
	}
}
