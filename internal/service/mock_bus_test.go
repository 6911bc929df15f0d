package service

import (
	"sync"
)

// busStub is a configurable in-memory Transport for service tests.
type busStub struct {
	mu        sync.Mutex
	connected bool

	coilErr     error
	regErr      error
	discreteErr error
	inputErr    error

	discreteBit bool
	registers   map[uint16]uint16 // address -> value for input register reads

	coilCalls     int
	regCalls      int
	discreteCalls int
	inputCalls    int

	lastCoilAddr  uint16
	lastCoilOn    bool
	lastCoilSlave uint8
	lastRegAddr   uint16
	lastRegValue  uint16
	lastRegSlave  uint8
}

func newBusStub(connected bool) *busStub {
	return &busStub{connected: connected, registers: make(map[uint16]uint16)}
}

func (b *busStub) Connected() bool { return b.connected }
func (b *busStub) Close() error    { return nil }

func (b *busStub) WriteCoil(address uint16, on bool, slaveID uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.coilCalls++
	b.lastCoilAddr, b.lastCoilOn, b.lastCoilSlave = address, on, slaveID
	return b.coilErr
}

func (b *busStub) WriteRegister(address, value uint16, slaveID uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regCalls++
	b.lastRegAddr, b.lastRegValue, b.lastRegSlave = address, value, slaveID
	return b.regErr
}

func (b *busStub) ReadDiscreteInput(address uint16, slaveID uint8) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.discreteCalls++
	if b.discreteErr != nil {
		return false, b.discreteErr
	}
	return b.discreteBit, nil
}

func (b *busStub) ReadInputRegisters(address, count uint16, slaveID uint8) ([]uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inputCalls++
	if b.inputErr != nil {
		return nil, b.inputErr
	}
	out := make([]uint16, count)
	for i := uint16(0); i < count; i++ {
		out[i] = b.registers[address+i]
	}
	return out, nil
}

func (b *busStub) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.coilCalls + b.regCalls + b.discreteCalls + b.inputCalls
}
