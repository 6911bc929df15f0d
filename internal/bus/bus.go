package bus

import (
	"errors"
	"time"
)

// Transport is the single shared handle to the vent field bus. Every bus
// transaction in the process goes through one Transport, which serializes
// them internally; callers never observe interleaved wire traffic.
//
// Each operation is bounded by the configured per-transaction timeout and
// reports faults as returned errors, never panics.
type Transport interface {
	WriteCoil(address uint16, on bool, slaveID uint8) error
	WriteRegister(address, value uint16, slaveID uint8) error
	ReadDiscreteInput(address uint16, slaveID uint8) (bool, error)
	ReadInputRegisters(address, count uint16, slaveID uint8) ([]uint16, error)

	// Connected reports whether the physical link was established at open
	// time. A disconnected transport fails every transaction with
	// ErrNotConnected; callers use this to switch to demo-mode behavior.
	Connected() bool

	Close() error
}

// ErrNotConnected is returned by every transaction on a transport whose
// physical link was never established.
var ErrNotConnected = errors.New("bus: device not connected")

// Bus transport modes.
const (
	ModeRTU = "rtu"
	ModeTCP = "tcp"
)

// Config describes how to reach the field bus.
type Config struct {
	Mode     string        // rtu | tcp
	Device   string        // serial device path (rtu)
	BaudRate int           // rtu
	DataBits int           // rtu
	Parity   string        // rtu: N | E | O
	StopBits int           // rtu
	Endpoint string        // host:port (tcp)
	Timeout  time.Duration // per-transaction bound
}
