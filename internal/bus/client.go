package bus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goburrow/modbus"
)

// Coil write payloads defined by the protocol.
const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// Client is the production Transport over a goburrow/modbus handler.
// A single mutex guards the handler: the unit id is mutated per
// transaction, and the underlying link is half-duplex with one master,
// so transactions must never interleave.
type Client struct {
	mu       sync.Mutex
	client   modbus.Client
	setSlave func(uint8)
	closer   func() error
	connect  bool
}

// Open builds a client from config and establishes the physical link.
// A connect failure is returned as an error; callers that want to keep
// serving in demo mode should fall back to NewDisconnected.
func Open(cfg Config) (*Client, error) {
	switch cfg.Mode {
	case ModeRTU:
		return openRTU(cfg)
	case ModeTCP:
		return openTCP(cfg)
	default:
		return nil, fmt.Errorf("bus: unknown mode %q", cfg.Mode)
	}
}

func openRTU(cfg Config) (*Client, error) {
	if cfg.Device == "" {
		return nil, errors.New("bus: serial device required for rtu mode")
	}
	h := modbus.NewRTUClientHandler(cfg.Device)
	h.BaudRate = cfg.BaudRate
	h.DataBits = cfg.DataBits
	h.Parity = cfg.Parity
	h.StopBits = cfg.StopBits
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("bus: connect rtu %s: %w", cfg.Device, err)
	}
	return &Client{
		client:   modbus.NewClient(h),
		setSlave: func(id uint8) { h.SlaveId = id },
		closer:   h.Close,
		connect:  true,
	}, nil
}

func openTCP(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("bus: endpoint required for tcp mode")
	}
	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("bus: connect tcp %s: %w", cfg.Endpoint, err)
	}
	return &Client{
		client:   modbus.NewClient(h),
		setSlave: func(id uint8) { h.SlaveId = id },
		closer:   h.Close,
		connect:  true,
	}, nil
}

// NewDisconnected returns a transport with no physical link. Every
// transaction fails with ErrNotConnected; Connected reports false so
// callers can substitute demo-mode values.
func NewDisconnected() *Client {
	return &Client{}
}

func (c *Client) Connected() bool { return c.connect }

// Close releases the physical link, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// WriteCoil writes a boolean output at address on the given unit.
func (c *Client) WriteCoil(address uint16, on bool, slaveID uint8) error {
	if !c.connect {
		return ErrNotConnected
	}
	value := coilOff
	if on {
		value = coilOn
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSlave(slaveID)
	_, err := c.client.WriteSingleCoil(address, value)
	return err
}

// WriteRegister writes a single holding register at address on the given unit.
func (c *Client) WriteRegister(address, value uint16, slaveID uint8) error {
	if !c.connect {
		return ErrNotConnected
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSlave(slaveID)
	_, err := c.client.WriteSingleRegister(address, value)
	return err
}

// ReadDiscreteInput reads one discrete input bit at address on the given unit.
func (c *Client) ReadDiscreteInput(address uint16, slaveID uint8) (bool, error) {
	if !c.connect {
		return false, ErrNotConnected
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSlave(slaveID)
	data, err := c.client.ReadDiscreteInputs(address, 1)
	if err != nil {
		return false, err
	}
	if len(data) < 1 {
		return false, errors.New("bus: short discrete input payload")
	}
	return data[0]&0x01 != 0, nil
}

// ReadInputRegisters reads count input registers starting at address on the
// given unit.
func (c *Client) ReadInputRegisters(address, count uint16, slaveID uint8) ([]uint16, error) {
	if !c.connect {
		return nil, ErrNotConnected
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSlave(slaveID)
	data, err := c.client.ReadInputRegisters(address, count)
	if err != nil {
		return nil, err
	}
	if len(data) < int(count)*2 {
		return nil, fmt.Errorf("bus: short register payload: got %d bytes, want %d", len(data), count*2)
	}
	return unpackRegisters(data[:count*2]), nil
}

// unpackRegisters converts a big-endian register payload to values.
func unpackRegisters(data []byte) []uint16 {
	out := make([]uint16, len(data)/2)
	for i := range out {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
