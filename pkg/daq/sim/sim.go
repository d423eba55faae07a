// Package sim provides an in-memory DAQ board for tests and dry runs.
//
// The simulated board models latched outputs and configurable input wiring:
// a read on a port returns whatever was last written to the port wired into
// it. The default wiring matches the bench loopback harness (0↔2, 1↔3).
// Fault injection covers the failure modes the tester must survive: stuck
// lines, flipped bits, and driver-level I/O errors.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dkoosis/loopcheck/pkg/daq"
)

func init() {
	daq.Register("sim", open)
}

// open maps simulated device names to canned boards. "loop" (and the empty
// name) is the correctly wired harness; "open" is a board with no loopback
// connectors fitted, so every input floats low.
func open(name string) (daq.Device, error) {
	switch name {
	case "", "loop":
		return NewLoopback(), nil
	case "open":
		return New(nil), nil
	default:
		return nil, fmt.Errorf("sim: %q: %w", name, daq.ErrDeviceNotFound)
	}
}

// Board is a simulated 4-port device.
type Board struct {
	mu      sync.Mutex
	outputs [daq.NumPorts]byte
	wiring  map[int]int // input port -> source port whose output it samples
	closed  bool

	stuck      map[int]byte  // input port -> fixed read value
	flip       map[int]byte  // input port -> XOR mask applied on read
	readErrs   map[int]error // input port -> injected read fault
	writeErrs  map[int]error // output port -> injected write fault
}

// Option configures a Board.
type Option func(*Board)

// WithStuck forces reads of port to always return value, regardless of
// wiring.
func WithStuck(port int, value byte) Option {
	return func(b *Board) { b.stuck[port] = value }
}

// WithBitFlip XORs mask into every read of port, simulating shorted or
// crossed lines.
func WithBitFlip(port int, mask byte) Option {
	return func(b *Board) { b.flip[port] = mask }
}

// WithReadError makes reads of port fail with err.
func WithReadError(port int, err error) Option {
	return func(b *Board) { b.readErrs[port] = err }
}

// WithWriteError makes writes to port fail with err.
func WithWriteError(port int, err error) Option {
	return func(b *Board) { b.writeErrs[port] = err }
}

// New creates a board with the given input wiring. A nil or empty wiring
// means no port is connected to anything; reads return 0x00 (all lines
// floating low).
func New(wiring map[int]int, opts ...Option) *Board {
	b := &Board{
		wiring:    map[int]int{},
		stuck:     map[int]byte{},
		flip:      map[int]byte{},
		readErrs:  map[int]error{},
		writeErrs: map[int]error{},
	}
	for in, src := range wiring {
		b.wiring[in] = src
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewLoopback creates a board wired like the test harness: port 0's outputs
// feed port 2's inputs and vice versa, same for 1 and 3.
func NewLoopback(opts ...Option) *Board {
	return New(map[int]int{0: 2, 2: 0, 1: 3, 3: 1}, opts...)
}

// WritePort implements daq.Device.
func (b *Board) WritePort(port int, value byte) error {
	if !daq.ValidPort(port) {
		return &daq.PortIOError{Port: port, Op: "write", Err: errInvalidPort}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return &daq.PortIOError{Port: port, Op: "write", Err: errClosed}
	}
	if err, ok := b.writeErrs[port]; ok {
		return &daq.PortIOError{Port: port, Op: "write", Err: err}
	}
	b.outputs[port] = value
	return nil
}

// ReadPort implements daq.Device.
func (b *Board) ReadPort(port int) (byte, error) {
	if !daq.ValidPort(port) {
		return 0, &daq.PortIOError{Port: port, Op: "read", Err: errInvalidPort}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, &daq.PortIOError{Port: port, Op: "read", Err: errClosed}
	}
	if err, ok := b.readErrs[port]; ok {
		return 0, &daq.PortIOError{Port: port, Op: "read", Err: err}
	}
	if v, ok := b.stuck[port]; ok {
		return v, nil
	}
	var v byte
	if src, ok := b.wiring[port]; ok {
		v = b.outputs[src]
	}
	return v ^ b.flip[port], nil
}

// Close implements daq.Device.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

var (
	errInvalidPort = errors.New("invalid port")
	errClosed      = errors.New("device closed")
)
