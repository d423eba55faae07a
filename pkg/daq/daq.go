// Package daq abstracts the vendor DAQ driver behind a minimal port I/O
// interface. Backends register themselves by scheme; the real NI-DAQmx
// binding lives in pkg/daq/nidaqmx, the simulated board in pkg/daq/sim.
package daq

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// NumPorts is the number of 8-bit digital ports on the board.
const NumPorts = 4

// Fatal open-time errors. Either one aborts the run before any tests
// execute (exit code 2 at the CLI).
var (
	// ErrDeviceNotFound indicates the named device is not present.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDriverUnavailable indicates the vendor driver runtime is not
	// installed or could not be loaded.
	ErrDriverUnavailable = errors.New("driver unavailable")
)

// PortIOError is a per-operation driver fault on a single port. It is
// non-fatal: the caller records the affected test as failed and continues.
type PortIOError struct {
	Port int
	Op   string // "write" or "read"
	Err  error
}

func (e *PortIOError) Error() string {
	return fmt.Sprintf("port %d: %s: %v", e.Port, e.Op, e.Err)
}

func (e *PortIOError) Unwrap() error { return e.Err }

// Device is the driver collaborator: byte-wide writes and reads addressing
// ports 0-3. Implementations are not required to be safe for concurrent
// use; the board is a single shared bus and callers access it sequentially.
type Device interface {
	// WritePort drives all 8 lines of the port with value.
	WritePort(port int, value byte) error

	// ReadPort samples all 8 lines of the port.
	ReadPort(port int) (byte, error)

	// Close releases the device handle. Safe to call once.
	Close() error
}

// OpenFunc opens a device by name, without the scheme prefix.
type OpenFunc func(name string) (Device, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]OpenFunc{}
)

// Register installs a backend under a scheme. Called from backend package
// init; duplicate schemes panic.
func Register(scheme string, open OpenFunc) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, dup := backends[scheme]; dup {
		panic("daq: duplicate backend scheme " + scheme)
	}
	backends[scheme] = open
}

// Backends returns the registered scheme names, sorted.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens a device. Names of the form "scheme:rest" select the backend
// registered for scheme; bare names go to the default backend ("nidaqmx"),
// matching vendor device names like "Dev1".
func Open(name string) (Device, error) {
	scheme, rest := "nidaqmx", name
	if i := strings.IndexByte(name, ':'); i >= 0 {
		scheme, rest = name[:i], name[i+1:]
	}

	backendsMu.RLock()
	open, ok := backends[scheme]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("daq: unknown backend %q: %w", scheme, ErrDriverUnavailable)
	}
	return open(rest)
}

// ValidPort reports whether port addresses one of the board's ports.
func ValidPort(port int) bool {
	return port >= 0 && port < NumPorts
}
