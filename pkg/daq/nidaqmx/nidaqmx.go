//go:build nidaqmx

package nidaqmx

/*
#cgo LDFLAGS: -lnidaqmx
#include <stdlib.h>
#include <NIDAQmx.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/dkoosis/loopcheck/pkg/daq"
)

var errInvalidPort = errors.New("invalid port")

// NI-DAQmx error codes of interest. The full list lives in NIDAQmxErrors.h;
// these are the ones Open distinguishes.
const (
	errInvalidDeviceID = -200220 // device name not known to the driver
)

type device struct {
	name string
}

// Open validates the named device against the driver and returns a handle.
// Port tasks are created per operation, mirroring how the vendor examples
// drive static digital I/O.
func Open(name string) (daq.Device, error) {
	if name == "" {
		name = "Dev1"
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	// Probing the serial number is the cheapest call that fails fast for an
	// unknown device without disturbing any running tasks.
	var serial C.uInt32
	if code := C.DAQmxGetDevSerialNum(cname, &serial); code < 0 {
		if code == errInvalidDeviceID {
			return nil, fmt.Errorf("nidaqmx: %q: %w", name, daq.ErrDeviceNotFound)
		}
		return nil, fmt.Errorf("nidaqmx: %s: %w", errString(code), daq.ErrDriverUnavailable)
	}
	return &device{name: name}, nil
}

// WritePort implements daq.Device by latching value onto all 8 lines of the
// port through a one-shot digital output task.
func (d *device) WritePort(port int, value byte) error {
	if !daq.ValidPort(port) {
		return &daq.PortIOError{Port: port, Op: "write", Err: errInvalidPort}
	}
	var task C.TaskHandle
	if code := C.DAQmxCreateTask(nil, &task); code < 0 {
		return &daq.PortIOError{Port: port, Op: "write", Err: codeError(code)}
	}
	defer C.DAQmxClearTask(task)

	chans := C.CString(fmt.Sprintf("%s/port%d", d.name, port))
	defer C.free(unsafe.Pointer(chans))
	if code := C.DAQmxCreateDOChan(task, chans, nil, C.DAQmx_Val_ChanForAllLines); code < 0 {
		return &daq.PortIOError{Port: port, Op: "write", Err: codeError(code)}
	}

	data := C.uInt8(value)
	var written C.int32
	code := C.DAQmxWriteDigitalU8(task, 1, C.bool32(1), 10.0,
		C.DAQmx_Val_GroupByChannel, &data, &written, nil)
	if code < 0 {
		return &daq.PortIOError{Port: port, Op: "write", Err: codeError(code)}
	}
	return nil
}

// ReadPort implements daq.Device by sampling all 8 lines of the port
// through a one-shot digital input task.
func (d *device) ReadPort(port int) (byte, error) {
	if !daq.ValidPort(port) {
		return 0, &daq.PortIOError{Port: port, Op: "read", Err: errInvalidPort}
	}
	var task C.TaskHandle
	if code := C.DAQmxCreateTask(nil, &task); code < 0 {
		return 0, &daq.PortIOError{Port: port, Op: "read", Err: codeError(code)}
	}
	defer C.DAQmxClearTask(task)

	chans := C.CString(fmt.Sprintf("%s/port%d", d.name, port))
	defer C.free(unsafe.Pointer(chans))
	if code := C.DAQmxCreateDIChan(task, chans, nil, C.DAQmx_Val_ChanForAllLines); code < 0 {
		return 0, &daq.PortIOError{Port: port, Op: "read", Err: codeError(code)}
	}

	var data C.uInt8
	var read C.int32
	code := C.DAQmxReadDigitalU8(task, 1, 10.0, C.DAQmx_Val_GroupByChannel,
		&data, 1, &read, nil)
	if code < 0 {
		return 0, &daq.PortIOError{Port: port, Op: "read", Err: codeError(code)}
	}
	return byte(data), nil
}

// Close implements daq.Device. Tasks are per-operation, so there is no
// driver state to tear down beyond the handle itself.
func (d *device) Close() error { return nil }

// errString fetches the driver's extended error text for a negative status.
func errString(code C.int32) string {
	n := C.DAQmxGetExtendedErrorInfo(nil, 0)
	if n <= 0 {
		return fmt.Sprintf("DAQmx status %d", int(code))
	}
	buf := make([]C.char, n)
	C.DAQmxGetExtendedErrorInfo(&buf[0], C.uInt32(n))
	return C.GoString(&buf[0])
}

func codeError(code C.int32) error {
	return fmt.Errorf("%s (status %d)", errString(code), int(code))
}
