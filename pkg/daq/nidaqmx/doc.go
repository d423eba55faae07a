// Package nidaqmx binds the NI-DAQmx C runtime as a daq backend.
//
// The real binding requires the vendor runtime and headers and is only
// compiled with the "nidaqmx" build tag:
//
//	go build -tags nidaqmx ./...
//
// Without the tag, a stub is compiled whose Open fails with
// daq.ErrDriverUnavailable, so the CLI degrades to a clear fatal diagnostic
// on machines without the driver installed.
package nidaqmx

import "github.com/dkoosis/loopcheck/pkg/daq"

func init() {
	daq.Register("nidaqmx", Open)
}
