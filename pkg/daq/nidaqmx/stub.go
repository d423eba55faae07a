//go:build !nidaqmx

package nidaqmx

import (
	"fmt"

	"github.com/dkoosis/loopcheck/pkg/daq"
)

// Open always fails in stub builds.
func Open(name string) (daq.Device, error) {
	return nil, fmt.Errorf("nidaqmx: binary built without NI-DAQmx support (rebuild with -tags nidaqmx): %w",
		daq.ErrDriverUnavailable)
}
