package daq

import (
	"errors"
	"fmt"
	"testing"
)

type nopDevice struct{ name string }

func (d *nopDevice) WritePort(port int, value byte) error { return nil }
func (d *nopDevice) ReadPort(port int) (byte, error)      { return 0, nil }
func (d *nopDevice) Close() error                         { return nil }

func init() {
	Register("fake", func(name string) (Device, error) {
		if name == "missing" {
			return nil, fmt.Errorf("fake: %q: %w", name, ErrDeviceNotFound)
		}
		return &nopDevice{name: name}, nil
	})
}

func TestOpen_SchemeDispatch(t *testing.T) {
	dev, err := Open("fake:board7")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()
	if got := dev.(*nopDevice).name; got != "board7" {
		t.Errorf("backend received %q, want %q (scheme must be stripped)", got, "board7")
	}
}

func TestOpen_BareNameUsesDriverBackend(t *testing.T) {
	// No nidaqmx backend is registered in this package's tests, so bare
	// vendor names must fail as driver-unavailable rather than panic.
	_, err := Open("Dev1")
	if !errors.Is(err, ErrDriverUnavailable) {
		t.Fatalf("err = %v, want ErrDriverUnavailable", err)
	}
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open("bogus:Dev1")
	if !errors.Is(err, ErrDriverUnavailable) {
		t.Fatalf("err = %v, want ErrDriverUnavailable", err)
	}
}

func TestOpen_DeviceNotFound(t *testing.T) {
	_, err := Open("fake:missing")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestBackends_Sorted(t *testing.T) {
	names := Backends()
	found := false
	for i, name := range names {
		if name == "fake" {
			found = true
		}
		if i > 0 && names[i-1] > name {
			t.Errorf("backends not sorted: %v", names)
		}
	}
	if !found {
		t.Errorf("registered backend missing from %v", names)
	}
}

func TestPortIOError(t *testing.T) {
	cause := errors.New("timeout")
	err := &PortIOError{Port: 2, Op: "read", Err: cause}

	if got, want := err.Error(), "port 2: read: timeout"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("PortIOError must unwrap to its cause")
	}
}

func TestValidPort(t *testing.T) {
	for port := 0; port < NumPorts; port++ {
		if !ValidPort(port) {
			t.Errorf("port %d must be valid", port)
		}
	}
	for _, port := range []int{-1, NumPorts, 100} {
		if ValidPort(port) {
			t.Errorf("port %d must be invalid", port)
		}
	}
}
