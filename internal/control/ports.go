package control

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var ErrPortNotFound = errors.New("midi input port not found")

// InPorts names the inputs of the registered MIDI driver.
func InPorts() ([]string, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("list midi inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// ListenPort opens the input called name and hands every message to recv on
// the driver's goroutine. The returned stop closes the port.
func ListenPort(name string, recv func(midi.Message)) (stop func(), err error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("list midi inputs: %w", err)
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrPortNotFound)
	}
	if err := found.Open(); err != nil {
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	stopListen, err := midi.ListenTo(found, func(msg midi.Message, _ int32) { recv(msg) })
	if err != nil {
		_ = found.Close()
		return nil, fmt.Errorf("listen %q: %w", name, err)
	}
	return func() {
		stopListen()
		_ = found.Close()
	}, nil
}
