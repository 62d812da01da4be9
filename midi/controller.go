package midi

// ControllerType identifies the kind of device behind a port pair
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerFootswitch
)

func (t ControllerType) String() string {
	switch t {
	case ControllerFootswitch:
		return "footswitch"
	}
	return "unknown"
}

// Controller is a connected MIDI device
type Controller interface {
	ID() string
	Type() ControllerType

	// Output to the device. Controller number and value on the device's
	// channel; this is what the LED controller drives.
	SendCC(controller, value uint8) error

	// Lifecycle
	Close() error
}

// Handler receives every raw message read from a controller's input.
type Handler func(msg []byte)
