package midi

import "errors"

var (
	// ErrNoController is returned when no port matching the foot controller
	// name is present.
	ErrNoController = errors.New("midi: foot controller not found")

	// ErrNoPort is returned when a named output port does not exist.
	ErrNoPort = errors.New("midi: port not found")
)
