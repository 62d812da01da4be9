package footswitch

import "errors"

var (
	// ErrUnknownSwitchValue is returned for a controller value outside 0-11.
	ErrUnknownSwitchValue = errors.New("footswitch: unknown switch value")

	// ErrNotFootswitch is returned by Decode for any message that is not a
	// footswitch down/up control change. Callers ignore it.
	ErrNotFootswitch = errors.New("footswitch: not a footswitch message")

	// ErrInvalidLEDAddress is returned when asking UP or DOWN for its LED.
	ErrInvalidLEDAddress = errors.New("footswitch: switch has no LED")
)
