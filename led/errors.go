package led

import "errors"

var (
	// ErrAddressOutOfRange is returned for an address outside 0-22.
	ErrAddressOutOfRange = errors.New("led: address out of range")

	// ErrAddressNotOwned is returned when a scoped controller is asked to
	// drive an address it was not created with.
	ErrAddressNotOwned = errors.New("led: address not owned by controller")
)
