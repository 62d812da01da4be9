package modes

import "errors"

// ErrInvalidBinding is returned for a malformed macro binding token.
var ErrInvalidBinding = errors.New("modes: invalid binding")
