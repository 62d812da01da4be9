package board

import "errors"

// ErrUnknownMode is returned by SetMode for an index with no mode.
var ErrUnknownMode = errors.New("board: unknown mode")
