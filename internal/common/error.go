package common

import "errors"

// ErrInvalidID is returned when an entry or attachment identifier is not a
// positive integer.
var ErrInvalidID = errors.New("invalid id")
