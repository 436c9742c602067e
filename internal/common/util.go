package common

import (
	"fmt"
	"strconv"
	"strings"
)

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used on passwords read from the terminal once they have been sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ParseID parses a backend identifier. Identifiers are positive int64 values.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
