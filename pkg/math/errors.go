package math

import "errors"

var (
	// ErrIndexOutOfRange is returned when a row or column index is not in [0, 3].
	ErrIndexOutOfRange = errors.New("matrix index out of range")

	// ErrDegenerateQuat is returned when a quaternion has zero or non-finite length
	// and cannot be normalized.
	ErrDegenerateQuat = errors.New("degenerate quaternion")
)
