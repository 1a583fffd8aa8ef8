package detector

import "errors"

var (
	// ErrNotInitialized is returned when Update or a capture is attempted
	// before Begin has been called.
	ErrNotInitialized = errors.New("detector not initialized")

	// ErrIndexOutOfRange is returned for pulse or analysis queries whose
	// logical index is at or beyond the stored count. Out-of-range reads are
	// surfaced rather than answered with a zeroed pulse so a caller bug
	// cannot feed fabricated data into downstream statistics.
	ErrIndexOutOfRange = errors.New("pulse index out of range")
)
