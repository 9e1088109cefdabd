package bincodec

import "errors"

var (
	// ErrMalformedBin is returned when decoding input that is not a valid
	// version bin: bad magic, unsupported format version, truncation,
	// trailing bytes, unordered IDs or duplicate entries. Decode never
	// repairs malformed input.
	ErrMalformedBin = errors.New("malformed version bin")

	// ErrInvariantViolation is returned when encoding a table that breaks
	// the uniqueness invariant. It indicates an engine defect, not
	// recoverable data; no bytes are written.
	ErrInvariantViolation = errors.New("id table invariant violation")
)
