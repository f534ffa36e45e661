package resp

import "errors"

// The decoder reports exactly these four sentinel failure modes; io errors
// (including io.EOF and io.ErrUnexpectedEOF) from the underlying reader are
// returned unwrapped so callers can distinguish "malformed protocol" from
// "socket died". Higher layers (package redis) translate these into the
// error kinds enumerated by the connection's public error surface.
var (
	// ErrUnknownType is returned when a frame's leading byte does not match
	// any RESP3 sigil.
	ErrUnknownType = errors.New("resp: unknown type byte")
	// ErrNotANumber is returned when a header expected to carry a base-10
	// length or count could not be parsed as one.
	ErrNotANumber = errors.New("resp: malformed integer header")
	// ErrExceedsMaxReadSize is returned when a bulk length, aggregate size,
	// or header line would exceed the configured read budget.
	ErrExceedsMaxReadSize = errors.New("resp: value exceeds max read size")
	// ErrMalformedFrame is returned when a value's framing is corrupt --
	// a bulk's declared length is not followed by the CRLF terminator, or
	// a line's "\r" is not followed by "\n" -- as opposed to ErrUnknownType,
	// which means the leading sigil byte itself was never recognized.
	ErrMalformedFrame = errors.New("resp: malformed frame")
)
