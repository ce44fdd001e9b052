package domain

import "errors"

// Error taxonomy shared by the codec, transport and discovery layers.
// Failures are wrapped with fmt.Errorf("%w: ...") so callers match them with errors.Is.
var (
	// ErrMalformedName is returned for an invalid label length byte, a compression
	// pointer cycle, a pointer past the end of the buffer, or a name longer than 255 bytes.
	ErrMalformedName = errors.New("malformed name")

	// ErrMalformedRecord is returned for truncated rdata or an rdlength that does not
	// match the type-specific payload.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMalformedMessage is returned when the header is short or the section counts
	// do not match the buffer content.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrTransport is returned when a socket cannot be opened, written or read.
	ErrTransport = errors.New("transport error")
)
