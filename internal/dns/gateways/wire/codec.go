package wire

import (
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// MessageCodec converts between DNS messages and their wire form.
type MessageCodec interface {
	// EncodeQuery builds a one-question query message with the given ID.
	EncodeQuery(id uint16, q domain.Question) ([]byte, error)
	// DecodeMessage parses a complete message. Any failure rejects the whole datagram.
	DecodeMessage(data []byte) (domain.Message, error)
}
