package rrdata

import (
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// Decode parses the payload of a record of type rrType that occupies
// msg[offset:offset+length]. msg is the complete message, needed to resolve
// compressed names inside PTR and SRV payloads.
// Failures wrap domain.ErrMalformedRecord.
func Decode(rrType domain.RRType, msg []byte, offset, length int) (domain.RData, error) {
	if offset < 0 || length < 0 || offset+length > len(msg) {
		return nil, malformed(rrType, "rdata [%d:%d] outside message of %d bytes", offset, offset+length, len(msg))
	}
	b := msg[offset : offset+length]
	switch rrType {
	case domain.RRTypeA: // 1
		return decodeAData(b)
	case domain.RRTypePTR: // 12
		return decodePTRData(msg, offset, length)
	case domain.RRTypeTXT: // 16
		return decodeTXTData(b)
	case domain.RRTypeAAAA: // 28
		return decodeAAAAData(b)
	case domain.RRTypeSRV: // 33
		return decodeSRVData(msg, offset, length)
	default:
		raw := make([]byte, length)
		copy(raw, b)
		return domain.Unknown{RRType: rrType, Raw: raw}, nil
	}
}
