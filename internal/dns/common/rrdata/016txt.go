package rrdata

import (
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// decodeTXTData splits the payload into its length-prefixed character-strings
// (RFC 1035 §3.3.14) and parses them as DNS-SD key=value pairs.
func decodeTXTData(b []byte) (domain.RData, error) {
	var segments []string
	for i := 0; i < len(b); {
		segLen := int(b[i])
		i++
		if i+segLen > len(b) {
			return nil, malformed(domain.RRTypeTXT, "segment length exceeds remaining data")
		}
		if segLen > 0 {
			segments = append(segments, string(b[i:i+segLen]))
		}
		i += segLen
	}
	return domain.NewTXT(segments), nil
}

// encodeTXTData encodes the character-strings of a TXT payload.
// A TXT record without strings is written as a single empty string (RFC 6763 §6.1).
func encodeTXTData(t domain.TXT) ([]byte, error) {
	segments := t.Segments()
	if len(segments) == 0 {
		return []byte{0}, nil
	}
	var encoded []byte
	for _, segment := range segments {
		if len(segment) > 255 {
			return nil, malformed(domain.RRTypeTXT, "segment too long: %d bytes", len(segment))
		}
		encoded = append(encoded, byte(len(segment)))
		encoded = append(encoded, segment...)
	}
	return encoded, nil
}
