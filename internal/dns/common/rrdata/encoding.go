package rrdata

import (
	"fmt"

	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// Encode renders a payload to its wire form. Names are never compressed.
func Encode(data domain.RData) ([]byte, error) {
	switch d := data.(type) {
	case domain.A:
		return encodeAData(d)
	case domain.AAAA:
		return encodeAAAAData(d)
	case domain.PTR:
		return encodePTRData(d), nil
	case domain.SRV:
		return encodeSRVData(d), nil
	case domain.TXT:
		return encodeTXTData(d)
	case domain.Unknown:
		raw := make([]byte, len(d.Raw))
		copy(raw, d.Raw)
		return raw, nil
	case nil:
		return nil, fmt.Errorf("%w: nil payload", domain.ErrMalformedRecord)
	default:
		return nil, fmt.Errorf("%w: unsupported payload %T", domain.ErrMalformedRecord, data)
	}
}
