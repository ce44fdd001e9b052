package rrdata

import (
	"encoding/binary"

	"github.com/haukened/rr-mdns/internal/dns/common/dnsname"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// decodeSRVData decodes priority, weight, port and target (RFC 2782).
func decodeSRVData(msg []byte, offset, length int) (domain.RData, error) {
	// three u16 fields and at least the root terminator
	if length < 7 {
		return nil, malformed(domain.RRTypeSRV, "rdlength %d, want at least 7", length)
	}
	b := msg[offset : offset+6]
	target, err := decodeName(msg, offset+6, offset+length)
	if err != nil {
		return nil, malformedTarget(domain.RRTypeSRV, err)
	}
	return domain.SRV{
		Priority: binary.BigEndian.Uint16(b[0:2]),
		Weight:   binary.BigEndian.Uint16(b[2:4]),
		Port:     binary.BigEndian.Uint16(b[4:6]),
		Target:   target,
	}, nil
}

// encodeSRVData encodes an SRV payload with an uncompressed target.
func encodeSRVData(s domain.SRV) []byte {
	buf := make([]byte, 6, 6+s.Target.WireLength())
	binary.BigEndian.PutUint16(buf[0:2], s.Priority)
	binary.BigEndian.PutUint16(buf[2:4], s.Weight)
	binary.BigEndian.PutUint16(buf[4:6], s.Port)
	return dnsname.Append(buf, s.Target)
}
