package rrdata

import (
	"github.com/haukened/rr-mdns/internal/dns/common/dnsname"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// decodePTRData decodes the target name of a PTR record.
// An empty payload yields the root name; some responders send that for
// instances without a label.
func decodePTRData(msg []byte, offset, length int) (domain.RData, error) {
	if length == 0 {
		return domain.PTR{Target: domain.Root}, nil
	}
	target, err := decodeName(msg, offset, offset+length)
	if err != nil {
		return nil, malformedTarget(domain.RRTypePTR, err)
	}
	return domain.PTR{Target: target}, nil
}

// encodePTRData encodes a PTR payload as an uncompressed name.
func encodePTRData(p domain.PTR) []byte {
	return dnsname.Encode(p.Target)
}
