package rrdata

import (
	"net/netip"

	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// decodeAData decodes exactly 4 bytes into an IPv4 address.
func decodeAData(b []byte) (domain.RData, error) {
	if len(b) != 4 {
		return nil, malformed(domain.RRTypeA, "rdlength %d, want 4", len(b))
	}
	return domain.A{Addr: netip.AddrFrom4([4]byte(b))}, nil
}

// encodeAData encodes an A payload into its 4-byte representation.
func encodeAData(a domain.A) ([]byte, error) {
	if !a.Addr.Is4() {
		return nil, malformed(domain.RRTypeA, "invalid IPv4 address %s", a.Addr)
	}
	b := a.Addr.As4()
	return b[:], nil
}
