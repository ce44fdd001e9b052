package rrdata

import (
	"net/netip"

	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// decodeAAAAData decodes exactly 16 bytes into an IPv6 address.
func decodeAAAAData(b []byte) (domain.RData, error) {
	if len(b) != 16 {
		return nil, malformed(domain.RRTypeAAAA, "rdlength %d, want 16", len(b))
	}
	return domain.AAAA{Addr: netip.AddrFrom16([16]byte(b))}, nil
}

// encodeAAAAData encodes an AAAA payload into its 16-byte representation.
// IPv4-mapped addresses are accepted and written in mapped form.
func encodeAAAAData(a domain.AAAA) ([]byte, error) {
	if !a.Addr.IsValid() {
		return nil, malformed(domain.RRTypeAAAA, "invalid IPv6 address")
	}
	b := a.Addr.As16()
	return b[:], nil
}
