// Package rrdata decodes and encodes the type-specific payload (RDATA) of the
// resource records used by DNS service discovery: A, AAAA, PTR, SRV and TXT.
// Any other type is carried as opaque bytes.
package rrdata

import (
	"fmt"

	"github.com/haukened/rr-mdns/internal/dns/common/dnsname"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// decodeName reads a name that must fill msg[offset:end] exactly.
// msg is the whole message so compression pointers can reach earlier names;
// it is cut at end so labels cannot run past the payload.
func decodeName(msg []byte, offset, end int) (domain.Name, error) {
	n, consumed, err := dnsname.Decode(msg[:end], offset)
	if err != nil {
		return domain.Name{}, err
	}
	if offset+consumed != end {
		return domain.Name{}, fmt.Errorf("name uses %d of %d bytes", consumed, end-offset)
	}
	return n, nil
}

// malformed wraps err as ErrMalformedRecord for the given type.
func malformed(t domain.RRType, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrMalformedRecord, t, fmt.Sprintf(format, args...))
}

// malformedTarget wraps a target name failure as ErrMalformedRecord while
// keeping the name error (ErrMalformedName on a pointer cycle) matchable.
func malformedTarget(t domain.RRType, err error) error {
	return fmt.Errorf("%w: %s target: %w", domain.ErrMalformedRecord, t, err)
}
