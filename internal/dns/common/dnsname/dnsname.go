// Package dnsname encodes and decodes domain names in the RFC 1035 wire format,
// including the message compression scheme of RFC 1035 §4.1.4.
package dnsname

import (
	"fmt"

	"github.com/haukened/rr-mdns/internal/dns/domain"
)

const (
	pointerMask = 0xC0
	// offsetMask selects the 14-bit offset of a compression pointer.
	offsetMask = 0x3FFF
)

// Decode reads the name starting at msg[offset].
//
// The returned count is the number of bytes the name occupies at offset, which is
// what the caller advances its cursor by: labels up to and including the zero
// terminator, or up to and including the first compression pointer (2 bytes).
//
// Pointers are followed iteratively. A pointer whose target was already visited
// fails with ErrMalformedName, as does a name whose expanded length exceeds 255
// bytes, so cyclic or hostile input always terminates.
func Decode(msg []byte, offset int) (domain.Name, int, error) {
	var (
		labels   []string
		pos      = offset
		consumed = -1 // fixed once the first pointer is taken
		length   = 1  // expanded wire length, terminator included
		visited  map[int]struct{}
	)
	for {
		if pos < 0 || pos >= len(msg) {
			return domain.Name{}, 0, fmt.Errorf("%w: offset %d out of bounds", domain.ErrMalformedName, pos)
		}
		b := msg[pos]
		switch {
		case b == 0:
			if consumed < 0 {
				consumed = pos + 1 - offset
			}
			n, err := domain.NewName(labels...)
			if err != nil {
				return domain.Name{}, 0, err
			}
			return n, consumed, nil

		case b&pointerMask == pointerMask:
			if pos+1 >= len(msg) {
				return domain.Name{}, 0, fmt.Errorf("%w: truncated compression pointer at %d", domain.ErrMalformedName, pos)
			}
			target := (int(b)<<8 | int(msg[pos+1])) & offsetMask
			if target >= len(msg) {
				return domain.Name{}, 0, fmt.Errorf("%w: pointer at %d targets %d past end of message", domain.ErrMalformedName, pos, target)
			}
			if visited == nil {
				visited = make(map[int]struct{}, 4)
			}
			if _, seen := visited[target]; seen {
				return domain.Name{}, 0, fmt.Errorf("%w: compression pointer loop at %d", domain.ErrMalformedName, target)
			}
			visited[target] = struct{}{}
			if consumed < 0 {
				consumed = pos + 2 - offset
			}
			pos = target

		case b&pointerMask != 0:
			// 0x40 and 0x80 prefixes are reserved / obsolete extended label types
			return domain.Name{}, 0, fmt.Errorf("%w: invalid label length byte %#02x at %d", domain.ErrMalformedName, b, pos)

		default:
			l := int(b)
			if pos+1+l > len(msg) {
				return domain.Name{}, 0, fmt.Errorf("%w: label at %d runs past end of message", domain.ErrMalformedName, pos)
			}
			length += 1 + l
			if length > domain.MaxNameLength {
				return domain.Name{}, 0, fmt.Errorf("%w: name exceeds %d bytes", domain.ErrMalformedName, domain.MaxNameLength)
			}
			labels = append(labels, string(msg[pos+1:pos+1+l]))
			pos += 1 + l
		}
	}
}

// Encode renders n as length-prefixed labels followed by a zero byte.
// Compression is never emitted.
func Encode(n domain.Name) []byte {
	out := make([]byte, 0, n.WireLength())
	return Append(out, n)
}

// Append appends the uncompressed encoding of n to b.
func Append(b []byte, n domain.Name) []byte {
	for i := 0; i < n.Len(); i++ {
		l := n.Label(i)
		b = append(b, byte(len(l)))
		b = append(b, l...)
	}
	return append(b, 0)
}
