package domain

import "fmt"

// RRClass represents a DNS class (usually IN for Internet).
type RRClass uint16

// DNS Resource Record Class constants
const (
	RRClassIN  RRClass = 1   // IN - Internet
	RRClassANY RRClass = 255 // ANY - Any class (query only)

	// CacheFlushBit is the top bit of the class field. In answers it is the mDNS
	// cache-flush flag, in questions the unicast-response (QU) flag (RFC 6762 §10.2, §5.4).
	CacheFlushBit uint16 = 0x8000
)

// SplitClass separates a raw wire class into the class proper and the top-bit flag.
func SplitClass(raw uint16) (RRClass, bool) {
	return RRClass(raw &^ CacheFlushBit), raw&CacheFlushBit != 0
}

// JoinClass is the inverse of SplitClass.
func JoinClass(c RRClass, flag bool) uint16 {
	raw := uint16(c) &^ CacheFlushBit
	if flag {
		raw |= CacheFlushBit
	}
	return raw
}

// String returns the textual representation of the RRClass.
func (c RRClass) String() string {
	switch c {
	case RRClassIN:
		return "IN"
	case RRClassANY:
		return "ANY"
	default:
		return fmt.Sprintf("CLASS%d", uint16(c))
	}
}

// ParseRRClass converts a string name to an RRClass value.
func ParseRRClass(s string) RRClass {
	switch s {
	case "IN":
		return RRClassIN
	case "ANY":
		return RRClassANY
	default:
		return 0
	}
}
