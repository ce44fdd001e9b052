package domain

import "fmt"

// RRType represents a DNS resource record type (e.g. A, PTR, SRV).
// Wire codes are unsigned 16-bit values; see IANA DNS Parameters.
type RRType uint16

// DNS Resource Record Type constants
const (
	RRTypeA     RRType = 1   // A - IPv4 address
	RRTypeNS    RRType = 2   // NS - Name server
	RRTypeCNAME RRType = 5   // CNAME - Canonical name
	RRTypePTR   RRType = 12  // PTR - Pointer (service enumeration)
	RRTypeHINFO RRType = 13  // HINFO - Host information
	RRTypeTXT   RRType = 16  // TXT - Text (service attributes)
	RRTypeAAAA  RRType = 28  // AAAA - IPv6 address
	RRTypeSRV   RRType = 33  // SRV - Service location
	RRTypeOPT   RRType = 41  // OPT - EDNS option
	RRTypeNSEC  RRType = 47  // NSEC - Next secure (negative responses in mDNS)
	RRTypeANY   RRType = 255 // ANY - Any type (query only)
)

// IsDecoded reports whether the codec parses this type's payload into a typed value.
// Every other type is carried as opaque bytes.
func (t RRType) IsDecoded() bool {
	switch t {
	case RRTypeA, RRTypeAAAA, RRTypePTR, RRTypeSRV, RRTypeTXT:
		return true
	default:
		return false
	}
}

// String returns the textual representation of the RRType.
// For unknown types, it returns "UNKNOWN(<value>)".
func (t RRType) String() string {
	switch t {
	case RRTypeA:
		return "A"
	case RRTypeNS:
		return "NS"
	case RRTypeCNAME:
		return "CNAME"
	case RRTypePTR:
		return "PTR"
	case RRTypeHINFO:
		return "HINFO"
	case RRTypeTXT:
		return "TXT"
	case RRTypeAAAA:
		return "AAAA"
	case RRTypeSRV:
		return "SRV"
	case RRTypeOPT:
		return "OPT"
	case RRTypeNSEC:
		return "NSEC"
	case RRTypeANY:
		return "ANY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
	}
}

// RRTypeFromString converts a record type string to its corresponding RRType value.
func RRTypeFromString(s string) RRType {
	switch s {
	case "A":
		return RRTypeA
	case "NS":
		return RRTypeNS
	case "CNAME":
		return RRTypeCNAME
	case "PTR":
		return RRTypePTR
	case "HINFO":
		return RRTypeHINFO
	case "TXT":
		return RRTypeTXT
	case "AAAA":
		return RRTypeAAAA
	case "SRV":
		return RRTypeSRV
	case "OPT":
		return RRTypeOPT
	case "NSEC":
		return RRTypeNSEC
	case "ANY":
		return RRTypeANY
	default:
		return 0 // invalid/unknown
	}
}
