package domain

import "fmt"

// Flags holds the header bits a discovery client looks at.
type Flags struct {
	Response         bool  // QR
	Opcode           uint8 // 4 bits; 0 is a standard query
	Authoritative    bool  // AA, always set by mDNS responders
	Truncated        bool  // TC
	RecursionDesired bool  // RD
	RCode            RCode
}

// Pack encodes the flags into the 16-bit header field.
func (f Flags) Pack() uint16 {
	var v uint16
	if f.Response {
		v |= 1 << 15
	}
	v |= uint16(f.Opcode&0x0F) << 11
	if f.Authoritative {
		v |= 1 << 10
	}
	if f.Truncated {
		v |= 1 << 9
	}
	if f.RecursionDesired {
		v |= 1 << 8
	}
	v |= uint16(f.RCode & 0x0F)
	return v
}

// UnpackFlags decodes the 16-bit header field.
func UnpackFlags(v uint16) Flags {
	return Flags{
		Response:         v&(1<<15) != 0,
		Opcode:           uint8(v>>11) & 0x0F,
		Authoritative:    v&(1<<10) != 0,
		Truncated:        v&(1<<9) != 0,
		RecursionDesired: v&(1<<8) != 0,
		RCode:            RCode(v & 0x0F),
	}
}

// Message is a decoded DNS message.
// Sections are kept apart as received; Records merges them for discovery, since
// mDNS responders place relevant records in any of the three.
type Message struct {
	ID         uint16
	Flags      Flags
	Questions  []Question
	Answers    []Record
	Authority  []Record
	Additional []Record
}

// Records returns answer, authority and additional records in that order.
func (m Message) Records() []Record {
	out := make([]Record, 0, len(m.Answers)+len(m.Authority)+len(m.Additional))
	out = append(out, m.Answers...)
	out = append(out, m.Authority...)
	out = append(out, m.Additional...)
	return out
}

func (m Message) String() string {
	kind := "query"
	if m.Flags.Response {
		kind = "response"
	}
	return fmt.Sprintf("%s id=%d qd=%d an=%d ns=%d ar=%d", kind, m.ID,
		len(m.Questions), len(m.Answers), len(m.Authority), len(m.Additional))
}
