package domain

import "fmt"

// Record is a parsed DNS resource record.
// Class has the mDNS cache-flush bit removed; the bit is kept in CacheFlush.
type Record struct {
	Name       Name
	Type       RRType
	Class      RRClass
	CacheFlush bool
	TTL        uint32
	Data       RData
}

// IsGoodbye reports whether the record announces withdrawal (TTL 0, RFC 6762 §10.1).
func (r Record) IsGoodbye() bool { return r.TTL == 0 }

// String renders the record in zone-file style. It never panics, whatever the payload.
func (r Record) String() string {
	data := "<nil>"
	if r.Data != nil {
		data = r.Data.String()
	}
	flush := ""
	if r.CacheFlush {
		flush = " (flush)"
	}
	return fmt.Sprintf("%s %d %s%s %s %s", r.Name, r.TTL, r.Class, flush, r.Type, data)
}
