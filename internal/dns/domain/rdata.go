package domain

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"sort"
	"strings"
)

// UntitledName is the display name used when a PTR target carries no label of its own.
const UntitledName = "Untitled"

// RData is the type-specific payload of a Record.
// The set of implementations is closed: A, AAAA, PTR, SRV, TXT and Unknown.
type RData interface {
	// Type is the wire type code the payload was decoded for.
	Type() RRType
	// String renders the payload for logs. It never panics.
	String() string
	isRData()
}

// A holds one IPv4 address.
type A struct {
	Addr netip.Addr
}

// AAAA holds one IPv6 address.
type AAAA struct {
	Addr netip.Addr
}

// PTR points at another name. In DNS-SD it names a service instance, or a service
// type when answering the _services._dns-sd._udp meta query.
type PTR struct {
	Target Name
}

// SRV locates a service instance on a host and port (RFC 2782).
type SRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   Name
}

// TXT carries DNS-SD key/value attributes (RFC 6763 §6).
type TXT struct {
	segments []string
	attrs    map[string]string
}

// Unknown keeps the payload of any type the codec does not interpret.
type Unknown struct {
	RRType RRType
	Raw    []byte
}

func (A) isRData()       {}
func (AAAA) isRData()    {}
func (PTR) isRData()     {}
func (SRV) isRData()     {}
func (TXT) isRData()     {}
func (Unknown) isRData() {}

func (A) Type() RRType         { return RRTypeA }
func (AAAA) Type() RRType      { return RRTypeAAAA }
func (PTR) Type() RRType       { return RRTypePTR }
func (SRV) Type() RRType       { return RRTypeSRV }
func (TXT) Type() RRType       { return RRTypeTXT }
func (u Unknown) Type() RRType { return u.RRType }

func (a A) String() string {
	if !a.Addr.IsValid() {
		return "<invalid>"
	}
	return a.Addr.String()
}

func (a AAAA) String() string {
	if !a.Addr.IsValid() {
		return "<invalid>"
	}
	return a.Addr.String()
}

func (p PTR) String() string { return p.Target.String() }

func (s SRV) String() string {
	return fmt.Sprintf("%d %d %d %s", s.Priority, s.Weight, s.Port, s.Target)
}

// UserVisibleName derives the short display name of the instance the PTR points at.
// The shared suffix with domain is removed and the first remaining label returned.
// UntitledName is returned when nothing remains.
//
//	Zelda._http._tcp.local. under local. -> "Zelda"
//	local. under local.                  -> UntitledName
func (p PTR) UserVisibleName(domain Name) string {
	rest, _ := p.Target.TrimSuffix(domain)
	if rest.IsRoot() {
		return UntitledName
	}
	return rest.First()
}

// NewTXT builds a TXT payload from its character-strings.
// Each string is split on the first '='; a string without '=' is a presence flag
// with an empty value. Strings with an empty key are ignored. When a key repeats,
// the last occurrence wins.
func NewTXT(segments []string) TXT {
	t := TXT{
		segments: make([]string, len(segments)),
		attrs:    make(map[string]string, len(segments)),
	}
	copy(t.segments, segments)
	for _, s := range segments {
		key, value, _ := strings.Cut(s, "=")
		if key == "" {
			continue
		}
		t.attrs[key] = value
	}
	return t
}

// Segments returns a copy of the raw character-strings.
func (t TXT) Segments() []string {
	out := make([]string, len(t.segments))
	copy(out, t.segments)
	return out
}

// Attributes returns a copy of the parsed key/value map.
func (t TXT) Attributes() map[string]string {
	out := make(map[string]string, len(t.attrs))
	for k, v := range t.attrs {
		out[k] = v
	}
	return out
}

// Get returns the value for key and whether the key is present.
func (t TXT) Get(key string) (string, bool) {
	v, ok := t.attrs[key]
	return v, ok
}

func (t TXT) String() string {
	if len(t.attrs) == 0 {
		return "[]"
	}
	keys := make([]string, 0, len(t.attrs))
	for k := range t.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q=%q", k, t.attrs[k]))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// String uses the RFC 3597 generic form.
func (u Unknown) String() string {
	return fmt.Sprintf("\\# %d %s", len(u.Raw), hex.EncodeToString(u.Raw))
}
