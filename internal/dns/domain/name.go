package domain

import (
	"fmt"
	"strings"
)

const (
	// MaxLabelLength is the longest label the wire format can carry (RFC 1035 §2.3.4).
	MaxLabelLength = 63
	// MaxNameLength bounds the encoded length of a name, length bytes and terminator included.
	MaxNameLength = 255
)

// Name is a DNS domain name held as an ordered sequence of labels, most specific first.
// The zero value is the root name. Names are immutable: accessors return copies.
type Name struct {
	labels []string
}

// Root is the root name ".".
var Root = Name{}

// NewName builds a Name from raw (unescaped) labels.
func NewName(labels ...string) (Name, error) {
	total := 1
	for _, l := range labels {
		if l == "" {
			return Name{}, fmt.Errorf("%w: empty label", ErrMalformedName)
		}
		if len(l) > MaxLabelLength {
			return Name{}, fmt.Errorf("%w: label too long (%d bytes)", ErrMalformedName, len(l))
		}
		total += 1 + len(l)
	}
	if total > MaxNameLength {
		return Name{}, fmt.Errorf("%w: name too long (%d bytes)", ErrMalformedName, total)
	}
	if len(labels) == 0 {
		return Root, nil
	}
	cp := make([]string, len(labels))
	copy(cp, labels)
	return Name{labels: cp}, nil
}

// ParseName parses a name in presentation form ("_http._tcp.local.").
// The trailing dot is optional; "" and "." both yield the root.
// A backslash escapes the next character, so "My\.Printer.local." has two labels.
func ParseName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return Root, nil
	}
	var (
		labels  []string
		current strings.Builder
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			current.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '.':
			if current.Len() == 0 {
				return Name{}, fmt.Errorf("%w: empty label in %q", ErrMalformedName, s)
			}
			labels = append(labels, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	if escaped {
		return Name{}, fmt.Errorf("%w: trailing escape in %q", ErrMalformedName, s)
	}
	if current.Len() > 0 {
		labels = append(labels, current.String())
	}
	return NewName(labels...)
}

// MustParseName is ParseName for constants; it panics on error.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Labels returns a copy of the labels.
func (n Name) Labels() []string {
	out := make([]string, len(n.labels))
	copy(out, n.labels)
	return out
}

// Len returns the number of labels.
func (n Name) Len() int { return len(n.labels) }

// IsRoot reports whether n has no labels.
func (n Name) IsRoot() bool { return len(n.labels) == 0 }

// Label returns the label at index i (0 is the leftmost).
func (n Name) Label(i int) string { return n.labels[i] }

// First returns the leftmost label, or "" for the root.
func (n Name) First() string {
	if len(n.labels) == 0 {
		return ""
	}
	return n.labels[0]
}

// WireLength is the uncompressed encoded length.
func (n Name) WireLength() int {
	total := 1
	for _, l := range n.labels {
		total += 1 + len(l)
	}
	return total
}

// String renders the name in presentation form with a trailing dot.
func (n Name) String() string {
	if len(n.labels) == 0 {
		return "."
	}
	var b strings.Builder
	for _, l := range n.labels {
		for i := 0; i < len(l); i++ {
			if l[i] == '.' || l[i] == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(l[i])
		}
		b.WriteByte('.')
	}
	return b.String()
}

// Canonical returns the lower-cased presentation form, used as a map key.
func (n Name) Canonical() string {
	return strings.ToLower(n.String())
}

// Equal compares names case-insensitively, as DNS does.
func (n Name) Equal(o Name) bool {
	if len(n.labels) != len(o.labels) {
		return false
	}
	for i := range n.labels {
		if !strings.EqualFold(n.labels[i], o.labels[i]) {
			return false
		}
	}
	return true
}

// HasSuffix reports whether the rightmost labels of n equal suffix.
// Every name has the root as a suffix.
func (n Name) HasSuffix(suffix Name) bool {
	off := len(n.labels) - len(suffix.labels)
	if off < 0 {
		return false
	}
	for i := range suffix.labels {
		if !strings.EqualFold(n.labels[off+i], suffix.labels[i]) {
			return false
		}
	}
	return true
}

// TrimSuffix removes suffix from n. The boolean is false, and n is returned
// unchanged, when n does not end in suffix.
func (n Name) TrimSuffix(suffix Name) (Name, bool) {
	if !n.HasSuffix(suffix) {
		return n, false
	}
	return Name{labels: n.labels[:len(n.labels)-len(suffix.labels)]}, true
}

// Concat appends suffix to n.
func (n Name) Concat(suffix Name) (Name, error) {
	labels := make([]string, 0, len(n.labels)+len(suffix.labels))
	labels = append(labels, n.labels...)
	labels = append(labels, suffix.labels...)
	return NewName(labels...)
}
