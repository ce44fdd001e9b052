// Package bloom supplies the Bloom pre-filter for the ignore list.
package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist"
)

// factory implements ignorelist.BloomFactory with a pluggable sizer.
type factory struct {
	sizer ignorelist.BloomSizer
}

// NewFactory returns a BloomFactory that sizes filters with NewSizer.
func NewFactory() ignorelist.BloomFactory { return factory{sizer: NewSizer()} }

// NewFactoryWithSizer is NewFactory with a caller-supplied sizer.
func NewFactoryWithSizer(s ignorelist.BloomSizer) ignorelist.BloomFactory {
	if s == nil {
		s = NewSizer()
	}
	return factory{sizer: s}
}

// New constructs a filter sized for capacity keys at fpRate.
func (f factory) New(capacity uint64, fpRate float64) ignorelist.BloomFilter {
	m, k := f.sizer.Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
