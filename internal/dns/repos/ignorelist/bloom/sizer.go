package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist"
)

const (
	// DefaultFPRate applies when the requested rate is outside (0, 1).
	DefaultFPRate = 0.01
	// minBits keeps filters for one or two rules from degenerating into a
	// handful of bits that saturate immediately.
	minBits = 64
)

// sizer implements ignorelist.BloomSizer on top of bitsbloom.EstimateParameters.
// Ignore lists are small, so the bit count is floored at minBits.
type sizer struct{}

// NewSizer returns a BloomSizer implementation.
func NewSizer() ignorelist.BloomSizer { return sizer{} }

func (sizer) Size(n uint64, p float64) (uint64, uint8) {
	if n == 0 {
		n = 1
	}
	if !(p > 0 && p < 1) {
		p = DefaultFPRate
	}
	m, k := bitsbloom.EstimateParameters(uint(n), p)
	if m < minBits {
		m = minBits
	}
	if k == 0 {
		k = 1
	}
	if k > 255 {
		k = 255
	}
	return uint64(m), uint8(k)
}
