package bloom

import (
	"testing"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"
)

func TestSizer_CommonCases(t *testing.T) {
	s := NewSizer()

	// n=1000, p=1% → m≈9.6e3 bits, k≈7
	m, k := s.Size(1000, 0.01)
	if m < 9_000 || m > 10_000 {
		t.Fatalf("n=1000,p=0.01: unexpected m=%d (expected around 9.6e3)", m)
	}
	if k != 7 {
		t.Fatalf("n=1000,p=0.01: k=%d; want 7", k)
	}

	// p=0.5 follows the library estimate
	m, k = s.Size(10_000, 0.5)
	wantM, wantK := bitsbloom.EstimateParameters(10_000, 0.5)
	if m != uint64(wantM) || k != uint8(wantK) {
		t.Fatalf("p=0.5: m=%d k=%d; want m=%d k=%d", m, k, wantM, wantK)
	}
	if k > 2 {
		t.Fatalf("p=0.5: k=%d; want at most 2", k)
	}
}

func TestSizer_FloorAndDefaults(t *testing.T) {
	s := NewSizer()

	m, k := s.Size(1, 0.01)
	if m != minBits || k == 0 {
		t.Fatalf("n=1: got m=%d k=%d; want m=%d k>=1", m, k, minBits)
	}

	// n=0 and invalid p fall back to defaults
	for _, p := range []float64{0, -1, 1, 2} {
		m, k := s.Size(0, p)
		if m < minBits || k == 0 {
			t.Errorf("p=%v: got m=%d k=%d", p, m, k)
		}
	}
}
