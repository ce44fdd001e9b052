// Package ignorelist decides whether a discovered service type or instance is
// hidden from results. Rules come from configuration and plain list files;
// lookups run through a Bloom pre-filter, an LRU decision cache and an
// authoritative store.
package ignorelist

import "github.com/haukened/rr-mdns/internal/dns/domain"

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
	Clear()
}

// BloomFactory builds filters sized for a rule set.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache caches ignore decisions by canonical name with basic metrics.
type DecisionCache interface {
	Get(name string) (domain.IgnoreDecision, bool)
	Put(name string, d domain.IgnoreDecision)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}

// Store is the authoritative rule index.
//   - GetFirstMatch: the most specific rule covering a canonical name
//   - RebuildAll: replace every rule atomically and stamp version metadata
type Store interface {
	GetFirstMatch(name string) (domain.IgnoreRule, bool, error)
	RebuildAll(rules []domain.IgnoreRule, version uint64, updatedUnix int64) error
	Stats() StoreStats
	Close() error
}

// Repository is the composition layer that wires bloom → cache → store.
// Decide returns a value-type IgnoreDecision for a name in any spelling.
// UpdateAll rebuilds the store, refreshes Bloom, and clears the cache.
type Repository interface {
	Decide(name string) domain.IgnoreDecision
	UpdateAll(rules []domain.IgnoreRule, version uint64, updatedUnix int64) error
	Stats() RepoStats
}
