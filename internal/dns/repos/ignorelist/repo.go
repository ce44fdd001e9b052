package ignorelist

import (
	"strings"
	"sync"

	"github.com/haukened/rr-mdns/internal/dns/common/utils"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// repository implements the Repository interface by composing a Store,
// a Bloom filter (via factory), and a DecisionCache. It applies a bloom → cache → store pipeline
// on reads and performs atomic snapshot updates on writes.
type repository struct {
	mu      sync.RWMutex
	store   Store
	cache   DecisionCache
	bloom   BloomFilter
	factory BloomFactory
	fpRate  float64
}

// NewRepository constructs a Repository.
// fpRate is the target false-positive rate for the Bloom filter when rebuilding.
func NewRepository(store Store, cache DecisionCache, factory BloomFactory, fpRate float64) Repository {
	return &repository{store: store, cache: cache, factory: factory, fpRate: fpRate}
}

// Decide returns an IgnoreDecision for the provided name.
// Policy: on internal errors, prefer Keep (not ignored).
func (r *repository) Decide(name string) domain.IgnoreDecision {
	cn := utils.CanonicalDNSName(name)
	if cn == "" {
		return domain.KeepDecision()
	}
	// 1) checkBloom: early-keep if definitively negative
	if !r.checkBloom(cn) {
		return domain.KeepDecision()
	}
	// 2) checkCache
	if d, ok := r.checkCache(cn); ok {
		return d
	}
	// 3) checkStore
	dec := r.checkStore(cn)
	// 4) updateCache
	r.updateCache(cn, dec)
	return dec
}

// UpdateAll performs an atomic snapshot update across store, bloom, and cache.
func (r *repository) UpdateAll(rules []domain.IgnoreRule, version uint64, updatedUnix int64) error {
	// 1) Rebuild the store first.
	if err := r.store.RebuildAll(rules, version, updatedUnix); err != nil {
		return err
	}

	// 2) Build a fresh Bloom filter sized for the dataset.
	var n uint64
	for _, ru := range rules {
		if ru.Kind == domain.IgnoreRuleExact || ru.Kind == domain.IgnoreRuleSuffix {
			n++
		}
	}
	bf := r.factory.New(n, r.fpRate)
	for _, ru := range rules {
		switch ru.Kind {
		case domain.IgnoreRuleExact:
			bf.Add([]byte(ru.Name))
		case domain.IgnoreRuleSuffix:
			bf.Add([]byte(reverseString(ru.Name)))
		}
	}

	// 3) Swap bloom and purge decision cache under lock.
	r.mu.Lock()
	r.bloom = bf
	r.cache.Purge()
	r.mu.Unlock()
	return nil
}

// Stats combines cache counters with the store snapshot.
func (r *repository) Stats() RepoStats {
	r.mu.RLock()
	hits, misses, evictions := r.cache.Stats()
	size := r.cache.Len()
	r.mu.RUnlock()
	return RepoStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
		CacheSize: size,
		Store:     r.store.Stats(),
	}
}

// reverseString reverses the string bytes. Must match the store's reversal logic
// used for suffix anchors to keep Bloom keys aligned with store keys.
func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// suffixAnchors returns cn and each parent name, most specific first:
// "a.b.local" → "a.b.local", "b.local", "local".
func suffixAnchors(cn string) []string {
	anchors := []string{cn}
	for a := cn; ; {
		i := strings.IndexByte(a, '.')
		if i < 0 || i == len(a)-1 {
			return anchors
		}
		a = a[i+1:]
		anchors = append(anchors, a)
	}
}

// checkBloom returns true if we should consult the store (maybe-positive),
// or false if we can early-keep (definitely negative). If no bloom is loaded,
// returns true to allow authoritative checking.
func (r *repository) checkBloom(cn string) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	if bf.MightContain([]byte(cn)) {
		return true
	}
	for _, a := range suffixAnchors(cn) {
		if bf.MightContain([]byte(reverseString(a))) {
			return true
		}
	}
	return false
}

// checkCache returns a cached decision when present.
func (r *repository) checkCache(cn string) (domain.IgnoreDecision, bool) {
	r.mu.RLock()
	d, ok := r.cache.Get(cn)
	r.mu.RUnlock()
	return d, ok
}

// checkStore consults the authoritative store and materializes a decision.
// On any error or miss, returns Keep.
func (r *repository) checkStore(cn string) domain.IgnoreDecision {
	rule, ok, err := r.store.GetFirstMatch(cn)
	if err == nil && ok {
		return domain.IgnoreDecision{Ignored: true, MatchedRule: rule.Name, Source: rule.Source, Kind: rule.Kind}
	}
	return domain.KeepDecision()
}

// updateCache writes the final decision.
func (r *repository) updateCache(cn string, dec domain.IgnoreDecision) {
	r.mu.Lock()
	r.cache.Put(cn, dec)
	r.mu.Unlock()
}
