package ignorelist

import (
	"sync"

	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// memoryStore is a map-backed Store used when no database path is configured.
type memoryStore struct {
	mu      sync.RWMutex
	exact   map[string]domain.IgnoreRule
	suffix  map[string]domain.IgnoreRule
	version uint64
	updated int64
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{
		exact:  map[string]domain.IgnoreRule{},
		suffix: map[string]domain.IgnoreRule{},
	}
}

// GetFirstMatch prefers an exact rule, then the most specific suffix rule.
func (s *memoryStore) GetFirstMatch(name string) (domain.IgnoreRule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.exact[name]; ok {
		return r, true, nil
	}
	for _, a := range suffixAnchors(name) {
		if r, ok := s.suffix[a]; ok {
			return r, true, nil
		}
	}
	return domain.IgnoreRule{}, false, nil
}

func (s *memoryStore) RebuildAll(rules []domain.IgnoreRule, version uint64, updatedUnix int64) error {
	exact := make(map[string]domain.IgnoreRule)
	suffix := make(map[string]domain.IgnoreRule)
	for _, r := range rules {
		switch r.Kind {
		case domain.IgnoreRuleExact:
			exact[r.Name] = r
		case domain.IgnoreRuleSuffix:
			suffix[r.Name] = r
		}
	}
	s.mu.Lock()
	s.exact, s.suffix = exact, suffix
	s.version, s.updated = version, updatedUnix
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreStats{
		ExactCount:  uint64(len(s.exact)),
		SuffixCount: uint64(len(s.suffix)),
		Version:     s.version,
		UpdatedUnix: s.updated,
	}
}

func (s *memoryStore) Close() error { return nil }

var _ Store = (*memoryStore)(nil)
