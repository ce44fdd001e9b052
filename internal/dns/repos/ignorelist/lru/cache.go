// Package lru caches ignore decisions per canonical name.
package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist"
)

// DefaultSize is the cache capacity used when configuration leaves it unset.
const DefaultSize = 1024

// decisionCache is an LRU-backed ignorelist.DecisionCache.
// Evictions include entries dropped by Purge.
type decisionCache struct {
	entries   *lru.Cache[string, domain.IgnoreDecision]
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a DecisionCache holding up to size decisions.
// A size <= 0 yields a cache that never stores anything but still counts misses.
func New(size int) (ignorelist.DecisionCache, error) {
	if size <= 0 {
		return &passthrough{}, nil
	}
	c := &decisionCache{}
	entries, err := lru.NewWithEvict(size, func(string, domain.IgnoreDecision) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

func (c *decisionCache) Get(name string) (domain.IgnoreDecision, bool) {
	d, ok := c.entries.Get(name)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return d, ok
}

func (c *decisionCache) Put(name string, d domain.IgnoreDecision) { c.entries.Add(name, d) }

func (c *decisionCache) Len() int { return c.entries.Len() }

func (c *decisionCache) Purge() { c.entries.Purge() }

func (c *decisionCache) Stats() (hits, misses, evictions uint64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}

// passthrough stores nothing.
type passthrough struct {
	misses atomic.Uint64
}

func (p *passthrough) Get(string) (domain.IgnoreDecision, bool) {
	p.misses.Add(1)
	return domain.IgnoreDecision{}, false
}

func (p *passthrough) Put(string, domain.IgnoreDecision) {}

func (p *passthrough) Len() int { return 0 }

func (p *passthrough) Purge() {}

func (p *passthrough) Stats() (uint64, uint64, uint64) { return 0, p.misses.Load(), 0 }

var (
	_ ignorelist.DecisionCache = (*decisionCache)(nil)
	_ ignorelist.DecisionCache = (*passthrough)(nil)
)
