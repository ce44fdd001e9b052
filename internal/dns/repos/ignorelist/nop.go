package ignorelist

import (
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// NoopRepository ignores nothing. It stands in when no rules are configured.
type NoopRepository struct{}

func (NoopRepository) Decide(string) domain.IgnoreDecision { return domain.KeepDecision() }

func (NoopRepository) UpdateAll([]domain.IgnoreRule, uint64, int64) error { return nil }

func (NoopRepository) Stats() RepoStats { return RepoStats{} }

var _ Repository = NoopRepository{}
