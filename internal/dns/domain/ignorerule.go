package domain

import (
	"fmt"
	"strings"
	"time"
)

// IgnoreRuleKind defines how an ignore rule matches names.
//
// exact  - matches the name only
// suffix - matches the name and every name below it
type IgnoreRuleKind uint8

const (
	// IgnoreRuleExact matches only the exact name.
	IgnoreRuleExact IgnoreRuleKind = iota
	// IgnoreRuleSuffix matches the name and all names ending in it.
	IgnoreRuleSuffix
)

// String returns a stable string representation of the rule kind.
func (k IgnoreRuleKind) String() string {
	switch k {
	case IgnoreRuleExact:
		return "exact"
	case IgnoreRuleSuffix:
		return "suffix"
	default:
		return fmt.Sprintf("IgnoreRuleKind(%d)", k)
	}
}

// ParseIgnoreRuleKind converts "exact" or "suffix" (case-insensitive) into a kind.
func ParseIgnoreRuleKind(s string) (IgnoreRuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return IgnoreRuleExact, nil
	case "suffix":
		return IgnoreRuleSuffix, nil
	default:
		return 0, fmt.Errorf("unsupported IgnoreRuleKind: %q", s)
	}
}

// IgnoreRule hides a service type or instance from discovery results.
// Name is canonical: lower-case, no trailing dot ("_sleep-proxy._udp.local").
type IgnoreRule struct {
	Name    string
	Kind    IgnoreRuleKind
	Source  string    // config key or file path the rule came from
	AddedAt time.Time // ingestion timestamp
}

// NewIgnoreRule constructs an IgnoreRule and validates its fields.
func NewIgnoreRule(name string, kind IgnoreRuleKind, source string, addedAt time.Time) (IgnoreRule, error) {
	r := IgnoreRule{
		Name:    strings.TrimSpace(name),
		Kind:    kind,
		Source:  strings.TrimSpace(source),
		AddedAt: addedAt,
	}
	if err := r.Validate(); err != nil {
		return IgnoreRule{}, err
	}
	return r, nil
}

// Validate checks the IgnoreRule for required fields and supported values.
func (r IgnoreRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name must not be empty")
	}
	if r.Source == "" {
		return fmt.Errorf("rule source must not be empty")
	}
	if r.AddedAt.IsZero() {
		return fmt.Errorf("rule addedAt must be set")
	}
	switch r.Kind {
	case IgnoreRuleExact, IgnoreRuleSuffix:
	default:
		return fmt.Errorf("unsupported IgnoreRuleKind: %d", r.Kind)
	}
	return nil
}

// Matches reports whether the canonical name cn falls under the rule.
func (r IgnoreRule) Matches(cn string) bool {
	if cn == r.Name {
		return true
	}
	return r.Kind == IgnoreRuleSuffix && strings.HasSuffix(cn, "."+r.Name)
}

// IgnoreDecision is the outcome of evaluating a name against the ignore list.
type IgnoreDecision struct {
	Ignored     bool
	MatchedRule string
	Source      string
	Kind        IgnoreRuleKind
}

// KeepDecision returns a not-ignored decision.
func KeepDecision() IgnoreDecision { return IgnoreDecision{} }
