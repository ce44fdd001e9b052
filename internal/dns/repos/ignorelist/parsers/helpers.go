// Package parsers turns textual ignore patterns into domain.IgnoreRule values.
//
// A pattern is a service type ("_sleep-proxy._udp.local"), a full instance
// name ("Living Room._googlecast._tcp.local") or either of those prefixed
// with "*." or "." to cover everything beneath it.
package parsers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haukened/rr-mdns/internal/dns/common/utils"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

var errInvalidPattern = errors.New("invalid ignore pattern")

// ParsePattern converts one pattern into a rule attributed to source.
func ParsePattern(raw, source string, now time.Time) (domain.IgnoreRule, error) {
	name, wildcard := utils.SplitWildcard(raw)
	if !isValidName(name) {
		return domain.IgnoreRule{}, fmt.Errorf("%w: %q", errInvalidPattern, raw)
	}
	kind := domain.IgnoreRuleExact
	if wildcard {
		kind = domain.IgnoreRuleSuffix
	}
	return domain.NewIgnoreRule(name, kind, source, now)
}

// ParsePatterns converts configured patterns, skipping duplicates.
// Unlike list files, a bad pattern here is an error: it came from the operator directly.
func ParsePatterns(patterns []string, source string, now time.Time) ([]domain.IgnoreRule, error) {
	seen := make(map[string]struct{}, len(patterns))
	out := make([]domain.IgnoreRule, 0, len(patterns))
	for _, p := range patterns {
		rule, err := ParsePattern(p, source, now)
		if err != nil {
			return nil, err
		}
		key := seenKey(rule)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rule)
	}
	return out, nil
}

// seenKey combines name and kind so a name may carry both an exact and a suffix rule.
func seenKey(r domain.IgnoreRule) string {
	return r.Name + "|" + r.Kind.String()
}

// isValidName checks the canonical textual name against wire limits:
//   - at most 255 bytes
//   - at least two labels
//   - every label 1..63 bytes
//
// Instance labels are free-form UTF-8, so no character class is enforced.
func isValidName(name string) bool {
	if name == "" || len(name) > domain.MaxNameLength {
		return false
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" || len(l) > domain.MaxLabelLength {
			return false
		}
		if strings.ContainsAny(l, "\t\r\n") {
			return false
		}
	}
	return true
}
