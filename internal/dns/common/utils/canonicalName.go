// Package utils holds small string helpers for DNS names in their textual form.
package utils

import "strings"

// CanonicalDNSName returns a DNS name in canonical form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot, so "Printer.local." and "printer.local" compare equal.
func CanonicalDNSName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	// remove all trailing dots
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// SplitWildcard recognises the suffix forms "*.example.local" and ".example.local".
// It returns the canonical name without the wildcard marker and whether one was present.
func SplitWildcard(pattern string) (string, bool) {
	p := strings.TrimSpace(pattern)
	switch {
	case strings.HasPrefix(p, "*."):
		return CanonicalDNSName(p[2:]), true
	case strings.HasPrefix(p, "."):
		return CanonicalDNSName(p[1:]), true
	default:
		return CanonicalDNSName(p), false
	}
}
