package parsers

import (
	"bufio"
	"io"
	"strings"
	"time"

	logpkg "github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// ParsePlainList parses a newline-delimited list of patterns into IgnoreRule values.
//
// Behavior:
// - '#' starts a comment, whole-line or inline
// - blank lines and invalid patterns are skipped with a debug log
// - duplicates are dropped, first-seen order is kept
// - each rule is attributed to source and stamped with now
func ParsePlainList(r io.Reader, source string, logger logpkg.Logger, now time.Time) ([]domain.IgnoreRule, error) {
	scanner := bufio.NewScanner(r)
	seen := make(map[string]struct{})
	out := make([]domain.IgnoreRule, 0, 32)
	logger.Debug(map[string]any{"source": source}, "parse_plain_list_start")

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rule, err := ParsePattern(line, source, now)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "raw": line, "error": err.Error()}, "skip_invalid_pattern")
			continue
		}
		key := seenKey(rule)
		if _, ok := seen[key]; ok {
			logger.Debug(map[string]any{"line": lineNum, "name": rule.Name}, "skip_duplicate")
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rule)
	}

	if err := scanner.Err(); err != nil {
		logger.Warn(map[string]any{"source": source, "error": err.Error()}, "parse_plain_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_plain_list_done")
	return out, nil
}
