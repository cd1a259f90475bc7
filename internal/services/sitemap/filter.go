package sitemap

import (
	"regexp"

	"github.com/ternarybob/docsi/internal/interfaces"
)

// Filter keeps only entries whose Loc matches at least one include pattern (when
// any are given) and none of the exclude patterns, mirroring the URL
// Processor's classify-stage pattern matching.
func (p *Processor) Filter(entries []interfaces.SitemapEntry, include, exclude []string) []interfaces.SitemapEntry {
	var kept []interfaces.SitemapEntry
	for _, entry := range entries {
		if len(include) > 0 && !matchesAnyPattern(include, entry.Loc) {
			continue
		}
		if matchesAnyPattern(exclude, entry.Loc) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

func matchesAnyPattern(patterns []string, target string) bool {
	for _, pattern := range patterns {
		if matched, err := regexpMatch(pattern, target); err == nil && matched {
			return true
		}
	}
	return false
}

func regexpMatch(pattern, target string) (bool, error) {
	if pattern == "" {
		return false, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(target), nil
}
