package sitemap

import (
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/docsi/internal/interfaces"
)

// Score computes entry's priority, lower meaning higher priority, as the
// additive sum of §4.3's factors: path depth (×5), priority-keyword
// presence (−10 each), explicit sitemap priority (scaled to −50..0),
// lastmod recency (linear boost within a 90-day window), configured
// pattern boosts/demotions, root path (−30), first-level path (−15). The
// result is clamped to ≥0.
func (p *Processor) Score(entry interfaces.SitemapEntry, baseURL string, opts interfaces.ScoreOptions) int {
	score := 0

	parsed, err := url.Parse(entry.Loc)
	path := "/"
	if err == nil {
		path = parsed.Path
	}
	segments := pathSegments(path)

	score += len(segments) * 5

	lowerPath := strings.ToLower(path)
	for _, keyword := range priorityKeywords {
		if strings.Contains(lowerPath, keyword) {
			score -= 10
		}
	}

	if entry.HasPriority {
		priority := entry.Priority
		if priority < 0 {
			priority = 0
		}
		if priority > 1 {
			priority = 1
		}
		score += int(-50 * priority)
	}

	if entry.LastMod != "" {
		if boost, ok := recencyBoost(entry.LastMod); ok {
			score -= boost
		}
	}

	for pattern, boost := range opts.PatternBoosts {
		if matched, _ := regexpMatch(pattern, entry.Loc); matched {
			score -= boost
		}
	}
	for pattern, demotion := range opts.PatternDemotions {
		if matched, _ := regexpMatch(pattern, entry.Loc); matched {
			score += demotion
		}
	}

	switch len(segments) {
	case 0:
		score -= 30
	case 1:
		score -= 15
	}

	if score < 0 {
		score = 0
	}
	return score
}

func pathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// recencyBoost returns a linear discount (0..20) for a lastmod timestamp
// within the 90-day recency window, most recent scoring highest.
func recencyBoost(lastMod string) (int, bool) {
	t, err := parseLastMod(lastMod)
	if err != nil {
		return 0, false
	}
	age := time.Since(t)
	if age < 0 || age > recencyWindow {
		return 0, false
	}
	fraction := 1 - float64(age)/float64(recencyWindow)
	return int(20 * fraction), true
}

var lastModLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

func parseLastMod(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range lastModLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
