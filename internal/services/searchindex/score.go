package searchindex

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// fieldScore runs a fuzzy match of query against field and returns a
// score in [0,1]: the fraction of field's runes the match actually
// covers. sahilm/fuzzy's own Score is an unbounded, relative-ranking
// value with no fixed ceiling, so MatchedIndexes coverage is used
// instead as the bounded [0,1] measure §4.6 requires.
func fieldScore(query, field string) float64 {
	if len(query) < minMatchLength || field == "" {
		return 0
	}
	matches := fuzzy.Find(query, []string{field})
	if len(matches) == 0 {
		return 0
	}
	best := matches[0]
	covered := len(best.MatchedIndexes)
	total := len([]rune(field))
	if total == 0 {
		return 0
	}
	return float64(covered) / float64(total)
}

// documentScore combines the four weighted fields into a single [0,1]
// score, per §4.6's weights (title 2.0, headings 1.5, content 1.0, tags
// 0.8).
func documentScore(query string, doc indexedDoc) float64 {
	titleScore := fieldScore(query, doc.title)
	headingsScore := fieldScore(query, doc.headingsText)
	contentScore := fieldScore(query, doc.content)
	tagsScore := fieldScore(query, doc.tags)

	weighted := weightTitle*titleScore + weightHeadings*headingsScore + weightContent*contentScore + weightTags*tagsScore
	score := weighted / weightTotal
	if score > 1 {
		score = 1
	}
	return score
}

// queryTokens splits query into lowercase tokens of at least
// minMatchLength characters, the unit both scoring and snippet
// generation tokenize on.
func queryTokens(query string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		if len(field) >= minMatchLength {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
