package searchindex

import (
	"strings"

	"github.com/ternarybob/docsi/internal/models"
)

// buildSnippet picks the paragraph containing the most query tokens,
// falling back to a matching heading, then the first paragraph, then the
// title. The result is truncated to ≤250 characters preferring a
// sentence boundary at or after position 150, with matched tokens
// bold-marked.
func buildSnippet(query string, doc indexedDoc) string {
	tokens := queryTokens(query)

	source := bestParagraph(tokens, doc.doc.Paragraphs)
	if source == "" {
		source = bestHeading(tokens, doc.doc.Headings)
	}
	if source == "" && len(doc.doc.Paragraphs) > 0 {
		source = doc.doc.Paragraphs[0]
	}
	if source == "" {
		source = doc.title
	}

	truncated := truncateSnippet(source)
	return boldTokens(truncated, tokens)
}

func bestParagraph(tokens []string, paragraphs []string) string {
	best := ""
	bestCount := 0
	for _, p := range paragraphs {
		count := countTokenHits(tokens, p)
		if count > bestCount {
			bestCount = count
			best = p
		}
	}
	return best
}

func bestHeading(tokens []string, headings []models.Heading) string {
	best := ""
	bestCount := 0
	for _, h := range headings {
		count := countTokenHits(tokens, h.Text)
		if count > bestCount {
			bestCount = count
			best = h.Text
		}
	}
	return best
}

func countTokenHits(tokens []string, text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, token := range tokens {
		count += strings.Count(lower, token)
	}
	return count
}

const snippetMaxLength = 250
const snippetSentenceMinPos = 150

func truncateSnippet(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= snippetMaxLength {
		return text
	}
	window := text[:snippetMaxLength]
	if period := strings.LastIndex(window, "."); period >= snippetSentenceMinPos {
		return window[:period+1]
	}
	return strings.TrimSpace(window[:snippetMaxLength-len("...")]) + "..."
}

func boldTokens(text string, tokens []string) string {
	if len(tokens) == 0 {
		return text
	}
	lower := strings.ToLower(text)
	var b strings.Builder
	i := 0
	for i < len(text) {
		matched := false
		for _, token := range tokens {
			if token == "" {
				continue
			}
			end := i + len(token)
			if end <= len(lower) && lower[i:end] == token {
				b.WriteString("**")
				b.WriteString(text[i:end])
				b.WriteString("**")
				i = end
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(text[i])
			i++
		}
	}
	return b.String()
}
