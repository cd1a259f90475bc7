package urlprocessor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLinks parses html, reads every <a href>, discards fragment-only,
// javascript:, mailto:, and tel: links, normalizes each survivor against
// baseURL, and deduplicates while preserving first-seen order. Parse
// errors yield an empty slice and are logged, never propagated, per §4.1's
// failure semantics.
func (p *Processor) ExtractLinks(html, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Debug().Err(err).Str("base_url", baseURL).Msg("failed to parse HTML for link extraction")
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if shouldSkipHref(href) {
			return
		}

		normalized, ok := p.Normalize(href, baseURL)
		if !ok {
			return
		}
		if seen[normalized] {
			return
		}
		seen[normalized] = true
		links = append(links, normalized)
	})

	return links
}

func shouldSkipHref(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	if h == "" || strings.HasPrefix(h, "#") {
		return true
	}
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "sms:", "data:", "ftp:"} {
		if strings.HasPrefix(h, prefix) {
			return true
		}
	}
	return false
}
