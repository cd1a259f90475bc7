package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/docsi/internal/interfaces"
)

// urlSet is a regular sitemap document (the <urlset> root).
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []entryXML `xml:"url"`
}

type entryXML struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	Priority   *float64 `xml:"priority"`
}

// sitemapIndex is a sitemap-of-sitemaps document (the <sitemapindex> root).
type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Sitemaps []sitemapXML   `xml:"sitemap"`
}

type sitemapXML struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// Parse fetches sitemapURL and returns its entries. A sitemap-index
// document is followed recursively up to maxSitemapRecursion levels deep;
// the accumulated entry count across the whole call never exceeds
// maxSitemapEntries. A malformed or unreachable sitemap yields an error
// that the caller localizes to just that URL, per §4.3's failure
// semantics.
func (p *Processor) Parse(ctx context.Context, sitemapURL string) ([]interfaces.SitemapEntry, error) {
	return p.parseAt(ctx, sitemapURL, 0, &entryBudget{remaining: maxSitemapEntries})
}

type entryBudget struct {
	remaining int
}

func (p *Processor) parseAt(ctx context.Context, sitemapURL string, depth int, budget *entryBudget) ([]interfaces.SitemapEntry, error) {
	if depth > maxSitemapRecursion {
		p.logger.Debug().Str("url", sitemapURL).Msg("sitemap recursion depth exceeded, stopping")
		return nil, nil
	}
	if budget.remaining <= 0 {
		return nil, nil
	}

	body, err := p.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("sitemap: fetch %s: %w", sitemapURL, err)
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		var entries []interfaces.SitemapEntry
		for _, child := range index.Sitemaps {
			if budget.remaining <= 0 {
				break
			}
			childEntries, err := p.parseAt(ctx, child.Loc, depth+1, budget)
			if err != nil {
				p.logger.Debug().Err(err).Str("sitemap", child.Loc).Msg("failed to parse nested sitemap, skipping")
				continue
			}
			entries = append(entries, childEntries...)
		}
		return entries, nil
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("sitemap: unmarshal %s: %w", sitemapURL, err)
	}

	var entries []interfaces.SitemapEntry
	for _, u := range set.URLs {
		if budget.remaining <= 0 {
			break
		}
		if u.Loc == "" {
			continue
		}
		entry := interfaces.SitemapEntry{Loc: u.Loc, LastMod: u.LastMod}
		if u.Priority != nil {
			entry.Priority = *u.Priority
			entry.HasPriority = true
		}
		entries = append(entries, entry)
		budget.remaining--
	}
	return entries, nil
}

func (p *Processor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
