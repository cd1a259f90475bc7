package searchindex

import (
	"context"
	"sort"
	"strings"

	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

// Search scores query against every registered source's documents,
// drops anything below matchThreshold, and groups surviving results by
// source, ranked and capped at maxResultsPerGroup (§4.6). Groups are
// then ordered by their own top result's score. Pinned custom links
// whose name contains query (case-insensitive substring) are returned
// alongside, unranked.
func (idx *Index) Search(ctx context.Context, query string) (interfaces.SearchResponse, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var groups []interfaces.SourceResultGroup
	for _, state := range idx.sources {
		var results []interfaces.SearchResult
		for _, doc := range state.docs {
			score := documentScore(query, doc)
			if score < matchThreshold {
				continue
			}
			results = append(results, interfaces.SearchResult{
				Document:    doc.doc,
				SourceName:  state.sourceName,
				Score:       score,
				Snippet:     buildSnippet(query, doc),
				Breadcrumbs: breadcrumbsFor(state, doc),
			})
		}
		if len(results) == 0 {
			continue
		}

		sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
		if len(results) > maxResultsPerGroup {
			results = results[:maxResultsPerGroup]
		}

		groups = append(groups, interfaces.SourceResultGroup{
			SourceName: state.sourceName,
			Results:    results,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Results[0].Score > groups[j].Results[0].Score
	})

	return interfaces.SearchResponse{
		GroupedResults:    groups,
		CustomLinkMatches: matchingCustomLinks(query, idx.customLinks),
	}, nil
}

// matchingCustomLinks returns the pinned links whose name contains
// query as a case-insensitive substring. The spec leaves matching
// semantics for pinned links unspecified; substring match keeps pinned
// links easy to find by a short name fragment without subjecting them
// to the same fuzzy threshold as ranked results.
func matchingCustomLinks(query string, links []models.CustomLink) []models.CustomLink {
	if query == "" {
		return nil
	}
	lowerQuery := strings.ToLower(query)
	var matches []models.CustomLink
	for _, link := range links {
		if strings.Contains(strings.ToLower(link.Name), lowerQuery) {
			matches = append(matches, link)
		}
	}
	return matches
}
