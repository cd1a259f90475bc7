package searchindex

import "strings"

// breadcrumbsFor walks doc's path segments and collects the title
// registered at each prefix node. If any prefix along the path has no
// document hanging at it, the whole breadcrumb falls back to
// [sourceName, title] rather than a partial trail.
func breadcrumbsFor(state *sourceState, doc indexedDoc) []string {
	if len(doc.pathSegments) == 0 {
		return []string{state.sourceName, doc.title}
	}

	var crumbs []string
	for i := range doc.pathSegments {
		prefix := strings.Join(doc.pathSegments[:i+1], "/")
		title, ok := state.byPath[prefix]
		if !ok {
			return []string{state.sourceName, doc.title}
		}
		crumbs = append(crumbs, title)
	}
	return crumbs
}
