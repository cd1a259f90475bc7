// Package urlprocessor implements the URL Processor (C1): normalization,
// depth-classification, and link discovery against a source's crawl
// policy. It mirrors the teacher's link_extractor.go goquery-based
// discovery and filters.go pattern matching, generalized from per-source
// include/exclude filters into the classify/normalize contract of
// interfaces.URLProcessor.
package urlprocessor

import (
	"net/url"
	"path"
	"strings"

	"github.com/ternarybob/arbor"
)

// Processor implements interfaces.URLProcessor.
type Processor struct {
	logger arbor.ILogger
	robots RobotsChecker
}

// New creates a URL Processor. robots may be nil, in which case a source's
// respectRobots flag is accepted but never consulted — callers that want
// §4's robots.txt gate wire the Sitemap Processor in here, since it already
// owns the robotstxt fetch-and-parse client.
func New(logger arbor.ILogger, robots RobotsChecker) *Processor {
	return &Processor{logger: logger, robots: robots}
}

var indexFileNames = []string{"index.html", "index.htm", "index.php", "index.aspx", "index.jsp"}

// Normalize resolves rawURL against baseURL, strips the fragment, removes a
// trailing slash, collapses an index-file basename to "/", and upgrades the
// scheme from http to https when baseURL is https and the hostnames match.
// Returns ok=false for anything that fails to parse into an absolute URL.
func (p *Processor) Normalize(rawURL, baseURL string) (string, bool) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}

	resolved, err := base.Parse(rawURL)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", rawURL).Msg("failed to resolve URL against base")
		return "", false
	}
	if !resolved.IsAbs() {
		return "", false
	}

	resolved.Fragment = ""
	resolved.RawFragment = ""

	if resolved.Scheme == "http" && base.Scheme == "https" && resolved.Hostname() == base.Hostname() {
		resolved.Scheme = "https"
	}

	cleanPath := collapseIndex(resolved.Path)
	cleanPath = strings.TrimSuffix(cleanPath, "/")
	if cleanPath == "" {
		cleanPath = "/"
	}
	resolved.Path = cleanPath

	return resolved.String(), true
}

// collapseIndex collapses a trailing /index.{html,htm,php,aspx,jsp} segment
// to "/", matching the source's directory-index canonicalization.
func collapseIndex(p string) string {
	base := path.Base(p)
	for _, name := range indexFileNames {
		if base == name {
			dir := path.Dir(p)
			if dir == "." {
				return "/"
			}
			if !strings.HasSuffix(dir, "/") {
				dir += "/"
			}
			return dir
		}
	}
	return p
}
