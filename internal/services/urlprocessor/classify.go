package urlprocessor

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

// nonHTMLExtensions enumerates the image/archive/media/script/style
// extensions classify() rejects outright, matching the teacher's
// isContentURL media-extension denylist, extended to cover the full set
// §4.1 enumerates.
var nonHTMLExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true, ".tiff": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wav": true, ".webm": true,
	".css": true, ".js": true, ".json": true, ".xml": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
}

// Classify applies §4.1's rejection sequence: invalid URL, depth overflow,
// hostname mismatch, non-HTML extension, include-pattern miss,
// exclude-pattern hit, then (when the source opts in) a robots.txt
// disallow. The first applicable reason wins.
func (p *Processor) Classify(rawURL string, source *models.DocumentSource, parentURL string, depth int) interfaces.ClassifyResult {
	normalized, ok := p.Normalize(rawURL, source.BaseURL)
	if !ok {
		return interfaces.ClassifyResult{Accepted: false, Reason: interfaces.RejectInvalidURL}
	}

	if depth > source.Policy.MaxDepth {
		return interfaces.ClassifyResult{Accepted: false, URL: normalized, Reason: interfaces.RejectDepthExceeded}
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return interfaces.ClassifyResult{Accepted: false, Reason: interfaces.RejectInvalidURL}
	}
	if !strings.EqualFold(parsed.Hostname(), source.Hostname()) {
		return interfaces.ClassifyResult{Accepted: false, URL: normalized, Reason: interfaces.RejectHostMismatch}
	}

	if hasNonHTMLExtension(parsed.Path) {
		return interfaces.ClassifyResult{Accepted: false, URL: normalized, Reason: interfaces.RejectExtension}
	}

	if len(source.Policy.IncludePatterns) > 0 && !matchesAny(source.Policy.IncludePatterns, normalized) {
		return interfaces.ClassifyResult{Accepted: false, URL: normalized, Reason: interfaces.RejectNotIncluded}
	}

	if matchesAny(source.Policy.ExcludePatterns, normalized) {
		return interfaces.ClassifyResult{Accepted: false, URL: normalized, Reason: interfaces.RejectExcluded}
	}

	if source.Policy.RespectRobots && p.robots != nil {
		userAgent := source.Policy.UserAgent
		if userAgent == "" {
			userAgent = defaultRobotsUserAgent
		}
		if !p.robots.IsAllowedByRobots(context.Background(), normalized, userAgent) {
			return interfaces.ClassifyResult{Accepted: false, URL: normalized, Reason: interfaces.RejectRobots}
		}
	}

	return interfaces.ClassifyResult{Accepted: true, URL: normalized}
}

func hasNonHTMLExtension(urlPath string) bool {
	lower := strings.ToLower(urlPath)
	for ext := range nonHTMLExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, target string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(target) {
			return true
		}
	}
	return false
}

// DepthFromParent is the authoritative depth function for link-following:
// a URL equal to its parent or to the base URL inherits the parent's
// depth; every other child is one deeper. The structural, path-segment
// variant (DepthFromPath) is reserved for sitemap seeding, which has no
// parent to inherit from.
func (p *Processor) DepthFromParent(rawURL, parentURL string, parentDepth int, baseURL string) int {
	if rawURL == parentURL || rawURL == baseURL {
		return parentDepth
	}
	return parentDepth + 1
}

// DepthFromPath derives a structural depth estimate from the number of
// non-empty path segments, used only to seed sitemap entries that have no
// parent URL to compute an incremental depth from.
func (p *Processor) DepthFromPath(rawURL string) int {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	count := 0
	for _, seg := range segments {
		if seg != "" {
			count++
		}
	}
	return count
}
