package urlprocessor

import (
	"context"

	"github.com/ternarybob/docsi/internal/common"
)

// RobotsChecker reports whether userAgent may fetch rawURL per the target
// host's robots.txt. The Sitemap Processor's IsAllowedByRobots satisfies
// this directly, so Classify reuses its fetch-and-parse logic instead of
// duplicating a second robotstxt client here.
type RobotsChecker interface {
	IsAllowedByRobots(ctx context.Context, rawURL, userAgent string) bool
}

// defaultRobotsUserAgent is substituted when a source opts into
// respectRobots but never set Policy.UserAgent.
const defaultRobotsUserAgent = common.AppName
