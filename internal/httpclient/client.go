// Package httpclient builds the *http.Client used by every outbound
// fetch (page downloads, sitemap/robots.txt retrieval): a bounded timeout
// and a fixed User-Agent header, generalized from the teacher's
// NewDefaultHTTPClient factory. The cookie-jar/auth-credential variants
// the teacher carried for its Atlassian-extension login flow have no
// binding here, since a documentation source is fetched anonymously.
package httpclient

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single HTTP round trip when the caller does not
// override it.
const DefaultTimeout = 30 * time.Second

// userAgentTransport sets a fixed User-Agent on every outbound request,
// independent of whatever *http.Request the caller constructs.
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(cloned)
}

// New creates an *http.Client bounded by timeout that stamps every request
// with userAgent, per the source's configured crawl policy.
func New(timeout time.Duration, userAgent string) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			userAgent: userAgent,
			base:      http.DefaultTransport,
		},
	}
}

// NewDefault creates an *http.Client with DefaultTimeout and a DocSI
// identifying User-Agent, for callers (sitemap/robots.txt discovery) that
// run ahead of any specific source's policy.
func NewDefault() *http.Client {
	return New(DefaultTimeout, "docsi/1.0 (+documentation crawler and indexer)")
}
