package crawler

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/errs"
)

// fetchResult is one successful fetch's body plus its normalized content
// type, stripped of any `; charset=...` parameters.
type fetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
}

// fetchWithRetry implements §4.7.1: up to maxRetries attempts, backing off
// 2^attempt seconds plus uniform jitter in [0,1s] before each retry. An
// HTTP status >= 400 counts as a failure for retry purposes, same as a
// transport error. The backoff is additive ("2^attempt + uniform [0,1s]"),
// not a multiplicative jitter scheme.
func fetchWithRetry(ctx context.Context, logger arbor.ILogger, client *http.Client, url string, maxRetries int) (fetchResult, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		result, statusCode, err := doFetch(ctx, client, url)
		if err == nil && statusCode < 400 {
			return result, nil
		}

		if err == nil {
			err = fmt.Errorf("fetch %s: status %d: %w", url, statusCode, errs.ErrNetwork)
		}
		lastErr = err

		if attempt == maxRetries-1 {
			break
		}

		backoff := fetchBackoff(attempt)
		logger.Debug().Str("url", url).Int("attempt", attempt+1).Dur("backoff", backoff).Err(err).Msg("retrying fetch after backoff")

		select {
		case <-ctx.Done():
			return fetchResult{}, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fetchResult{}, lastErr
}

func fetchBackoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	return base + jitter
}

func doFetch(ctx context.Context, client *http.Client, url string) (fetchResult, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetchResult{}, 0, fmt.Errorf("build request for %s: %w", url, errs.ErrValidation)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return fetchResult{}, 0, fmt.Errorf("fetch %s: %w", url, errs.ErrNetwork)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetchResult{}, resp.StatusCode, fmt.Errorf("read body of %s: %w", url, errs.ErrNetwork)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	return fetchResult{Body: body, ContentType: contentType, StatusCode: resp.StatusCode}, resp.StatusCode, nil
}

// isHTMLOrXML reports whether contentType (already stripped of
// parameters) is a type the Content Extractor can parse.
func isHTMLOrXML(contentType string) bool {
	switch contentType {
	case "text/html", "application/xhtml+xml", "text/xml", "application/xml":
		return true
	default:
		return contentType == ""
	}
}
