// Package errs defines the DocSI error taxonomy: sentinel kinds that every
// component wraps application errors against, so callers can branch with
// errors.Is instead of string matching.
package errs

import "errors"

// Sentinel error kinds. Wrap with fmt.Errorf("...: %w", ErrX) at the point
// an operation fails; unwrap with errors.Is / errors.As at the boundary that
// needs to branch on kind (job status, exit codes, retry policy).
var (
	// ErrValidation covers bad URLs, bad patterns, bad identifiers, and
	// depth/page overflow. Fails the operation immediately; never retried.
	ErrValidation = errors.New("validation error")

	// ErrNetwork covers timeouts, DNS failures, TCP resets, and HTTP >= 500
	// responses. Retried by the fetch layer up to its configured limit.
	ErrNetwork = errors.New("network error")

	// ErrHTTPClient covers HTTP 4xx responses. Not retried; the URL is
	// marked failed and the crawl continues.
	ErrHTTPClient = errors.New("http client error")

	// ErrParse covers HTML/XML/JSON parse failures. Logged, with an empty
	// result substituted; never propagated to the caller.
	ErrParse = errors.New("parse error")

	// ErrStorage covers filesystem I/O failures. Surfaced to the caller;
	// aborts the offending write but not the whole crawl unless it recurs
	// on index.json.
	ErrStorage = errors.New("storage error")

	// ErrPolicy covers rejection by include/exclude patterns, depth limits,
	// or host scope. Routine outcome, never reported as an error.
	ErrPolicy = errors.New("policy rejection")

	// ErrCancelled marks a job or operation terminated by cancellation.
	ErrCancelled = errors.New("cancelled")

	// ErrInternal marks an invariant violation. The only kind a recovered
	// panic may legitimately surface as.
	ErrInternal = errors.New("internal error")
)

// Kind returns the sentinel this error was wrapped against, or ErrInternal
// if none of the known kinds match. Used at reporting boundaries (CLI exit
// codes, job terminal status) that need a single kind per error.
func Kind(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrNetwork):
		return ErrNetwork
	case errors.Is(err, ErrHTTPClient):
		return ErrHTTPClient
	case errors.Is(err, ErrParse):
		return ErrParse
	case errors.Is(err, ErrStorage):
		return ErrStorage
	case errors.Is(err, ErrPolicy):
		return ErrPolicy
	case errors.Is(err, ErrCancelled):
		return ErrCancelled
	default:
		return ErrInternal
	}
}

// ExitCode maps an error's kind to the CLI exit codes a host wrapper should
// use: 0 success, 1 validation, 2 network, 3 storage, 4 cancellation, 5
// internal.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch Kind(err) {
	case ErrValidation:
		return 1
	case ErrNetwork, ErrHTTPClient:
		return 2
	case ErrStorage:
		return 3
	case ErrCancelled:
		return 4
	default:
		return 5
	}
}
