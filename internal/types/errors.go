package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout       = errors.New("request timed out")
	ErrMaxRetries    = errors.New("max retries exceeded")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrNoResults     = errors.New("no results found")
	ErrNoAdapter     = errors.New("no adapter registered for site")
	ErrNoDetailURL   = errors.New("record has no detail URL")
	ErrRestrictedEnv = errors.New("web search disabled in restricted environment")
)

// FetchError wraps errors that occur while fetching a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// IsTerminalFetch reports whether err is a fetch failure that already
// exhausted its retries or was never retryable. The pagination driver
// treats a terminal error on page one as fatal and on later pages as the
// natural end of results.
func IsTerminalFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ParseError wraps errors that occur while extracting listings.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ResolveError wraps errors from a contact-resolution source. Resolution is
// best effort, so these are logged but never propagated past the resolver.
type ResolveError struct {
	Source   string
	Facility string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve error (%s) for %q: %v", e.Source, e.Facility, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// PipelineError wraps an unclassified failure caught at the outer boundary
// of one search invocation.
type PipelineError struct {
	Site string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error (site=%s): %v", e.Site, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
