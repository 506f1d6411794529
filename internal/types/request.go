package types

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request represents one HTTP request to be executed by the client wrapper.
type Request struct {
	// URL is the target URL.
	URL *url.URL

	// Method is the HTTP method. Defaults to GET.
	Method string

	// Headers are custom headers merged over the client's fixed set.
	Headers http.Header

	// Form is the form body for POST searches (concier.net style).
	Form url.Values

	// Charset names the page encoding when it is not UTF-8 ("shift_jis");
	// the client transcodes the body before parsing.
	Charset string

	// Tag categorizes the request ("listing", "detail", "options", "search").
	Tag string

	// FetcherType selects the transport: "http" (default) or "browser".
	FetcherType string

	// MaxRetries overrides the configured retry bound when > 0.
	MaxRetries int
}

// NewRequest creates a GET Request for rawURL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, ErrInvalidURL)
	}
	return &Request{
		URL:     u,
		Method:  http.MethodGet,
		Headers: make(http.Header),
	}, nil
}

// NewFormRequest creates a POST Request with an URL-encoded form body.
func NewFormRequest(rawURL string, form url.Values) (*Request, error) {
	req, err := NewRequest(rawURL)
	if err != nil {
		return nil, err
	}
	req.Method = http.MethodPost
	req.Form = form
	return req, nil
}

// URLString returns the string form of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Domain returns the hostname of the request URL.
func (r *Request) Domain() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}

// BodyReader returns an io-ready reader over the encoded form, or nil for
// bodyless requests.
func (r *Request) BodyReader() *strings.Reader {
	if len(r.Form) == 0 {
		return nil
	}
	return strings.NewReader(r.Form.Encode())
}
