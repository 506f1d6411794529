package client

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/types"
)

// Fetcher executes a request and returns a response. Both the HTTP client
// and the headless browser fetcher satisfy it.
type Fetcher interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)
	Close() error
}

// Client is the HTTP client wrapper shared by every site adapter. It keeps a
// cookie session, applies a fixed browser-like header set, rate limits
// outbound requests, retries transient failures with jittered backoff, and
// transcodes non-UTF-8 bodies.
type Client struct {
	cfg     config.ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client from configuration.
func New(cfg config.ClientConfig, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.TLSInsecure},
	}

	httpClient := &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   cfg.RequestTimeout,
	}
	if !cfg.FollowRedirects {
		httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if cfg.MaxRedirects > 0 {
		maxRedirects := cfg.MaxRedirects
		httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: limiter,
		logger:  logger.With("component", "client"),
	}, nil
}

// Fetch executes the request, retrying transient failures up to the
// configured bound with jittered backoff. Terminal HTTP errors (4xx other
// than 429) fail immediately.
func (c *Client) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	maxRetries := c.cfg.MaxRetries
	if req.MaxRetries > 0 {
		maxRetries = req.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay(attempt, lastErr)
			c.logger.Debug("retrying request",
				"url", req.URLString(),
				"attempt", attempt,
				"delay", delay,
				"error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.doOnce(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var fe *types.FetchError
		if errors.As(err, &fe) && !fe.Retryable {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", types.ErrMaxRetries, maxRetries+1, lastErr)
}

func (c *Client) doOnce(ctx context.Context, req *types.Request) (*types.Response, error) {
	if err := c.CourtesyDelay(ctx); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URLString(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body := req.BodyReader(); body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, req.Method, req.URLString(), body)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.setHeaders(httpReq)
	for key, values := range req.Headers {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, &types.FetchError{
			URL:       req.URLString(),
			Err:       err,
			Retryable: isRetryableError(err),
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(httpResp.Body, 4096))
		return nil, &types.FetchError{
			URL:        req.URLString(),
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", httpResp.StatusCode),
			Retryable:  isRetryableStatus(httpResp.StatusCode),
			RetryAfter: parseRetryAfter(httpResp.Header.Get("Retry-After")),
		}
	}

	body, err := c.readBody(httpResp)
	if err != nil {
		return nil, &types.FetchError{
			URL:       req.URLString(),
			Err:       fmt.Errorf("reading body: %w", err),
			Retryable: true,
		}
	}
	if len(body) == 0 {
		return nil, &types.FetchError{
			URL:       req.URLString(),
			Err:       types.ErrEmptyResponse,
			Retryable: true,
		}
	}

	if req.Charset != "" {
		body, err = transcode(body, req.Charset)
		if err != nil {
			return nil, fmt.Errorf("transcoding %s body: %w", req.Charset, err)
		}
	}

	c.logger.Debug("fetched",
		"url", req.URLString(),
		"status", httpResp.StatusCode,
		"bytes", len(body),
		"duration", duration)

	return types.NewResponse(req, httpResp, body, duration), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	return io.ReadAll(io.LimitReader(reader, c.cfg.MaxBodySize))
}

// retryDelay computes the wait before the given attempt: the base delay
// scaled by the attempt number, with ±25% jitter, or the server-supplied
// Retry-After when one accompanied the failure.
func (c *Client) retryDelay(attempt int, lastErr error) time.Duration {
	var fe *types.FetchError
	if errors.As(lastErr, &fe) && fe.RetryAfter > 0 {
		return fe.RetryAfter
	}
	base := c.cfg.RetryDelay * time.Duration(attempt)
	if base <= 0 {
		return 0
	}
	return jittered(base)
}

// CourtesyDelay sleeps the configured base delay with ±25% jitter, honoring
// context cancellation. Every outbound request pays it before firing.
func (c *Client) CourtesyDelay(ctx context.Context) error {
	return SleepJitter(ctx, c.cfg.CourtesyDelay)
}

// SleepJitter sleeps for base ±25%, or returns early with the context error.
func SleepJitter(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jittered(base)):
		return nil
	}
}

// jittered returns base ±25%.
func jittered(base time.Duration) time.Duration {
	half := int64(base) / 2
	if half <= 0 {
		return base
	}
	return base*3/4 + time.Duration(rand.Int63n(half))
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return false
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// transcode converts body from the named charset to UTF-8.
func transcode(body []byte, charset string) ([]byte, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return body, nil
	case "shift_jis", "shift-jis", "sjis", "cp932", "windows-31j":
		out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), body)
		return out, err
	case "euc-jp", "eucjp":
		out, _, err := transform.Bytes(japanese.EUCJP.NewDecoder(), body)
		return out, err
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}
