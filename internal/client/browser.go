package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/types"
)

// BrowserFetcher renders pages in a headless Chromium via Rod. It is only
// used for sites that assemble their listings client side; everything else
// goes through the plain HTTP Client.
type BrowserFetcher struct {
	cfg     config.BrowserConfig
	browser *rod.Browser
	logger  *slog.Logger

	mu       sync.Mutex
	launched bool
}

// NewBrowserFetcher creates a lazy browser fetcher. The browser process is
// launched on first Fetch so that runs which never touch a browser-backed
// site pay nothing.
func NewBrowserFetcher(cfg config.BrowserConfig, logger *slog.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		cfg:    cfg,
		logger: logger.With("component", "browser"),
	}
}

func (bf *BrowserFetcher) connect() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	if bf.launched {
		return nil
	}

	l := launcher.New().
		Headless(bf.cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")
	if bf.cfg.WindowSize != "" {
		l = l.Set("window-size", bf.cfg.WindowSize)
	}
	if bf.cfg.UserDataDir != "" {
		l = l.UserDataDir(bf.cfg.UserDataDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}

	bf.browser = browser
	bf.launched = true
	bf.logger.Info("browser ready", "headless", bf.cfg.Headless, "stealth", bf.cfg.Stealth)
	return nil
}

// Fetch navigates to the request URL and returns the rendered HTML.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if err := bf.connect(); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: false}
	}

	start := time.Now()

	var page *rod.Page
	var err error
	if bf.cfg.Stealth {
		page, err = stealth.Page(bf.browser)
	} else {
		page, err = bf.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: fmt.Errorf("new page: %w", err), Retryable: true}
	}
	defer page.Close()

	page = page.Context(ctx)

	if ua := req.Headers.Get("User-Agent"); ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	timeout := bf.cfg.PageTimeout
	if err := page.Timeout(timeout).Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}
	if err := page.Timeout(timeout).WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", req.URLString(), "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	bf.logger.Debug("rendered", "url", req.URLString(), "bytes", len(html), "duration", time.Since(start))
	return types.NewBrowserResponse(req, 200, []byte(html), finalURL, time.Since(start)), nil
}

// Close shuts down the browser process if one was launched.
func (bf *BrowserFetcher) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	if !bf.launched {
		return nil
	}
	bf.launched = false
	return bf.browser.Close()
}
