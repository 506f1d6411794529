package config

import (
	"os"
	"sync"
)

// Capabilities describes what the runtime environment permits. It is probed
// once per process; components that depend on a capability receive the flag
// through their constructor rather than re-probing.
type Capabilities struct {
	// WebSearch is false when outbound scraping of public search engines is
	// known to be blocked or unwelcome (hosted sandboxes, CI, restricted
	// corporate networks). The resolver chain skips its search-engine
	// source when false; the Places API source is unaffected.
	WebSearch bool
}

var (
	capsOnce sync.Once
	caps     Capabilities
)

// DetectCapabilities probes the environment once and caches the result.
func DetectCapabilities() Capabilities {
	capsOnce.Do(func() {
		caps = probeCapabilities(os.Getenv)
	})
	return caps
}

// probeCapabilities is split out so tests can supply their own environment.
func probeCapabilities(getenv func(string) string) Capabilities {
	c := Capabilities{WebSearch: true}

	if v := getenv("KYUSCOUT_RESTRICTED_NETWORK"); v == "1" || v == "true" {
		c.WebSearch = false
		return c
	}

	// Hosted platforms where outbound search-engine scraping is reliably
	// blocked or rate limited into uselessness.
	for _, key := range []string{
		"CI",
		"KUBERNETES_SERVICE_HOST",
		"AWS_LAMBDA_FUNCTION_NAME",
		"DYNO",
	} {
		if getenv(key) != "" {
			c.WebSearch = false
			return c
		}
	}
	return c
}
