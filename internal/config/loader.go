package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the given file (optional), environment
// variables prefixed with KYUSCOUT_, and built-in defaults, in increasing
// order of precedence for env over file over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("KYUSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("kyuscout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kyuscout")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("client.request_timeout", def.Client.RequestTimeout)
	v.SetDefault("client.max_retries", def.Client.MaxRetries)
	v.SetDefault("client.retry_delay", def.Client.RetryDelay)
	v.SetDefault("client.courtesy_delay", def.Client.CourtesyDelay)
	v.SetDefault("client.requests_per_sec", def.Client.RequestsPerSec)
	v.SetDefault("client.follow_redirects", def.Client.FollowRedirects)
	v.SetDefault("client.max_redirects", def.Client.MaxRedirects)
	v.SetDefault("client.max_body_size", def.Client.MaxBodySize)
	v.SetDefault("client.tls_insecure", def.Client.TLSInsecure)
	v.SetDefault("client.idle_conn_timeout", def.Client.IdleConnTimeout)
	v.SetDefault("client.max_idle_conns", def.Client.MaxIdleConns)
	v.SetDefault("client.user_agent", def.Client.UserAgent)
	v.SetDefault("client.accept_language", def.Client.AcceptLanguage)

	v.SetDefault("paginate.default_quota", def.Paginate.DefaultQuota)
	v.SetDefault("paginate.max_pages", def.Paginate.MaxPages)
	v.SetDefault("paginate.max_empty_pages", def.Paginate.MaxEmptyPages)
	v.SetDefault("paginate.page_delay", def.Paginate.PageDelay)

	v.SetDefault("enrich.enabled", def.Enrich.Enabled)
	v.SetDefault("enrich.error_budget_cap", def.Enrich.ErrorBudgetCap)

	v.SetDefault("resolve.enabled", def.Resolve.Enabled)
	v.SetDefault("resolve.places_api_key", def.Resolve.PlacesAPIKey)
	v.SetDefault("resolve.places_endpoint", def.Resolve.PlacesEndpoint)
	v.SetDefault("resolve.search_endpoint", def.Resolve.SearchEndpoint)
	v.SetDefault("resolve.search_variants", def.Resolve.SearchVariants)
	v.SetDefault("resolve.disable_web_query", def.Resolve.DisableWebQuery)

	v.SetDefault("browser.enabled", def.Browser.Enabled)
	v.SetDefault("browser.headless", def.Browser.Headless)
	v.SetDefault("browser.stealth", def.Browser.Stealth)
	v.SetDefault("browser.page_timeout", def.Browser.PageTimeout)
	v.SetDefault("browser.window_size", def.Browser.WindowSize)
	v.SetDefault("browser.user_data_dir", def.Browser.UserDataDir)

	v.SetDefault("storage.type", def.Storage.Type)
	v.SetDefault("storage.output_dir", def.Storage.OutputDir)
	v.SetDefault("storage.mongo_uri", def.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", def.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", def.Storage.MongoCollection)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)
}

// minPageDelay guards against hammering a site when a config file sets an
// unreasonably small delay.
const minPageDelay = 100 * time.Millisecond

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Client.RequestTimeout <= 0 {
		return fmt.Errorf("client.request_timeout must be positive, got %v", c.Client.RequestTimeout)
	}
	if c.Client.MaxRetries < 0 {
		return fmt.Errorf("client.max_retries must be >= 0, got %d", c.Client.MaxRetries)
	}
	if c.Client.MaxBodySize <= 0 {
		return fmt.Errorf("client.max_body_size must be positive, got %d", c.Client.MaxBodySize)
	}
	if c.Client.RequestsPerSec < 0 {
		return fmt.Errorf("client.requests_per_sec must be >= 0, got %f", c.Client.RequestsPerSec)
	}
	if c.Paginate.DefaultQuota <= 0 {
		return fmt.Errorf("paginate.default_quota must be positive, got %d", c.Paginate.DefaultQuota)
	}
	if c.Paginate.MaxPages <= 0 {
		return fmt.Errorf("paginate.max_pages must be positive, got %d", c.Paginate.MaxPages)
	}
	if c.Paginate.MaxEmptyPages <= 0 {
		return fmt.Errorf("paginate.max_empty_pages must be positive, got %d", c.Paginate.MaxEmptyPages)
	}
	if c.Paginate.PageDelay > 0 && c.Paginate.PageDelay < minPageDelay {
		return fmt.Errorf("paginate.page_delay must be at least %v, got %v", minPageDelay, c.Paginate.PageDelay)
	}
	if c.Enrich.ErrorBudgetCap <= 0 {
		return fmt.Errorf("enrich.error_budget_cap must be positive, got %d", c.Enrich.ErrorBudgetCap)
	}
	switch c.Storage.Type {
	case "csv", "jsonl", "mongodb":
	default:
		return fmt.Errorf("storage.type must be one of csv, jsonl, mongodb; got %q", c.Storage.Type)
	}
	if c.Storage.Type == "mongodb" && c.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required when storage.type is mongodb")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
