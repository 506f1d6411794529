package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for kyuscout.
type Config struct {
	Client   ClientConfig   `mapstructure:"client"   yaml:"client"`
	Paginate PaginateConfig `mapstructure:"paginate" yaml:"paginate"`
	Enrich   EnrichConfig   `mapstructure:"enrich"   yaml:"enrich"`
	Resolve  ResolveConfig  `mapstructure:"resolve"  yaml:"resolve"`
	Browser  BrowserConfig  `mapstructure:"browser"  yaml:"browser"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// ClientConfig controls the HTTP client wrapper.
type ClientConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"  yaml:"request_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"      yaml:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"      yaml:"retry_delay"`
	CourtesyDelay   time.Duration `mapstructure:"courtesy_delay"   yaml:"courtesy_delay"`
	RequestsPerSec  float64       `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	FollowRedirects bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"    yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"     yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"   yaml:"max_idle_conns"`
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	AcceptLanguage  string        `mapstructure:"accept_language"  yaml:"accept_language"`
}

// PaginateConfig controls the pagination driver.
type PaginateConfig struct {
	DefaultQuota  int           `mapstructure:"default_quota"  yaml:"default_quota"`
	MaxPages      int           `mapstructure:"max_pages"      yaml:"max_pages"`
	MaxEmptyPages int           `mapstructure:"max_empty_pages" yaml:"max_empty_pages"`
	PageDelay     time.Duration `mapstructure:"page_delay"     yaml:"page_delay"`
}

// EnrichConfig controls the detail enricher.
type EnrichConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// ErrorBudgetCap bounds how many detail fetches may fail before the
	// batch is cut short; the effective budget is min(batch/2, cap).
	ErrorBudgetCap int `mapstructure:"error_budget_cap" yaml:"error_budget_cap"`
}

// ResolveConfig controls the contact resolver chain.
type ResolveConfig struct {
	Enabled         bool   `mapstructure:"enabled"           yaml:"enabled"`
	PlacesAPIKey    string `mapstructure:"places_api_key"    yaml:"places_api_key"`
	PlacesEndpoint  string `mapstructure:"places_endpoint"   yaml:"places_endpoint"`
	SearchEndpoint  string `mapstructure:"search_endpoint"   yaml:"search_endpoint"`
	SearchVariants  int    `mapstructure:"search_variants"   yaml:"search_variants"`
	DisableWebQuery bool   `mapstructure:"disable_web_query" yaml:"disable_web_query"`
}

// BrowserConfig controls the headless browser fetcher used by sites whose
// listings are rendered client side.
type BrowserConfig struct {
	Enabled     bool          `mapstructure:"enabled"      yaml:"enabled"`
	Headless    bool          `mapstructure:"headless"     yaml:"headless"`
	Stealth     bool          `mapstructure:"stealth"      yaml:"stealth"`
	PageTimeout time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
	WindowSize  string        `mapstructure:"window_size"  yaml:"window_size"`
	UserDataDir string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
}

// StorageConfig controls where canonical records are written.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputDir       string `mapstructure:"output_dir"       yaml:"output_dir"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			RequestTimeout:  30 * time.Second,
			MaxRetries:      3,
			RetryDelay:      2 * time.Second,
			CourtesyDelay:   500 * time.Millisecond,
			RequestsPerSec:  1,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AcceptLanguage:  "ja,en-US;q=0.7,en;q=0.3",
		},
		Paginate: PaginateConfig{
			DefaultQuota:  10,
			MaxPages:      30,
			MaxEmptyPages: 3,
			PageDelay:     time.Second,
		},
		Enrich: EnrichConfig{
			Enabled:        true,
			ErrorBudgetCap: 50,
		},
		Resolve: ResolveConfig{
			Enabled:        true,
			PlacesEndpoint: "https://maps.googleapis.com/maps/api/place",
			SearchEndpoint: "https://html.duckduckgo.com/html/",
			SearchVariants: 2,
		},
		Browser: BrowserConfig{
			Enabled:     false,
			Headless:    true,
			Stealth:     true,
			PageTimeout: 45 * time.Second,
			WindowSize:  "1280,900",
		},
		Storage: StorageConfig{
			Type:            "csv",
			OutputDir:       "./output",
			MongoDatabase:   "kyuscout",
			MongoCollection: "records",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
