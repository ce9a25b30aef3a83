package runtimeconfig

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrRequestsPerMinuteInvalid rejects non-positive request caps.
var ErrRequestsPerMinuteInvalid = errors.New("translate config: requests per minute must be positive")

// ErrCharactersPerMinuteInvalid rejects non-positive per-minute character caps.
var ErrCharactersPerMinuteInvalid = errors.New("translate config: characters per minute must be positive")

// ErrCharactersPerHourInvalid rejects negative hourly caps; zero disables the check.
var ErrCharactersPerHourInvalid = errors.New("translate config: characters per hour must be zero or positive")

// ErrMaxCharsPerRequestInvalid rejects non-positive chunk budgets.
var ErrMaxCharsPerRequestInvalid = errors.New("translate config: max characters per request must be positive")

// ErrMaxJobsInvalid rejects non-positive ledger retention counts.
var ErrMaxJobsInvalid = errors.New("translate config: max jobs must be positive")

// ErrProviderKeyRequired rejects an empty active provider key.
var ErrProviderKeyRequired = errors.New("translate config: active provider key is required")

var ErrCacheTTLInvalid = errors.New("translate config: cache ttl must be positive")
var ErrPreviewTTLInvalid = errors.New("translate config: preview ttl must be positive")
var ErrLoggingProviderUnknown = errors.New("translate config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("translate config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("translate config: logging format is invalid")

// Config is the immutable runtime configuration. Construct it once per run and
// pass it into each component's constructor; core logic never reads ambient
// global state.
type Config struct {
	// Provider selects the active translation vendor key, e.g. "deepl".
	Provider  string          `yaml:"provider"`
	Limits    LimitsConfig    `yaml:"limits"`
	Cache     CacheConfig     `yaml:"cache"`
	Preview   PreviewConfig   `yaml:"preview"`
	Retention RetentionConfig `yaml:"retention"`
	Batch     BatchConfig     `yaml:"batch"`
	DeepL     DeepLConfig     `yaml:"deepl"`
	Google    GoogleConfig    `yaml:"google"`
	Rules     RulesConfig     `yaml:"rules"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LimitsConfig captures rate limiter caps.
type LimitsConfig struct {
	RequestsPerMinute   int `yaml:"requests_per_minute"`
	CharactersPerMinute int `yaml:"characters_per_minute"`
	// CharactersPerHour is optional; zero disables the hourly check.
	CharactersPerHour int `yaml:"characters_per_hour"`
}

// CacheConfig captures translation cache behaviour.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// UnmarshalYAML accepts duration strings such as "24h" for the ttl key.
func (c *CacheConfig) UnmarshalYAML(value *yaml.Node) error {
	ttl, err := decodeTTL(value, c.TTL)
	if err != nil {
		return err
	}
	c.TTL = ttl
	return nil
}

// PreviewConfig captures the preview store retention window.
type PreviewConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// UnmarshalYAML accepts duration strings such as "1h" for the ttl key.
func (c *PreviewConfig) UnmarshalYAML(value *yaml.Node) error {
	ttl, err := decodeTTL(value, c.TTL)
	if err != nil {
		return err
	}
	c.TTL = ttl
	return nil
}

func decodeTTL(value *yaml.Node, fallback time.Duration) (time.Duration, error) {
	var raw struct {
		TTL string `yaml:"ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return 0, err
	}
	if raw.TTL == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw.TTL)
}

// RetentionConfig bounds the job ledger.
type RetentionConfig struct {
	MaxJobs int `yaml:"max_jobs"`
}

// BatchConfig captures dispatch chunking behaviour.
type BatchConfig struct {
	// MaxCharsPerRequest bounds the cumulative character length of one
	// provider call. A single longer item still forms its own chunk.
	MaxCharsPerRequest int `yaml:"max_chars_per_request"`
}

// DeepLConfig carries DeepL credentials and endpoint overrides.
type DeepLConfig struct {
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url"`
}

// GoogleConfig carries Google Cloud Translation credentials.
type GoogleConfig struct {
	ProjectID string `yaml:"project_id"`
	Location  string `yaml:"location"`
	APIKey    string `yaml:"api_key"`
	// ServiceAccountJSON holds the raw service-account key used for token
	// exchange. When set it takes precedence over APIKey.
	ServiceAccountJSON string `yaml:"service_account_json"`
}

// RulesConfig is the scope filter configuration loaded once per run.
type RulesConfig struct {
	IncludeTypes       []string `yaml:"include_types"`
	ExcludeContentIDs  []string `yaml:"exclude_content_ids"`
	ExcludeTemplateIDs []string `yaml:"exclude_template_ids"`
	ExcludeFieldKeys   []string `yaml:"exclude_field_keys"`
	ExcludeSelectors   []string `yaml:"exclude_selectors"`
}

// StorageConfig selects the job ledger backing store.
type StorageConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver"`
	// DSN applies to the sqlite driver.
	DSN string `yaml:"dsn"`
}

// LoggingConfig mirrors the go-logger adapter options.
type LoggingConfig struct {
	Provider  string `yaml:"provider"`
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// DefaultConfig returns the baseline configuration: DeepL active, 50 req/min,
// 120k chars/min, no hourly cap, 24h cache, 1h preview retention, 20 retained
// jobs, 5000-character chunks.
func DefaultConfig() Config {
	return Config{
		Provider: "deepl",
		Limits: LimitsConfig{
			RequestsPerMinute:   50,
			CharactersPerMinute: 120000,
			CharactersPerHour:   0,
		},
		Cache:     CacheConfig{TTL: 24 * time.Hour},
		Preview:   PreviewConfig{TTL: time.Hour},
		Retention: RetentionConfig{MaxJobs: 20},
		Batch:     BatchConfig{MaxCharsPerRequest: 5000},
		Rules: RulesConfig{
			IncludeTypes: []string{"page"},
		},
		Storage: StorageConfig{Driver: "memory"},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate checks cross-field consistency. It returns the first violation so
// callers can surface a single actionable error.
func (cfg Config) Validate() error {
	if cfg.Provider == "" {
		return ErrProviderKeyRequired
	}
	if cfg.Limits.RequestsPerMinute <= 0 {
		return ErrRequestsPerMinuteInvalid
	}
	if cfg.Limits.CharactersPerMinute <= 0 {
		return ErrCharactersPerMinuteInvalid
	}
	if cfg.Limits.CharactersPerHour < 0 {
		return ErrCharactersPerHourInvalid
	}
	if cfg.Batch.MaxCharsPerRequest <= 0 {
		return ErrMaxCharsPerRequestInvalid
	}
	if cfg.Retention.MaxJobs <= 0 {
		return ErrMaxJobsInvalid
	}
	if cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Preview.TTL <= 0 {
		return ErrPreviewTTLInvalid
	}
	if err := cfg.Logging.validate(); err != nil {
		return err
	}
	return nil
}

func (lc LoggingConfig) validate() error {
	switch lc.Provider {
	case "", "gologger", "noop":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, lc.Provider)
	}
	switch lc.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, lc.Level)
	}
	switch lc.Format {
	case "", "json", "console", "pretty":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, lc.Format)
	}
	return nil
}
