package translate

import "github.com/goliatone/go-translate/internal/runtimeconfig"

var (
	ErrRequestsPerMinuteInvalid   = runtimeconfig.ErrRequestsPerMinuteInvalid
	ErrCharactersPerMinuteInvalid = runtimeconfig.ErrCharactersPerMinuteInvalid
	ErrCharactersPerHourInvalid   = runtimeconfig.ErrCharactersPerHourInvalid
	ErrMaxCharsPerRequestInvalid  = runtimeconfig.ErrMaxCharsPerRequestInvalid
	ErrMaxJobsInvalid             = runtimeconfig.ErrMaxJobsInvalid
	ErrProviderKeyRequired        = runtimeconfig.ErrProviderKeyRequired
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrPreviewTTLInvalid          = runtimeconfig.ErrPreviewTTLInvalid
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	LimitsConfig    = runtimeconfig.LimitsConfig
	CacheConfig     = runtimeconfig.CacheConfig
	PreviewConfig   = runtimeconfig.PreviewConfig
	RetentionConfig = runtimeconfig.RetentionConfig
	BatchConfig     = runtimeconfig.BatchConfig
	DeepLConfig     = runtimeconfig.DeepLConfig
	GoogleConfig    = runtimeconfig.GoogleConfig
	RulesConfig     = runtimeconfig.RulesConfig
	StorageConfig   = runtimeconfig.StorageConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file overlaid on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
