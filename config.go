package sitegen

import "github.com/goliatone/go-sitegen/internal/runtimeconfig"

var (
	ErrContentDirRequired         = runtimeconfig.ErrContentDirRequired
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrLayoutsDirRequired         = runtimeconfig.ErrLayoutsDirRequired
	ErrDefaultLayoutRequired      = runtimeconfig.ErrDefaultLayoutRequired
	ErrBaseURLInvalid             = runtimeconfig.ErrBaseURLInvalid
	ErrWorkersInvalid             = runtimeconfig.ErrWorkersInvalid
	ErrCatalogRequiresGenerator   = runtimeconfig.ErrCatalogRequiresGenerator
	ErrCatalogDriverUnknown       = runtimeconfig.ErrCatalogDriverUnknown
	ErrCatalogDSNRequired         = runtimeconfig.ErrCatalogDSNRequired
	ErrWatchRequiresGenerator     = runtimeconfig.ErrWatchRequiresGenerator
	ErrWatchDebounceInvalid       = runtimeconfig.ErrWatchDebounceInvalid
	ErrServerPortInvalid          = runtimeconfig.ErrServerPortInvalid
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	SiteConfig      = runtimeconfig.SiteConfig
	ContentConfig   = runtimeconfig.ContentConfig
	LayoutsConfig   = runtimeconfig.LayoutsConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	RoutesConfig    = runtimeconfig.RoutesConfig
	CatalogConfig   = runtimeconfig.CatalogConfig
	WatchConfig     = runtimeconfig.WatchConfig
	ServerConfig    = runtimeconfig.ServerConfig
	CommandsConfig  = runtimeconfig.CommandsConfig
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
	Duration        = runtimeconfig.Duration
)

// DefaultConfig returns the opinionated defaults for a local site build.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig decodes a sitegen.toml file over the defaults and validates the
// result.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
