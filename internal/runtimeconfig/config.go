package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrContentDirRequired indicates the content root was left empty.
var ErrContentDirRequired = errors.New("sitegen config: content directory is required")

// ErrGeneratorOutputDirRequired indicates the generator was enabled without an output directory.
var ErrGeneratorOutputDirRequired = errors.New("sitegen config: generator output directory is required when generator is enabled")

// ErrLayoutsDirRequired indicates the generator was enabled without a layout directory.
var ErrLayoutsDirRequired = errors.New("sitegen config: layouts directory is required when generator is enabled")

// ErrDefaultLayoutRequired ensures layout fallback always has a target.
var ErrDefaultLayoutRequired = errors.New("sitegen config: default layout name is required")

// ErrBaseURLInvalid indicates the configured base URL cannot be parsed.
var ErrBaseURLInvalid = errors.New("sitegen config: base URL is invalid")

// ErrWorkersInvalid rejects negative worker counts.
var ErrWorkersInvalid = errors.New("sitegen config: generator workers must be zero or positive")

// ErrCatalogRequiresGenerator keeps the build catalog behind the generator flag.
var ErrCatalogRequiresGenerator = errors.New("sitegen config: catalog feature requires generator to be enabled")

// ErrCatalogDriverUnknown rejects catalog drivers outside the supported set.
var ErrCatalogDriverUnknown = errors.New("sitegen config: catalog driver is invalid")

// ErrCatalogDSNRequired indicates a sqlite catalog without a data source name.
var ErrCatalogDSNRequired = errors.New("sitegen config: catalog DSN is required for the sqlite driver")

// ErrWatchRequiresGenerator keeps watch mode behind the generator flag.
var ErrWatchRequiresGenerator = errors.New("sitegen config: watch feature requires generator to be enabled")

// ErrWatchDebounceInvalid rejects negative debounce windows.
var ErrWatchDebounceInvalid = errors.New("sitegen config: watch debounce must be zero or positive")

// ErrServerPortInvalid rejects ports outside the TCP range.
var ErrServerPortInvalid = errors.New("sitegen config: server port is invalid")

var ErrLoggingProviderRequired = errors.New("sitegen config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("sitegen config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("sitegen config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("sitegen config: logging format is invalid")

// Duration wraps time.Duration so TOML files can carry "500ms" style values.
type Duration time.Duration

// UnmarshalText satisfies encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std converts the wrapper back into a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config aggregates feature flags and pipeline bindings for the sitegen module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled   bool            `toml:"enabled"`
	Site      SiteConfig      `toml:"site"`
	Content   ContentConfig   `toml:"content"`
	Layouts   LayoutsConfig   `toml:"layouts"`
	Markdown  MarkdownConfig  `toml:"markdown"`
	Generator GeneratorConfig `toml:"generator"`
	Routes    RoutesConfig    `toml:"routes"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Watch     WatchConfig     `toml:"watch"`
	Server    ServerConfig    `toml:"server"`
	Commands  CommandsConfig  `toml:"commands"`
	Features  Features        `toml:"features"`
	Logging   LoggingConfig   `toml:"logging"`
}

// SiteConfig carries the site-wide values exposed to layouts and feeds.
type SiteConfig struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Author      string `toml:"author"`
	BaseURL     string `toml:"base_url"`
	Language    string `toml:"language"`
}

// ContentConfig captures filesystem discovery behaviour for source documents.
type ContentConfig struct {
	Dir       string `toml:"dir"`
	Pattern   string `toml:"pattern"`
	Recursive bool   `toml:"recursive"`
}

// LayoutsConfig captures the layout-set lookup behaviour.
type LayoutsConfig struct {
	Dir     string `toml:"dir"`
	Default string `toml:"default"`
	Theme   string `toml:"theme"`
	Variant string `toml:"variant"`
}

// MarkdownConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownConfig struct {
	Extensions []string `toml:"extensions"`
	Sanitize   bool     `toml:"sanitize"`
	HardWraps  bool     `toml:"hard_wraps"`
	SafeMode   bool     `toml:"safe_mode"`
}

// GeneratorConfig captures behaviour for the site build.
type GeneratorConfig struct {
	Enabled         bool     `toml:"enabled"`
	OutputDir       string   `toml:"output_dir"`
	StaticDir       string   `toml:"static_dir"`
	CleanBuild      bool     `toml:"clean_build"`
	Incremental     bool     `toml:"incremental"`
	CopyAssets      bool     `toml:"copy_assets"`
	GenerateSitemap bool     `toml:"generate_sitemap"`
	GenerateRobots  bool     `toml:"generate_robots"`
	GenerateFeeds   bool     `toml:"generate_feeds"`
	Workers         int      `toml:"workers"`
	RenderTimeout   Duration `toml:"render_timeout"`
}

// RoutesConfig captures permalink templates. RouteConfig overrides the derived
// go-urlkit configuration entirely when supplied by the host.
type RoutesConfig struct {
	RouteConfig *urlkit.Config `toml:"-"`
	Pages       string         `toml:"pages"`
	Sections    string         `toml:"sections"`
	Tags        string         `toml:"tags"`
}

// CatalogConfig controls the optional build history store.
type CatalogConfig struct {
	Driver   string   `toml:"driver"`
	DSN      string   `toml:"dsn"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// WatchConfig controls filesystem watching for rebuild-on-change.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
	Ignore   []string `toml:"ignore"`
}

// ServerConfig controls the local preview server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Features toggles module functionality.
type Features struct {
	Generator bool `toml:"generator"`
	Catalog   bool `toml:"catalog"`
	Watch     bool `toml:"watch"`
	Server    bool `toml:"server"`
	Logger    bool `toml:"logger"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// DefaultConfig returns opinionated defaults for a local site build.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Site: SiteConfig{
			Title:    "Site",
			Language: "en",
		},
		Content: ContentConfig{
			Dir:       "content",
			Pattern:   "*.md",
			Recursive: true,
		},
		Layouts: LayoutsConfig{
			Dir:     "layouts",
			Default: "default",
		},
		Markdown: MarkdownConfig{},
		Generator: GeneratorConfig{
			OutputDir:       "dist",
			StaticDir:       "static",
			CleanBuild:      true,
			Incremental:     false,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  false,
			GenerateFeeds:   false,
			Workers:         0,
		},
		Routes: RoutesConfig{
			Pages:    "/:section/:slug",
			Sections: "/:section",
			Tags:     "/tags/:slug",
		},
		Catalog: CatalogConfig{
			Driver:   "memory",
			CacheTTL: Duration(time.Minute),
		},
		Watch: WatchConfig{
			Debounce: Duration(500 * time.Millisecond),
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 1313,
		},
		Commands: CommandsConfig{},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if cfg.Features.Generator {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if strings.TrimSpace(cfg.Layouts.Dir) == "" {
			return ErrLayoutsDirRequired
		}
	}
	if strings.TrimSpace(cfg.Layouts.Default) == "" {
		return ErrDefaultLayoutRequired
	}
	if base := strings.TrimSpace(cfg.Site.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %s", ErrBaseURLInvalid, base)
		}
	}
	if cfg.Generator.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Features.Catalog {
		if !cfg.Features.Generator {
			return ErrCatalogRequiresGenerator
		}
		driver := strings.ToLower(strings.TrimSpace(cfg.Catalog.Driver))
		switch driver {
		case "", "memory":
		case "sqlite":
			if strings.TrimSpace(cfg.Catalog.DSN) == "" {
				return ErrCatalogDSNRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCatalogDriverUnknown, driver)
		}
	}
	if cfg.Features.Watch {
		if !cfg.Features.Generator {
			return ErrWatchRequiresGenerator
		}
		if cfg.Watch.Debounce < 0 {
			return ErrWatchDebounceInvalid
		}
	}
	if cfg.Features.Server {
		if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
			return fmt.Errorf("%w: %d", ErrServerPortInvalid, cfg.Server.Port)
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
