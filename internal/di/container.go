package di

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-sitegen/internal/adapters/storage"
	"github.com/goliatone/go-sitegen/internal/catalog"
	sitecmd "github.com/goliatone/go-sitegen/internal/commands/site"
	"github.com/goliatone/go-sitegen/internal/generator"
	"github.com/goliatone/go-sitegen/internal/layouts"
	"github.com/goliatone/go-sitegen/internal/logging"
	"github.com/goliatone/go-sitegen/internal/logging/console"
	"github.com/goliatone/go-sitegen/internal/logging/gologger"
	"github.com/goliatone/go-sitegen/internal/markdown"
	"github.com/goliatone/go-sitegen/internal/runtimeconfig"
	"github.com/goliatone/go-sitegen/internal/server"
	"github.com/goliatone/go-sitegen/internal/site"
	"github.com/goliatone/go-sitegen/internal/watch"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// Container wires the module services from one configuration. Construction is
// eager: every enabled feature is built inside NewContainer so a misconfigured
// site fails at startup, not mid-build.
type Container struct {
	cfg runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	storage        interfaces.StorageProvider
	template       interfaces.TemplateRenderer

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	now           func() time.Time

	markdownService interfaces.MarkdownService
	layoutService   layouts.Service
	urls            *site.URLBuilder
	generatorSvc    generator.Service
	catalogSvc      catalog.Service
	watchSvc        watch.Service
	serverSvc       server.Service
	siteCommands    *sitecmd.HandlerSet
}

// Option overrides a container default.
type Option func(*Container)

// WithLoggerProvider injects the logger provider used for module loggers.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithStorage overrides the filesystem storage provider the generator writes
// through.
func WithStorage(provider interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.storage = provider
	}
}

// WithTemplateRenderer overrides the html/template renderer built from the
// layout directory.
func WithTemplateRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.template = renderer
	}
}

// WithBunDB supplies the database used by the sqlite catalog driver. Without
// it the container opens one from the configured DSN.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache decorates the sqlite catalog repository with a caching layer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithClock overrides the time source used by catalog records (tests mostly).
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCatalogService replaces the built-in catalog wiring entirely.
func WithCatalogService(svc catalog.Service) Option {
	return func(c *Container) {
		c.catalogSvc = svc
	}
}

// NewContainer validates the configuration and builds every enabled service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	if err := c.configureURLs(); err != nil {
		return nil, err
	}
	if err := c.configureGenerator(); err != nil {
		return nil, err
	}
	if err := c.configureCatalog(); err != nil {
		return nil, err
	}
	c.configureWatch()
	c.configureServer()
	if err := c.configureCommands(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.cfg.Features.Logger {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.cfg.Logging.Provider)) {
	case "console":
		c.loggerProvider = console.NewProvider(console.Options{})
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.cfg.Logging.Level,
			Format:    c.cfg.Logging.Format,
			AddSource: c.cfg.Logging.AddSource,
			Focus:     c.cfg.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureMarkdown() error {
	svc, err := markdown.NewService(markdown.Config{
		BasePath:  c.cfg.Content.Dir,
		Pattern:   c.cfg.Content.Pattern,
		Recursive: c.cfg.Content.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: c.cfg.Markdown.Extensions,
			Sanitize:   c.cfg.Markdown.Sanitize,
			HardWraps:  c.cfg.Markdown.HardWraps,
			SafeMode:   c.cfg.Markdown.SafeMode,
		},
	}, nil)
	if err != nil {
		return err
	}
	c.markdownService = svc
	return nil
}

func (c *Container) configureURLs() error {
	urls, err := site.NewURLBuilder(site.URLConfig{
		BaseURL:     c.cfg.Site.BaseURL,
		Pages:       c.cfg.Routes.Pages,
		Sections:    c.cfg.Routes.Sections,
		Tags:        c.cfg.Routes.Tags,
		RouteConfig: c.cfg.Routes.RouteConfig,
	})
	if err != nil {
		return err
	}
	c.urls = urls
	return nil
}

func (c *Container) configureGenerator() error {
	if !c.cfg.Features.Generator {
		c.generatorSvc = generator.NewDisabledService()
		return nil
	}

	layoutsDir := strings.TrimSpace(c.cfg.Layouts.Dir)

	seeds, err := layouts.DiscoverSeeds(layoutsDir)
	if err != nil {
		return err
	}
	selection, err := layouts.LoadManifest(layoutsDir, c.cfg.Layouts.Variant)
	if err != nil {
		return err
	}

	layoutSvc, err := layouts.NewService(
		layouts.NewMemoryLayoutRepository(),
		c.cfg.Layouts.Default,
		layouts.WithSelection(selection),
		layouts.WithNow(c.now),
	)
	if err != nil {
		return err
	}
	if err := layouts.Bootstrap(context.Background(), layoutSvc, seeds); err != nil {
		return err
	}
	c.layoutService = layoutSvc

	if c.template == nil {
		renderer, err := layouts.NewTemplateRenderer(layoutsDir)
		if err != nil {
			return err
		}
		c.template = renderer
	}

	// Artifact paths already carry the output dir prefix, so the default
	// provider is rooted at the working directory.
	outputDir := strings.TrimSpace(c.cfg.Generator.OutputDir)
	if c.storage == nil {
		c.storage = storage.NewFilesystemStorage(".", "")
	}

	assets := []generator.AssetResolver{
		generator.NewLayoutAssets(layoutSvc, layoutsDir),
	}
	if staticDir := strings.TrimSpace(c.cfg.Generator.StaticDir); staticDir != "" {
		assets = append(assets, generator.NewStaticAssets(staticDir))
	}

	c.generatorSvc = generator.NewService(generator.Config{
		OutputDir:  outputDir,
		LayoutsDir: layoutsDir,
		Site: site.Meta{
			Title:       c.cfg.Site.Title,
			Description: c.cfg.Site.Description,
			Author:      c.cfg.Site.Author,
			Language:    c.cfg.Site.Language,
			BaseURL:     c.cfg.Site.BaseURL,
		},
		CleanBuild:      c.cfg.Generator.CleanBuild,
		Incremental:     c.cfg.Generator.Incremental,
		CopyAssets:      c.cfg.Generator.CopyAssets,
		GenerateSitemap: c.cfg.Generator.GenerateSitemap,
		GenerateRobots:  c.cfg.Generator.GenerateRobots,
		GenerateFeeds:   c.cfg.Generator.GenerateFeeds,
		Workers:         c.cfg.Generator.Workers,
		RenderTimeout:   c.cfg.Generator.RenderTimeout.Std(),
	}, generator.Dependencies{
		Markdown: c.markdownService,
		Layouts:  layoutSvc,
		Renderer: c.template,
		Storage:  c.storage,
		URLs:     c.urls,
		Assets:   assets,
		Logger:   logging.GeneratorLogger(c.loggerProvider),
	})
	return nil
}

func (c *Container) configureCatalog() error {
	if c.catalogSvc != nil {
		return nil
	}
	if !c.cfg.Features.Catalog {
		c.catalogSvc = catalog.NewDisabledService()
		return nil
	}

	var repo catalog.Repository
	switch strings.ToLower(strings.TrimSpace(c.cfg.Catalog.Driver)) {
	case "", "memory":
		repo = catalog.NewMemoryRepository()
	case "sqlite":
		db, err := c.catalogDB()
		if err != nil {
			return err
		}
		if err := catalog.EnsureSchema(context.Background(), db); err != nil {
			return err
		}
		repo = catalog.NewBunRepositoryWithCache(db, c.cacheService, c.keySerializer)
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrCatalogDriverUnknown, c.cfg.Catalog.Driver)
	}

	c.catalogSvc = catalog.NewService(catalog.Config{
		OutputDir: c.cfg.Generator.OutputDir,
	}, repo,
		catalog.WithLogger(logging.CatalogLogger(c.loggerProvider)),
		catalog.WithNow(c.now),
	)
	return nil
}

func (c *Container) catalogDB() (*bun.DB, error) {
	if c.bunDB != nil {
		return c.bunDB, nil
	}
	sqldb, err := sql.Open("sqlite3", c.cfg.Catalog.DSN)
	if err != nil {
		return nil, fmt.Errorf("di: open catalog database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	c.bunDB = bun.NewDB(sqldb, sqlitedialect.New())
	c.ownsDB = true
	return c.bunDB, nil
}

func (c *Container) configureWatch() {
	if !c.cfg.Features.Watch {
		c.watchSvc = watch.NewDisabledService()
		return
	}
	roots := []string{c.cfg.Content.Dir, c.cfg.Layouts.Dir}
	if staticDir := strings.TrimSpace(c.cfg.Generator.StaticDir); staticDir != "" {
		roots = append(roots, staticDir)
	}
	ignore := append([]string{c.cfg.Generator.OutputDir}, c.cfg.Watch.Ignore...)
	c.watchSvc = watch.NewService(watch.Config{
		Roots:    roots,
		Ignore:   ignore,
		Debounce: c.cfg.Watch.Debounce.Std(),
	}, watch.Dependencies{
		Logger: logging.WatchLogger(c.loggerProvider),
	})
}

func (c *Container) configureServer() {
	if !c.cfg.Features.Server {
		return
	}
	c.serverSvc = server.NewService(server.Config{
		OutputDir: c.cfg.Generator.OutputDir,
		Host:      c.cfg.Server.Host,
		Port:      c.cfg.Server.Port,
	}, server.Dependencies{
		Logger: logging.ServerLogger(c.loggerProvider),
	})
}

func (c *Container) configureCommands() error {
	if !c.cfg.Commands.Enabled {
		return nil
	}
	gates := sitecmd.FeatureGates{
		GeneratorEnabled: func() bool { return c.cfg.Features.Generator },
		WatchEnabled:     func() bool { return c.cfg.Features.Watch },
		CatalogEnabled:   func() bool { return c.cfg.Features.Catalog },
	}
	set, err := sitecmd.RegisterSiteCommands(nil, sitecmd.Dependencies{
		Generator: c.generatorSvc,
		Catalog:   c.catalogSvc,
		Watcher:   c.watchSvc,
	}, c.loggerProvider, gates)
	if err != nil {
		return err
	}
	c.siteCommands = set
	return nil
}

// Close releases resources the container opened itself, currently the sqlite
// catalog database. Injected databases stay open.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		c.ownsDB = false
		return err
	}
	return nil
}

// Config returns the validated configuration the container was built from.
func (c *Container) Config() runtimeconfig.Config {
	return c.cfg
}

// LoggerProvider returns the active logger provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// StorageProvider returns the artifact storage backend.
func (c *Container) StorageProvider() interfaces.StorageProvider {
	return c.storage
}

// TemplateRenderer returns the layout template engine.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.template
}

// MarkdownService returns the document parsing pipeline.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	return c.markdownService
}

// LayoutService returns the layout registry, nil when the generator is off.
func (c *Container) LayoutService() layouts.Service {
	return c.layoutService
}

// URLBuilder returns the permalink builder.
func (c *Container) URLBuilder() *site.URLBuilder {
	return c.urls
}

// GeneratorService returns the build orchestrator.
func (c *Container) GeneratorService() generator.Service {
	return c.generatorSvc
}

// CatalogService returns the build history store.
func (c *Container) CatalogService() catalog.Service {
	return c.catalogSvc
}

// WatchService returns the rebuild-on-change watcher.
func (c *Container) WatchService() watch.Service {
	return c.watchSvc
}

// ServerService returns the preview server, nil when the feature is off.
func (c *Container) ServerService() server.Service {
	return c.serverSvc
}

// SiteCommands returns the command handler set, nil unless commands are enabled.
func (c *Container) SiteCommands() *sitecmd.HandlerSet {
	return c.siteCommands
}
