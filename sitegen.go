package sitegen

import (
	"github.com/goliatone/go-sitegen/internal/catalog"
	sitecmd "github.com/goliatone/go-sitegen/internal/commands/site"
	"github.com/goliatone/go-sitegen/internal/di"
	"github.com/goliatone/go-sitegen/internal/generator"
	"github.com/goliatone/go-sitegen/internal/layouts"
	"github.com/goliatone/go-sitegen/internal/server"
	"github.com/goliatone/go-sitegen/internal/site"
	"github.com/goliatone/go-sitegen/internal/watch"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// MarkdownService exports the markdown document service contract.
type MarkdownService = interfaces.MarkdownService

// LayoutService exports the layout discovery and manifest contract.
type LayoutService = layouts.Service

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// CatalogService exports the build history contract.
type CatalogService = catalog.Service

// WatchService exports the filesystem watch contract.
type WatchService = watch.Service

// ServerService exports the preview server contract.
type ServerService = server.Service

// SiteCommands exports the command handler set wired by the container.
type SiteCommands = sitecmd.HandlerSet

// BuildOptions exports the generator build options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator build summary.
type BuildResult = generator.BuildResult

// RenderedPage exports the single-page render payload.
type RenderedPage = generator.RenderedPage

// BuildRecord exports the catalog build record.
type BuildRecord = catalog.BuildRecord

// URLBuilder exports the route and permalink builder.
type URLBuilder = site.URLBuilder

// Module represents the top level site generator runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a sitegen module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Markdown returns the configured markdown document service.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

// Layouts returns the configured layout service.
func (m *Module) Layouts() LayoutService {
	return m.container.LayoutService()
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// Catalog returns the configured build catalog service.
func (m *Module) Catalog() CatalogService {
	return m.container.CatalogService()
}

// Watcher returns the configured filesystem watch service.
func (m *Module) Watcher() WatchService {
	return m.container.WatchService()
}

// Server returns the preview server, or nil when the feature is off.
func (m *Module) Server() ServerService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ServerService()
}

// Commands returns the wired command handlers, or nil when commands are off.
func (m *Module) Commands() *SiteCommands {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.SiteCommands()
}

// URLs returns the route and permalink builder.
func (m *Module) URLs() *URLBuilder {
	return m.container.URLBuilder()
}

// Close releases resources held by the container, such as catalog database
// handles it opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
