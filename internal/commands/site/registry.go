package sitecmd

import (
	"errors"

	"github.com/goliatone/go-sitegen/internal/catalog"
	"github.com/goliatone/go-sitegen/internal/commands"
	"github.com/goliatone/go-sitegen/internal/generator"
	"github.com/goliatone/go-sitegen/internal/watch"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers into a dispatcher.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the site command handlers produced by RegisterSiteCommands.
type HandlerSet struct {
	Build   *BuildSiteHandler
	Clean   *CleanSiteHandler
	Preview *PreviewDocumentHandler
	Watch   *WatchSiteHandler
}

// Dependencies lists the services the site handlers delegate to. Generator is
// required; the rest are optional and gate the handlers that need them.
type Dependencies struct {
	Generator generator.Service
	Catalog   catalog.Service
	Watcher   watch.Service
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	buildOpts   []commands.HandlerOption[BuildSiteCommand]
	cleanOpts   []commands.HandlerOption[CleanSiteCommand]
	previewOpts []commands.HandlerOption[PreviewDocumentCommand]
	watchOpts   []commands.HandlerOption[WatchSiteCommand]
}

// WithBuildHandlerOptions forwards options to the BuildSiteHandler constructor.
func WithBuildHandlerOptions(opts ...commands.HandlerOption[BuildSiteCommand]) Option {
	return func(cfg *options) {
		cfg.buildOpts = append(cfg.buildOpts, opts...)
	}
}

// WithCleanHandlerOptions forwards options to the CleanSiteHandler constructor.
func WithCleanHandlerOptions(opts ...commands.HandlerOption[CleanSiteCommand]) Option {
	return func(cfg *options) {
		cfg.cleanOpts = append(cfg.cleanOpts, opts...)
	}
}

// WithPreviewHandlerOptions forwards options to the PreviewDocumentHandler constructor.
func WithPreviewHandlerOptions(opts ...commands.HandlerOption[PreviewDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.previewOpts = append(cfg.previewOpts, opts...)
	}
}

// WithWatchHandlerOptions forwards options to the WatchSiteHandler constructor.
func WithWatchHandlerOptions(opts ...commands.HandlerOption[WatchSiteCommand]) Option {
	return func(cfg *options) {
		cfg.watchOpts = append(cfg.watchOpts, opts...)
	}
}

// RegisterSiteCommands builds the site command handlers and registers them
// with the provided registry. The returned HandlerSet lets callers invoke the
// handlers directly when no dispatcher is involved.
func RegisterSiteCommands(
	reg CommandRegistry,
	deps Dependencies,
	provider interfaces.LoggerProvider,
	gates FeatureGates,
	opts ...Option,
) (*HandlerSet, error) {
	if deps.Generator == nil {
		return nil, errors.New("site command registration: generator service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "site")

	set := &HandlerSet{
		Build:   NewBuildSiteHandler(deps.Generator, deps.Catalog, logger, gates, cfg.buildOpts...),
		Clean:   NewCleanSiteHandler(deps.Generator, logger, gates, cfg.cleanOpts...),
		Preview: NewPreviewDocumentHandler(deps.Generator, logger, gates, cfg.previewOpts...),
		Watch:   NewWatchSiteHandler(deps.Watcher, deps.Generator, logger, gates, cfg.watchOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Build, set.Clean, set.Preview, set.Watch} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}

	return set, nil
}
