package sitecmd

import (
	"context"
	"strings"

	"github.com/goliatone/go-sitegen/internal/catalog"
	"github.com/goliatone/go-sitegen/internal/commands"
	"github.com/goliatone/go-sitegen/internal/generator"
	"github.com/goliatone/go-sitegen/internal/logging"
	"github.com/goliatone/go-sitegen/internal/watch"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// BuildSiteHandler orchestrates generator builds using the shared command
// handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator
// service. When a catalog service is supplied and the catalog gate is open,
// every completed build is recorded.
func NewBuildSiteHandler(
	service generator.Service,
	history catalog.Service,
	logger interfaces.Logger,
	gates FeatureGates,
	opts ...commands.HandlerOption[BuildSiteCommand],
) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		options := generator.BuildOptions{
			Paths:         normalizePaths(msg.Paths),
			IncludeDrafts: msg.IncludeDrafts,
			DryRun:        msg.DryRun,
		}

		result, err := service.Build(ctx, options)
		if result != nil && history != nil && gates.catalogEnabled() && !msg.DryRun {
			if _, recordErr := history.Record(ctx, result); recordErr != nil {
				baseLogger.Warn("site.build.record_failed", "error", recordErr)
			}
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Paths) > 0 {
				fields["paths"] = len(msg.Paths)
			}
			if msg.IncludeDrafts {
				fields["include_drafts"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler removes generated artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(
	service generator.Service,
	logger interfaces.Logger,
	gates FeatureGates,
	opts ...commands.HandlerOption[CleanSiteCommand],
) *CleanSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PreviewDocumentHandler renders a single document for inspection.
type PreviewDocumentHandler struct {
	inner *commands.Handler[PreviewDocumentCommand]
}

// NewPreviewDocumentHandler constructs a handler that renders one page without
// persisting it. Drafts are allowed here.
func NewPreviewDocumentHandler(
	service generator.Service,
	logger interfaces.Logger,
	gates FeatureGates,
	opts ...commands.HandlerOption[PreviewDocumentCommand],
) *PreviewDocumentHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PreviewDocumentCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		page, err := service.BuildPage(ctx, strings.TrimSpace(msg.Path))
		if err != nil {
			return err
		}
		if msg.Callback != nil {
			msg.Callback(PreviewEnvelope{
				Page: page,
				Metadata: map[string]any{
					"operation": "preview",
					"path":      strings.TrimSpace(msg.Path),
				},
			})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PreviewDocumentCommand]{
		commands.WithLogger[PreviewDocumentCommand](baseLogger),
		commands.WithOperation[PreviewDocumentCommand]("site.preview"),
		commands.WithMessageFields(func(msg PreviewDocumentCommand) map[string]any {
			return map[string]any{"path": strings.TrimSpace(msg.Path)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PreviewDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PreviewDocumentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PreviewDocumentCommand].
func (h *PreviewDocumentHandler) Execute(ctx context.Context, msg PreviewDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// WatchSiteHandler blocks on the filesystem watcher and triggers full rebuilds
// when sources change. The incremental manifest keeps those rebuilds cheap.
type WatchSiteHandler struct {
	inner *commands.Handler[WatchSiteCommand]
}

// NewWatchSiteHandler constructs a handler that runs the watch loop. The
// command executes without a timeout since watching lasts until the context
// is cancelled.
func NewWatchSiteHandler(
	watcher watch.Service,
	builds generator.Service,
	logger interfaces.Logger,
	gates FeatureGates,
	opts ...commands.HandlerOption[WatchSiteCommand],
) *WatchSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg WatchSiteCommand) error {
		if watcher == nil || !gates.watchEnabled() {
			return watch.ErrServiceDisabled
		}
		if builds == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		rebuild := func(ctx context.Context, changed []string) error {
			result, err := builds.Build(ctx, generator.BuildOptions{
				IncludeDrafts: msg.IncludeDrafts,
			})
			invokeCallback(msg.ResultCallback, ResultEnvelope{
				Result: result,
				Metadata: map[string]any{
					"operation": "watch_rebuild",
					"changed":   len(changed),
				},
			})
			return err
		}
		return watcher.Watch(ctx, rebuild)
	}

	handlerOpts := []commands.HandlerOption[WatchSiteCommand]{
		commands.WithLogger[WatchSiteCommand](baseLogger),
		commands.WithOperation[WatchSiteCommand]("site.watch"),
		commands.WithTimeout[WatchSiteCommand](0),
		commands.WithTelemetry(commands.DefaultTelemetry[WatchSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &WatchSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[WatchSiteCommand].
func (h *WatchSiteHandler) Execute(ctx context.Context, msg WatchSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
