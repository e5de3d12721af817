package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitegen/internal/generator"
)

const (
	buildSiteMessageType       = "sitegen.site.build"
	cleanSiteMessageType       = "sitegen.site.clean"
	previewDocumentMessageType = "sitegen.site.preview"
	watchSiteMessageType       = "sitegen.site.watch"
)

// ResultCallback receives build results produced by generator operations. The
// callback is optional and is invoked synchronously from the handler when a
// BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a site command execution that
// produced a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// PreviewCallback receives the page rendered by a preview command.
type PreviewCallback func(PreviewEnvelope)

// PreviewEnvelope carries a single rendered page back to the caller.
type PreviewEnvelope struct {
	Page     *generator.RenderedPage
	Metadata map[string]any
}

// BuildSiteCommand executes a generator build.
type BuildSiteCommand struct {
	// Paths restricts the build to the named source documents. Empty means a
	// full build.
	Paths          []string       `json:"paths,omitempty"`
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures path filters are well-formed.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, path := range m.Paths {
		if strings.TrimSpace(path) == "" {
			errs["paths"] = validation.NewError("sitegen.site.build.path_invalid", "paths must not contain empty values")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand removes generated artifacts from the output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// PreviewDocumentCommand renders one document, drafts included, without
// writing anything.
type PreviewDocumentCommand struct {
	Path     string          `json:"path"`
	Callback PreviewCallback `json:"-"`
}

// Type implements command.Message.
func (PreviewDocumentCommand) Type() string { return previewDocumentMessageType }

// Validate ensures the source path is present.
func (m PreviewDocumentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Path) == "" {
		errs["path"] = validation.NewError("sitegen.site.preview.path_required", "path is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WatchSiteCommand blocks on the filesystem watcher and rebuilds the site when
// sources change. Execution ends when the handler context is cancelled.
type WatchSiteCommand struct {
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (WatchSiteCommand) Type() string { return watchSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (WatchSiteCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
	WatchEnabled     func() bool
	CatalogEnabled   func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}

func (g FeatureGates) watchEnabled() bool {
	if g.WatchEnabled == nil {
		return false
	}
	return g.WatchEnabled()
}

func (g FeatureGates) catalogEnabled() bool {
	if g.CatalogEnabled == nil {
		return false
	}
	return g.CatalogEnabled()
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}

func normalizePaths(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, path := range values {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
