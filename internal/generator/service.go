package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-sitegen/internal/layouts"
	"github.com/goliatone/go-sitegen/internal/logging"
	"github.com/goliatone/go-sitegen/internal/markdown"
	"github.com/goliatone/go-sitegen/internal/site"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errMarkdownRequired = errors.New("generator: markdown service is required")
	errLayoutsRequired  = errors.New("generator: layout service is required")
	errRendererRequired = errors.New("generator: template renderer is required")
	errURLsRequired     = errors.New("generator: url builder is required")
	errPathRequired     = errors.New("generator: document path is required")
	errOutputRequired   = errors.New("generator: output directory is required")
)

// Service describes the static build contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	// BuildPage renders one document by source path without writing anything.
	// Drafts render here even though full builds exclude them.
	BuildPage(ctx context.Context, path string) (*RenderedPage, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	LayoutsDir      string
	Site            site.Meta
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	Workers         int
	RenderTimeout   time.Duration
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// Paths restricts the build to the named source documents. Index pages
	// are not regenerated on a partial build.
	Paths []string
	// IncludeDrafts renders draft documents too. Listings, feeds, and the
	// sitemap still leave them out.
	IncludeDrafts bool
	DryRun        bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	Documents     int
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []Diagnostic
	Errors        []error
	DryRun        bool
}

// HasErrors reports whether any document or artifact failed during the build.
func (r *BuildResult) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// Failures returns the diagnostics carrying an error.
func (r *BuildResult) Failures() []Diagnostic {
	if r == nil {
		return nil
	}
	var failures []Diagnostic
	for _, diag := range r.Diagnostics {
		if diag.Err != nil {
			failures = append(failures, diag)
		}
	}
	return failures
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Markdown interfaces.MarkdownService
	Layouts  layouts.Service
	Renderer interfaces.TemplateRenderer
	Storage  interfaces.StorageProvider
	URLs     *site.URLBuilder
	Assets   []AssetResolver
	Logger   interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration
// and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

type disabledService struct{}

// buildState carries the per-build values shared across render jobs.
type buildState struct {
	model       *site.Site
	site        SiteContext
	theme       ThemeContext
	meta        site.Meta
	generatedAt time.Time
	options     BuildOptions
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkDependencies(); err != nil {
		return nil, err
	}

	start := time.Now()
	generatedAt := s.now()

	report, err := s.deps.Markdown.LoadDirectory(ctx, ".", interfaces.LoadOptions{})
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		Documents: len(report.Documents) + len(report.Failures),
		DryRun:    opts.DryRun,
	}

	var errorsSlice []error
	for _, failure := range report.Failures {
		diag := loadDiagnostic(failure)
		result.Diagnostics = append(result.Diagnostics, diag)
		errorsSlice = append(errorsSlice, diag.Err)
		s.logger.Warn("build.document.skip", "path", failure.Path, "kind", string(diag.Kind), "error", failure.Err)
	}

	model, err := site.Build(report.Documents, site.Config{Meta: s.cfg.Site, URLs: s.deps.URLs})
	if err != nil {
		return nil, err
	}

	jobs, err := s.assembleJobs(ctx, model, opts)
	if err != nil {
		return nil, err
	}

	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")

	manifest := newBuildManifest()
	if !s.cfg.CleanBuild {
		loaded, err := s.loadManifest(ctx)
		if err != nil {
			// A corrupt manifest costs one full rebuild, nothing more.
			s.logger.Warn("build.manifest.reset", "error", err)
		} else if loaded != nil {
			manifest = loaded
		}
	}
	var skipManifest *buildManifest
	if s.cfg.Incremental && !s.cfg.CleanBuild && !opts.DryRun {
		skipManifest = manifest
	}

	state := buildState{
		model:       model,
		site:        siteContext(model),
		theme:       buildThemeContext(s.deps.Layouts.Selection()),
		meta:        model.Meta(),
		generatedAt: generatedAt,
		options:     opts,
	}

	var (
		mu       sync.Mutex
		rendered = make([]RenderedPage, 0, len(jobs))
		pageKeys = map[string]struct{}{}
	)

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if key := pageKey(outcome.diagnostic.Route); key != "" {
			pageKeys[key] = struct{}{}
		}
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		rendered = append(rendered, outcome.page)
	}

	workerCount := s.effectiveWorkerCount(len(jobs))
	if workerCount <= 1 || len(jobs) <= 1 {
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				collect(renderOutcome{
					diagnostic: Diagnostic{
						Kind:  DiagnosticIO,
						Path:  job.sourcePath(),
						Route: job.route,
						Err:   ctx.Err(),
					},
					err: ctx.Err(),
				})
				result.Errors = append(result.Errors, errorsSlice...)
				return result, ctx.Err()
			default:
				collect(s.renderPage(ctx, state, job, skipManifest, baseDir))
			}
		}
	} else {
		if err := s.renderConcurrently(ctx, state, jobs, workerCount, skipManifest, baseDir, collect); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if opts.DryRun {
		result.Rendered = rendered
		result.PagesBuilt = len(rendered)
		result.Duration = time.Since(start)
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	writer := newArtifactWriter(s.deps.Storage)

	if s.cfg.CleanBuild && baseDir != "" {
		if err := s.cleanOutput(ctx, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Kind: DiagnosticIO, Path: baseDir, Err: err})
		}
	}

	persisted, persistDiags := s.persistPages(ctx, writer, rendered)
	result.PagesBuilt = len(persisted)
	for _, diag := range persistDiags {
		result.Diagnostics = append(result.Diagnostics, diag)
		errorsSlice = append(errorsSlice, diag.Err)
	}

	assetKeys := map[string]struct{}{}
	if s.cfg.CopyAssets {
		summary, assetDiags := s.copyAssets(ctx, writer, manifest, skipManifest, baseDir, assetKeys)
		result.AssetsBuilt += summary.Built
		result.AssetsSkipped += summary.Skipped
		for _, diag := range assetDiags {
			result.Diagnostics = append(result.Diagnostics, diag)
			errorsSlice = append(errorsSlice, diag.Err)
		}
	}

	if s.cfg.GenerateSitemap {
		entries := s.sitemapEntries(jobs, persisted, manifest, model)
		if err := s.writeSitemap(ctx, writer, entries, generatedAt); err != nil {
			errorsSlice = append(errorsSlice, err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Kind: DiagnosticIO, Path: "sitemap.xml", Err: err})
		}
	}

	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer, state.meta); err != nil {
			errorsSlice = append(errorsSlice, err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Kind: DiagnosticIO, Path: "robots.txt", Err: err})
		}
	}

	if s.cfg.GenerateFeeds {
		items := buildFeedItems(model, generatedAt)
		if _, err := s.writeFeeds(ctx, writer, state.meta, items, generatedAt); err != nil {
			errorsSlice = append(errorsSlice, err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Kind: DiagnosticIO, Path: rssFeedPath, Err: err})
		}
	}

	// The manifest is written even when documents failed: per-document
	// failures are steady state and the surviving entries keep the next
	// incremental build cheap.
	manifest.GeneratedAt = generatedAt
	for _, page := range persisted {
		if strings.TrimSpace(page.Checksum) == "" {
			continue
		}
		manifest.setPage(manifestPage{
			Route:        page.Route,
			Source:       page.Source,
			Output:       page.Output,
			Layout:       page.Layout,
			Template:     page.Template,
			Hash:         page.Metadata.Hash,
			Checksum:     page.Checksum,
			Draft:        page.Draft,
			LastModified: page.Metadata.LastModified,
			RenderedAt:   generatedAt,
		})
	}
	if len(opts.Paths) == 0 {
		if !s.cfg.CopyAssets {
			for key := range manifest.Assets {
				assetKeys[key] = struct{}{}
			}
		}
		manifest.prune(pageKeys, assetKeys)
	}
	if err := s.persistManifest(ctx, writer, manifest); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	result.Rendered = persisted
	result.Duration = time.Since(start)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

func (s *service) checkDependencies() error {
	if s.deps.Markdown == nil {
		return errMarkdownRequired
	}
	if s.deps.Layouts == nil {
		return errLayoutsRequired
	}
	if s.deps.Renderer == nil {
		return errRendererRequired
	}
	if s.deps.URLs == nil {
		return errURLsRequired
	}
	return nil
}

func loadDiagnostic(failure interfaces.LoadFailure) Diagnostic {
	kind := DiagnosticIO
	if markdown.IsParseError(failure.Err) {
		kind = DiagnosticParse
	}
	return Diagnostic{
		Kind: kind,
		Path: failure.Path,
		Line: failure.Line,
		Err:  failure.Err,
	}
}

func siteContext(model *site.Site) SiteContext {
	meta := model.Meta()
	out := SiteContext{
		Title:       meta.Title,
		Description: meta.Description,
		Author:      meta.Author,
		Language:    meta.Language,
		BaseURL:     strings.TrimRight(meta.BaseURL, "/"),
	}
	for _, section := range model.Sections() {
		out.Sections = append(out.Sections, SectionContext{
			Name:      section.Name,
			Permalink: section.Permalink,
			Count:     len(section.Pages),
		})
	}
	for _, index := range model.Tags() {
		out.Tags = append(out.Tags, tagContext(index.Tag))
	}
	return out
}

func (s *service) renderConcurrently(
	ctx context.Context,
	state buildState,
	jobs []renderJob,
	workers int,
	manifest *buildManifest,
	baseDir string,
	collect func(renderOutcome),
) error {
	if len(jobs) == 0 {
		return nil
	}

	queue := make(chan renderJob)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				select {
				case <-ctx.Done():
					collect(renderOutcome{
						diagnostic: Diagnostic{
							Kind:  DiagnosticIO,
							Path:  job.sourcePath(),
							Route: job.route,
							Err:   ctx.Err(),
						},
						err: ctx.Err(),
					})
					return
				default:
					collect(s.renderPage(ctx, state, job, manifest, baseDir))
				}
			}
		}()
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return ctx.Err()
		case queue <- job:
		}
	}
	close(queue)
	wg.Wait()
	return nil
}

func (s *service) renderPage(
	ctx context.Context,
	state buildState,
	job renderJob,
	manifest *buildManifest,
	baseDir string,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: Diagnostic{
			Path:   job.sourcePath(),
			Route:  job.route,
			Layout: job.layout,
		},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Kind = DiagnosticIO
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	layout, err := s.deps.Layouts.Resolve(ctx, job.layout)
	if err != nil {
		wrapped := fmt.Errorf("generator: resolve layout %q for %s: %w", job.layout, describeJob(job), err)
		outcome.err = wrapped
		outcome.diagnostic.Kind = DiagnosticConfig
		outcome.diagnostic.Err = wrapped
		return outcome
	}
	outcome.diagnostic.Layout = layout.Name
	outcome.diagnostic.Template = layout.Template

	metadata := s.dependencyMetadata(job, layout, state.meta)
	expectedOutput := joinOutputPath(baseDir, job.output)
	if manifest != nil && manifest.shouldSkipPage(job.route, metadata.Hash, expectedOutput) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	templateCtx := s.templateContext(state, job, layout)
	start := time.Now()
	html, err := s.renderTemplate(ctx, layout.Template, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render layout %q for %s: %w", layout.Name, describeJob(job), err)
		outcome.err = wrapped
		outcome.diagnostic.Kind = DiagnosticConfig
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	page := RenderedPage{
		Source:   job.sourcePath(),
		Route:    job.route,
		Output:   expectedOutput,
		Layout:   layout.Name,
		Template: layout.Template,
		HTML:     html,
		Metadata: metadata,
		Duration: duration,
		Checksum: computeHashFromString(html),
	}
	if job.page != nil {
		page.Draft = job.page.Draft
	}
	outcome.page = page
	return outcome
}

// renderTemplate guards template execution with the configured timeout so one
// runaway template cannot stall the whole build.
func (s *service) renderTemplate(ctx context.Context, name string, data TemplateContext) (string, error) {
	if s.cfg.RenderTimeout <= 0 {
		return s.deps.Renderer.RenderTemplate(name, data)
	}

	type renderResult struct {
		html string
		err  error
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()

	results := make(chan renderResult, 1)
	go func() {
		html, err := s.deps.Renderer.RenderTemplate(name, data)
		results <- renderResult{html: html, err: err}
	}()

	select {
	case <-timeoutCtx.Done():
		return "", fmt.Errorf("generator: template %q: %w", name, timeoutCtx.Err())
	case result := <-results:
		return result.html, result.err
	}
}

func (s *service) templateContext(state buildState, job renderJob, layout *layouts.Layout) TemplateContext {
	out := TemplateContext{
		Site:  state.site,
		Theme: state.theme,
		Build: BuildMetadata{
			GeneratedAt: state.generatedAt,
			Options:     state.options,
		},
		Helpers: newTemplateHelpers(state.meta.BaseURL),
	}
	if job.page != nil {
		out.Page = pageContext(job.page)
		out.Page.Layout = layout.Name
		return out
	}

	listing := &ListingContext{
		Title: job.title,
		Route: job.route,
		Items: make([]PageContext, 0, len(job.items)),
	}
	for _, item := range job.items {
		listing.Items = append(listing.Items, pageContext(item))
	}
	out.Listing = listing
	// Index pages get a synthetic page entry so shared partials keep working.
	out.Page = PageContext{
		Title:     job.title,
		Layout:    layout.Name,
		Permalink: job.route,
	}
	if job.tag != nil {
		tag := tagContext(*job.tag)
		out.Tag = &tag
	}
	return out
}

func describeJob(job renderJob) string {
	if source := job.sourcePath(); source != "" {
		return source
	}
	return "route " + job.route
}

func (s *service) persistPages(
	ctx context.Context,
	writer artifactWriter,
	pages []RenderedPage,
) ([]RenderedPage, []Diagnostic) {
	if len(pages) == 0 {
		return nil, nil
	}
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	dirCache := map[string]struct{}{}
	var diagnostics []Diagnostic
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			diagnostics = append(diagnostics, Diagnostic{Kind: DiagnosticIO, Path: baseDir, Err: err})
			return nil, diagnostics
		}
	}

	persisted := make([]RenderedPage, 0, len(pages))
	for _, page := range pages {
		if err := ensureDir(ctx, writer, dirCache, path.Dir(page.Output)); err != nil {
			diagnostics = append(diagnostics, persistDiagnostic(page, err))
			continue
		}
		metadata := map[string]string{
			"route":  page.Route,
			"layout": page.Layout,
		}
		if page.Source != "" {
			metadata["source"] = page.Source
		}
		if s.cfg.Incremental {
			metadata["incremental"] = "true"
		}
		req := writeFileRequest{
			Path:        page.Output,
			Content:     strings.NewReader(page.HTML),
			Size:        int64(len(page.HTML)),
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    page.Checksum,
			Metadata:    metadata,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			diagnostics = append(diagnostics, persistDiagnostic(page, fmt.Errorf("generator: write %q: %w", page.Output, err)))
			continue
		}
		persisted = append(persisted, page)
	}
	return persisted, diagnostics
}

func persistDiagnostic(page RenderedPage, err error) Diagnostic {
	return Diagnostic{
		Kind:     DiagnosticIO,
		Path:     page.Source,
		Route:    page.Route,
		Layout:   page.Layout,
		Template: page.Template,
		Err:      err,
	}
}

type assetCopySummary struct {
	Built   int
	Skipped int
}

func (s *service) copyAssets(
	ctx context.Context,
	writer artifactWriter,
	manifest *buildManifest,
	skipManifest *buildManifest,
	baseDir string,
	assetKeys map[string]struct{},
) (assetCopySummary, []Diagnostic) {
	summary := assetCopySummary{}
	if len(s.deps.Assets) == 0 {
		return summary, nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return summary, []Diagnostic{{Kind: DiagnosticIO, Path: baseDir, Err: err}}
		}
	}

	var diagnostics []Diagnostic
	seen := map[string]struct{}{}
	for _, resolver := range s.deps.Assets {
		if resolver == nil {
			continue
		}
		assets, err := resolver.Assets(ctx)
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{
				Kind: DiagnosticIO,
				Err:  fmt.Errorf("generator: list assets: %w", err),
			})
			continue
		}
		for _, asset := range assets {
			rel := strings.TrimLeft(strings.TrimSpace(asset.Rel), "/")
			if rel == "" {
				continue
			}
			// First resolver wins on duplicate relative paths.
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			assetKeys[assetKey(rel)] = struct{}{}

			data, err := readAsset(ctx, resolver, asset)
			if err != nil {
				diagnostics = append(diagnostics, Diagnostic{
					Kind:  DiagnosticIO,
					Path:  asset.Source,
					Route: rel,
					Err:   fmt.Errorf("generator: read asset %q: %w", rel, err),
				})
				continue
			}
			fullPath := joinOutputPath(baseDir, rel)
			checksum := computeHash(data)
			if skipManifest != nil && skipManifest.shouldSkipAsset(rel, checksum, fullPath) {
				summary.Skipped++
				continue
			}
			if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
				diagnostics = append(diagnostics, Diagnostic{Kind: DiagnosticIO, Path: asset.Source, Route: rel, Err: err})
				continue
			}
			req := writeFileRequest{
				Path:        fullPath,
				Content:     bytes.NewReader(data),
				Size:        int64(len(data)),
				Category:    categoryAsset,
				ContentType: layouts.AssetContentType(rel),
				Checksum:    checksum,
				Metadata: map[string]string{
					"source": asset.Source,
					"asset":  rel,
				},
			}
			if err := writer.WriteFile(ctx, req); err != nil {
				diagnostics = append(diagnostics, Diagnostic{
					Kind:  DiagnosticIO,
					Path:  asset.Source,
					Route: rel,
					Err:   fmt.Errorf("generator: write asset %q: %w", fullPath, err),
				})
				continue
			}
			summary.Built++
			manifest.setAsset(manifestAsset{
				Key:      assetKey(rel),
				Source:   asset.Source,
				Output:   fullPath,
				Checksum: checksum,
				Size:     int64(len(data)),
				CopiedAt: s.now(),
			})
		}
	}
	return summary, diagnostics
}

func readAsset(ctx context.Context, resolver AssetResolver, asset Asset) ([]byte, error) {
	reader, err := resolver.Open(ctx, asset)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// sitemapEntries merges this build's artifacts with manifest entries for
// pages an incremental run skipped. Drafts and failed pages stay out.
func (s *service) sitemapEntries(
	jobs []renderJob,
	persisted []RenderedPage,
	manifest *buildManifest,
	model *site.Site,
) []sitemapEntry {
	byRoute := make(map[string]RenderedPage, len(persisted))
	for _, page := range persisted {
		byRoute[pageKey(page.Route)] = page
	}

	entries := make([]sitemapEntry, 0, len(jobs))
	for _, job := range jobs {
		if job.page != nil && job.page.Draft {
			continue
		}
		if page, ok := byRoute[pageKey(job.route)]; ok {
			entries = append(entries, sitemapEntry{
				Location: model.AbsoluteURL(job.route),
				LastMod:  page.Metadata.LastModified,
			})
			continue
		}
		if entry, ok := manifest.lookupPage(job.route); ok && !entry.Draft {
			entries = append(entries, sitemapEntry{
				Location: model.AbsoluteURL(job.route),
				LastMod:  entry.LastModified,
			})
		}
	}
	return entries
}

func (s *service) writeSitemap(
	ctx context.Context,
	writer artifactWriter,
	entries []sitemapEntry,
	generatedAt time.Time,
) error {
	content := buildSitemap(entries, generatedAt)
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	fullPath := joinOutputPath(baseDir, "sitemap.xml")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": generatedAt.UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) writeRobots(ctx context.Context, writer artifactWriter, meta site.Meta) error {
	content := buildRobots(meta.BaseURL, s.cfg.GenerateSitemap)
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	fullPath := joinOutputPath(baseDir, "robots.txt")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": s.now().UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	target := s.manifestTargetPath()
	if strings.TrimSpace(target) == "" {
		return newBuildManifest(), nil
	}
	rows, err := s.deps.Storage.Query(ctx, storageOpRead, target)
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	if rows == nil {
		return newBuildManifest(), nil
	}
	defer rows.Close()
	if !rows.Next() {
		return newBuildManifest(), nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("generator: scan manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) manifestTargetPath() string {
	base := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	return joinOutputPath(base, manifestFileName)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	if manifest == nil {
		return nil
	}
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := s.manifestTargetPath()
	if strings.TrimSpace(target) == "" {
		return nil
	}
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(target)); err != nil {
		return err
	}
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	req := writeFileRequest{
		Path:        target,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    metadata,
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) effectiveWorkerCount(jobCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobCount > 0 && workers > jobCount {
		return jobCount
	}
	return workers
}

func (s *service) BuildPage(ctx context.Context, sourcePath string) (*RenderedPage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.checkDependencies(); err != nil {
		return nil, err
	}
	sourcePath = filepath.ToSlash(strings.TrimSpace(sourcePath))
	if sourcePath == "" {
		return nil, errPathRequired
	}

	report, err := s.deps.Markdown.LoadDirectory(ctx, ".", interfaces.LoadOptions{})
	if err != nil {
		return nil, err
	}
	model, err := site.Build(report.Documents, site.Config{Meta: s.cfg.Site, URLs: s.deps.URLs})
	if err != nil {
		return nil, err
	}

	page, ok := model.Get(sourcePath)
	if !ok {
		for _, failure := range report.Failures {
			if filepath.ToSlash(failure.Path) == sourcePath {
				return nil, failure.Err
			}
		}
		return nil, fmt.Errorf("generator: unknown document %q", sourcePath)
	}

	state := buildState{
		model:       model,
		site:        siteContext(model),
		theme:       buildThemeContext(s.deps.Layouts.Selection()),
		meta:        model.Meta(),
		generatedAt: s.now(),
	}
	job := renderJob{
		page:   page,
		title:  page.Title,
		route:  page.Permalink,
		output: page.OutputPath,
		layout: page.Layout,
	}
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	outcome := s.renderPage(ctx, state, job, nil, baseDir)
	if outcome.err != nil {
		return nil, outcome.err
	}
	rendered := outcome.page
	return &rendered, nil
}

func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	if baseDir == "" {
		return errOutputRequired
	}
	return s.cleanOutput(ctx, baseDir)
}

func (s *service) cleanOutput(ctx context.Context, baseDir string) error {
	if s.deps.Storage == nil {
		return nil
	}
	if _, err := s.deps.Storage.Exec(ctx, storageOpRemove, baseDir); err != nil {
		return fmt.Errorf("generator: clean %q: %w", baseDir, err)
	}
	return nil
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildPage(context.Context, string) (*RenderedPage, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
