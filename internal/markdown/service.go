package markdown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-sitegen/internal/validation"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    interfaces.ParseOptions
	// Schema optionally constrains front matter. Accepts either a JSON schema
	// or the plain field-list shorthand; see internal/validation.
	Schema map[string]any
}

// Service implements interfaces.MarkdownService for filesystem-backed documents.
type Service struct {
	cfg       Config
	parser    interfaces.MarkdownParser
	loader    *Loader
	sanitizer Sanitizer
}

// NewService constructs a Markdown service using an underlying loader. When
// parser is nil, a Goldmark parser with the provided default options is
// created.
func NewService(cfg Config, parser interfaces.MarkdownParser) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	if len(cfg.Schema) > 0 {
		if err := validation.ValidateSchema(cfg.Schema); err != nil {
			return nil, fmt.Errorf("markdown service: front matter schema: %w", err)
		}
	}

	loader := NewLoader(filesystem, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
	})

	return &Service{
		cfg:       cfg,
		parser:    parser,
		loader:    loader,
		sanitizer: NewHTMLSanitizer(),
	}, nil
}

// Load reads a single Markdown document relative to the configured base path.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, s.normalisePath(path), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}
	if err := s.validateFrontMatter(result.Document); err != nil {
		return nil, err
	}
	if err := s.renderDocument(ctx, result.Document, opts.Parser); err != nil {
		return nil, err
	}
	return result.Document, nil
}

// LoadDirectory reads every Markdown document within the supplied directory.
// Files that fail to read, parse, or render are reported on the returned
// LoadReport without interrupting their siblings.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) (*interfaces.LoadReport, error) {
	results, failures, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}

	report := &interfaces.LoadReport{
		Documents: make([]*interfaces.Document, 0, len(results)),
		Failures:  failures,
	}

	for _, result := range results {
		if err := s.validateFrontMatter(result.Document); err != nil {
			report.Failures = append(report.Failures, interfaces.LoadFailure{
				Path: result.Document.FilePath,
				Line: ParseErrorLine(err),
				Err:  err,
			})
			continue
		}
		if err := s.renderDocument(ctx, result.Document, opts.Parser); err != nil {
			report.Failures = append(report.Failures, interfaces.LoadFailure{
				Path: result.Document.FilePath,
				Err:  err,
			})
			continue
		}
		report.Documents = append(report.Documents, result.Document)
	}

	sort.Slice(report.Documents, func(i, j int) bool {
		return report.Documents[i].FilePath < report.Documents[j].FilePath
	})
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].Path < report.Failures[j].Path
	})
	return report, nil
}

// Render parses Markdown bytes into HTML using the configured parser and, when
// requested, scrubs the result through the sanitiser.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	merged := mergeParseOptions(s.cfg.Parser, opts)
	html, err := s.parser.ParseWithOptions(markdown, merged)
	if err != nil {
		return nil, err
	}
	if merged.Sanitize && s.sanitizer != nil {
		html = s.sanitizer.Sanitize(html)
	}
	return html, nil
}

// RenderDocument converts the document's Markdown body into HTML using the configured parser.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("markdown service: document is nil")
	}
	html, err := s.Render(ctx, doc.Body, opts)
	if err != nil {
		return nil, err
	}
	doc.BodyHTML = html
	return html, nil
}

func (s *Service) renderDocument(ctx context.Context, doc *interfaces.Document, overrides interfaces.ParseOptions) error {
	if doc == nil {
		return nil
	}
	html, err := s.Render(ctx, doc.Body, overrides)
	if err != nil {
		return fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html
	return nil
}

func (s *Service) validateFrontMatter(doc *interfaces.Document) error {
	if len(s.cfg.Schema) == 0 || doc == nil {
		return nil
	}
	payload, err := jsonPayload(doc.FrontMatter.Raw)
	if err != nil {
		return &ParseError{Path: doc.FilePath, Err: err}
	}
	if err := validation.ValidatePayload(s.cfg.Schema, payload); err != nil {
		return &ParseError{Path: doc.FilePath, Err: err}
	}
	return nil
}

// jsonPayload flattens decoder-specific value types (TOML datetimes in
// particular) into plain JSON types the schema validator understands.
func jsonPayload(raw map[string]any) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("front matter not representable as JSON: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.Sanitize {
		result.Sanitize = true
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func toLoaderParams(opts interfaces.LoadOptions) LoadParams {
	return LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	}
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
