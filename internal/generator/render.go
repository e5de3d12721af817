package generator

import (
	"html/template"
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitegen/internal/site"
)

// TemplateContext is the data contract passed to TemplateRenderer
// implementations. Listing and Tag are nil on document pages; on index pages
// Page carries a synthetic entry so shared partials keep working.
type TemplateContext struct {
	Site    SiteContext
	Page    PageContext
	Listing *ListingContext
	Tag     *TagContext
	Build   BuildMetadata
	Theme   ThemeContext
	Helpers TemplateHelpers
}

// SiteContext exposes site-wide values and navigation data to layouts.
type SiteContext struct {
	Title       string
	Description string
	Author      string
	Language    string
	BaseURL     string
	Sections    []SectionContext
	Tags        []TagContext
}

// SectionContext points layouts at a section listing.
type SectionContext struct {
	Name      string
	Permalink string
	Count     int
}

// TagContext points layouts at a tag listing. The Stringer form prints the
// display name so templates can range over tags directly.
type TagContext struct {
	Name      string
	Slug      string
	Permalink string
}

func (t TagContext) String() string {
	return t.Name
}

// PageContext carries one document resolved for rendering.
type PageContext struct {
	Title        string
	Subtitle     string
	Slug         string
	Section      string
	Layout       string
	Permalink    string
	Summary      string
	Author       string
	Source       string
	Content      template.HTML
	Date         time.Time
	LastModified time.Time
	Draft        bool
	Tags         []TagContext
	Custom       map[string]any
}

// ListingContext carries the ordered members of an index page.
type ListingContext struct {
	Title string
	Route string
	Items []PageContext
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	CSSVars   map[string]string
	Partials  map[string]string
	AssetURL  func(string) string
	Template  func(string, string) string
	Selection *gotheme.Selection
}

// TemplateHelpers exposes convenience helpers for layout authors.
type TemplateHelpers struct {
	baseURL string
}

func newTemplateHelpers(baseURL string) TemplateHelpers {
	return TemplateHelpers{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// BaseURL returns the configured site base URL without a trailing slash.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// AbsoluteURL prefixes a site-relative path with the configured base URL.
// Fully qualified URLs pass through untouched.
func (h TemplateHelpers) AbsoluteURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

func buildThemeContext(selection *gotheme.Selection) ThemeContext {
	if selection == nil {
		return ThemeContext{
			Tokens:   map[string]string{},
			CSSVars:  map[string]string{},
			Partials: map[string]string{},
			AssetURL: func(string) string { return "" },
			Template: func(_ string, fallback string) string { return fallback },
		}
	}
	return ThemeContext{
		Name:      selection.Theme,
		Variant:   selection.Variant,
		Tokens:    selection.Tokens(),
		CSSVars:   selection.CSSVariables(""),
		Partials:  selection.Partials(nil),
		AssetURL:  func(key string) string { url, _ := selection.Asset(key); return url },
		Template:  selection.Template,
		Selection: selection,
	}
}

func tagContext(tag site.Tag) TagContext {
	return TagContext{Name: tag.Name, Slug: tag.Slug, Permalink: tag.Permalink}
}

func pageContext(page *site.Page) PageContext {
	out := PageContext{
		Title:     page.Title,
		Slug:      page.Slug,
		Section:   page.Section,
		Layout:    page.Layout,
		Permalink: page.Permalink,
		Summary:   page.Summary,
		Author:    page.Author,
		Date:      page.Date,
		Draft:     page.Draft,
	}
	if doc := page.Document; doc != nil {
		out.Source = doc.FilePath
		out.Subtitle = doc.FrontMatter.Subtitle
		out.Content = template.HTML(doc.BodyHTML)
		out.Custom = doc.FrontMatter.Custom
		out.LastModified = doc.LastModified
	}
	for _, tag := range page.Tags {
		out.Tags = append(out.Tags, tagContext(tag))
	}
	return out
}

// RenderedPage captures one produced artifact. Source is empty for index
// pages, which have no single backing document.
type RenderedPage struct {
	Source   string
	Route    string
	Output   string
	Layout   string
	Template string
	HTML     string
	Draft    bool
	Metadata DependencyMetadata
	Duration time.Duration
	Checksum string
}

// DiagnosticKind classifies build diagnostics by failure family.
type DiagnosticKind string

const (
	// DiagnosticParse covers malformed front matter.
	DiagnosticParse DiagnosticKind = "parse"
	// DiagnosticConfig covers unresolved layouts and template failures.
	DiagnosticConfig DiagnosticKind = "config"
	// DiagnosticIO covers unreadable sources and unwritable artifacts.
	DiagnosticIO DiagnosticKind = "io"
)

// Diagnostic records the outcome of one document or index page during a
// build. Err is nil on success; Skipped marks pages an incremental run left
// untouched. Kind is meaningful only alongside a non-nil Err.
type Diagnostic struct {
	Kind     DiagnosticKind
	Path     string
	Route    string
	Line     int
	Layout   string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic Diagnostic
	err        error
	skipped    bool
}
