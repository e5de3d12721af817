package site

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	routeGroup      = "site"
	routePage       = "page"
	routePageRoot   = "page_root"
	routeSection    = "section"
	routeTag        = "tag"
	defaultPages    = "/:section/:slug"
	defaultSections = "/:section"
	defaultTags     = "/tags/:slug"
)

// URLConfig captures the permalink templates. RouteConfig replaces the
// derived go-urlkit configuration entirely when a host supplies one; its
// route group must be named "site" and define page/page_root/section/tag.
type URLConfig struct {
	BaseURL     string
	Pages       string
	Sections    string
	Tags        string
	RouteConfig *urlkit.Config
}

// URLBuilder derives permalinks through a go-urlkit route manager.
type URLBuilder struct {
	manager *urlkit.RouteManager
	baseURL string
}

// NewURLBuilder constructs the permalink builder for a site.
func NewURLBuilder(cfg URLConfig) (*URLBuilder, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	routeCfg := cfg.RouteConfig
	if routeCfg == nil {
		pages := defaultPattern(cfg.Pages, defaultPages)
		routeCfg = &urlkit.Config{
			Groups: []urlkit.GroupConfig{
				{
					Name:    routeGroup,
					BaseURL: base,
					Paths: map[string]string{
						routePage:     pages,
						routePageRoot: stripSectionParam(pages),
						routeSection:  defaultPattern(cfg.Sections, defaultSections),
						routeTag:      defaultPattern(cfg.Tags, defaultTags),
					},
				},
			},
		}
	}

	builder := &URLBuilder{
		manager: urlkit.NewRouteManager(routeCfg),
		baseURL: base,
	}
	if _, err := builder.group(); err != nil {
		return nil, err
	}
	return builder, nil
}

// PagePermalink returns the site-relative permalink for a document page.
// Root documents (no section) use the pattern with the section stripped.
func (b *URLBuilder) PagePermalink(section, slug string) (string, error) {
	section = strings.TrimSpace(section)
	if section == "" {
		return b.build(routePageRoot, map[string]any{"slug": slug})
	}
	return b.build(routePage, map[string]any{"section": section, "slug": slug})
}

// SectionPermalink returns the site-relative permalink for a section index.
func (b *URLBuilder) SectionPermalink(section string) (string, error) {
	return b.build(routeSection, map[string]any{"section": section})
}

// TagPermalink returns the site-relative permalink for a tag index.
func (b *URLBuilder) TagPermalink(slug string) (string, error) {
	return b.build(routeTag, map[string]any{"slug": slug})
}

func (b *URLBuilder) build(route string, params map[string]any) (string, error) {
	group, err := b.group()
	if err != nil {
		return "", err
	}

	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	for key, value := range params {
		builder.WithParam(key, value)
	}

	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("site: build %s url: %w", route, err)
	}
	return b.relative(url), nil
}

// relative trims the base URL so permalinks stay site-relative; AbsoluteURL
// re-attaches the base for sitemap and feed output.
func (b *URLBuilder) relative(url string) string {
	if b.baseURL != "" {
		url = strings.TrimPrefix(url, b.baseURL)
	}
	if url == "" {
		return "/"
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return url
}

func (b *URLBuilder) group() (group *urlkit.Group, err error) {
	if b == nil || b.manager == nil {
		return nil, fmt.Errorf("site: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("site: route group %q not found", routeGroup)
		}
	}()
	group = b.manager.Group(routeGroup)
	return group, err
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("site: route group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("site: route %q not found", route)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func defaultPattern(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return value
}

// stripSectionParam removes the section segment so root documents resolve
// directly under the site root ("/:section/:slug" becomes "/:slug").
func stripSectionParam(pattern string) string {
	stripped := strings.ReplaceAll(pattern, "/:section", "")
	if stripped == "" {
		stripped = "/"
	}
	return stripped
}
