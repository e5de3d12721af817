package site

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	slug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-sitegen/internal/identity"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// ErrURLBuilderRequired indicates Build was called without a URL builder.
var ErrURLBuilderRequired = errors.New("site: url builder required")

// Config carries the inputs Build needs besides the documents themselves.
type Config struct {
	Meta Meta
	URLs *URLBuilder
}

// Build assembles the immutable site model from parsed documents. Documents
// are processed in path order so slug collisions resolve deterministically;
// drafts join the page set but never the listings.
func Build(docs []*interfaces.Document, cfg Config) (*Site, error) {
	if cfg.URLs == nil {
		return nil, ErrURLBuilderRequired
	}

	ordered := make([]*interfaces.Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			ordered = append(ordered, doc)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].FilePath < ordered[j].FilePath })

	s := &Site{
		meta:   cfg.Meta,
		byPath: make(map[string]*Page, len(ordered)),
	}

	taken := map[string]struct{}{}
	for _, doc := range ordered {
		page, err := buildPage(doc, cfg.URLs, taken)
		if err != nil {
			return nil, err
		}
		s.pages = append(s.pages, page)
		s.byPath[normalizePath(doc.FilePath)] = page
		if !page.Draft {
			s.listed = append(s.listed, page)
		}
	}

	sortListing(s.pages)
	sortListing(s.listed)

	if err := buildSections(s, cfg.URLs); err != nil {
		return nil, err
	}
	buildTagIndexes(s)
	return s, nil
}

func buildPage(doc *interfaces.Document, urls *URLBuilder, taken map[string]struct{}) (*Page, error) {
	fm := doc.FrontMatter

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = baseName(doc.FilePath)
	}

	pageSlug := deriveSlug(fm.Slug, fm.Title, doc.FilePath)
	permalink, err := uniquePermalink(urls, doc.Section, pageSlug, taken)
	if err != nil {
		return nil, err
	}

	page := &Page{
		ID:         identity.DocumentUUID(doc.FilePath),
		Document:   doc,
		Title:      title,
		Slug:       pageSlug,
		Section:    doc.Section,
		Layout:     strings.TrimSpace(fm.Layout),
		Permalink:  permalink,
		OutputPath: outputPath(permalink),
		Summary:    strings.TrimSpace(fm.Summary),
		Author:     strings.TrimSpace(fm.Author),
		Date:       fm.Date,
		Draft:      fm.Draft,
	}

	for _, raw := range fm.Tags {
		tag, ok := buildTag(raw, urls)
		if !ok {
			continue
		}
		page.Tags = append(page.Tags, tag)
	}
	return page, nil
}

func buildTag(raw string, urls *URLBuilder) (Tag, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return Tag{}, false
	}
	normalized, err := slug.Normalize(name)
	if err != nil || normalized == "" {
		return Tag{}, false
	}
	permalink, err := urls.TagPermalink(normalized)
	if err != nil {
		return Tag{}, false
	}
	return Tag{
		ID:        identity.TagUUID(normalized),
		Name:      name,
		Slug:      normalized,
		Permalink: permalink,
	}, true
}

// deriveSlug walks the candidate values in priority order: explicit slug,
// title, then the file base name.
func deriveSlug(explicit, title, filePath string) string {
	for _, candidate := range []string{explicit, title, baseName(filePath)} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if normalized, err := slug.Normalize(candidate); err == nil && normalized != "" {
			return normalized
		}
	}
	return "untitled"
}

func uniquePermalink(urls *URLBuilder, section, pageSlug string, taken map[string]struct{}) (string, error) {
	candidate := pageSlug
	for attempt := 2; ; attempt++ {
		permalink, err := urls.PagePermalink(section, candidate)
		if err != nil {
			return "", err
		}
		if _, exists := taken[permalink]; !exists {
			taken[permalink] = struct{}{}
			return permalink, nil
		}
		candidate = fmt.Sprintf("%s-%d", pageSlug, attempt)
	}
}

func sortListing(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		if !pages[i].Date.Equal(pages[j].Date) {
			return pages[i].Date.After(pages[j].Date)
		}
		return pages[i].Document.FilePath < pages[j].Document.FilePath
	})
}

func buildSections(s *Site, urls *URLBuilder) error {
	grouped := map[string][]*Page{}
	for _, page := range s.listed {
		if page.Section == "" {
			continue
		}
		grouped[page.Section] = append(grouped[page.Section], page)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		permalink, err := urls.SectionPermalink(name)
		if err != nil {
			return err
		}
		s.sections = append(s.sections, &Section{
			Name:      name,
			Permalink: permalink,
			Pages:     grouped[name],
		})
	}
	return nil
}

func buildTagIndexes(s *Site) {
	grouped := map[string]*TagIndex{}
	for _, page := range s.listed {
		for _, tag := range page.Tags {
			index, ok := grouped[tag.Slug]
			if !ok {
				index = &TagIndex{Tag: tag}
				grouped[tag.Slug] = index
			}
			index.Pages = append(index.Pages, page)
		}
	}

	slugs := make([]string, 0, len(grouped))
	for key := range grouped {
		slugs = append(slugs, key)
	}
	sort.Strings(slugs)

	for _, key := range slugs {
		s.tags = append(s.tags, grouped[key])
	}
}

// outputPath maps a permalink onto the artifact path inside the output dir,
// one index.html per page so URLs stay extension-free.
func outputPath(permalink string) string {
	clean := strings.Trim(permalink, " \t\r\n/")
	if clean == "" {
		return "index.html"
	}
	return path.Join(clean, "index.html")
}

func baseName(filePath string) string {
	base := path.Base(normalizePath(filePath))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
