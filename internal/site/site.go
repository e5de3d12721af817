package site

import (
	"path/filepath"
	"strings"
)

// Site is the immutable collection handed to the generator: every page plus
// the derived listing views. Build is the only writer; accessors hand out
// copied slices so callers cannot disturb the ordering underneath.
type Site struct {
	meta Meta

	pages  []*Page
	listed []*Page
	byPath map[string]*Page

	sections []*Section
	tags     []*TagIndex
}

// Meta returns the site-wide metadata.
func (s *Site) Meta() Meta {
	return s.meta
}

// Pages returns every page, drafts included, ordered like Listed with drafts
// interleaved. Individual draft rendering goes through here.
func (s *Site) Pages() []*Page {
	return clonePages(s.pages)
}

// Listed returns the publishable pages ordered by date descending, ties
// broken by source path ascending. Drafts never appear here.
func (s *Site) Listed() []*Page {
	return clonePages(s.listed)
}

// Get looks a page up by its source path, drafts included.
func (s *Site) Get(path string) (*Page, bool) {
	page, ok := s.byPath[normalizePath(path)]
	return page, ok
}

// Sections returns the named section listings in name order. Root documents
// belong to no section and only appear in Listed.
func (s *Site) Sections() []*Section {
	out := make([]*Section, len(s.sections))
	for i, section := range s.sections {
		out[i] = &Section{
			Name:      section.Name,
			Permalink: section.Permalink,
			Pages:     clonePages(section.Pages),
		}
	}
	return out
}

// Tags returns the tag indexes in slug order. Only listed pages contribute.
func (s *Site) Tags() []*TagIndex {
	out := make([]*TagIndex, len(s.tags))
	for i, index := range s.tags {
		out[i] = &TagIndex{
			Tag:   index.Tag,
			Pages: clonePages(index.Pages),
		}
	}
	return out
}

// Len reports the total number of pages, drafts included.
func (s *Site) Len() int {
	return len(s.pages)
}

// AbsoluteURL joins the configured base URL with a site-relative path.
func (s *Site) AbsoluteURL(path string) string {
	base := strings.TrimRight(s.meta.BaseURL, "/")
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		if base == "" {
			return "/"
		}
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func clonePages(pages []*Page) []*Page {
	out := make([]*Page, len(pages))
	copy(out, pages)
	return out
}

func normalizePath(path string) string {
	return filepath.ToSlash(strings.TrimSpace(path))
}
