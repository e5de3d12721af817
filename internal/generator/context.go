package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/goliatone/go-sitegen/internal/layouts"
	"github.com/goliatone/go-sitegen/internal/site"
)

// Index pages opt in through layout names: registering a "list" layout turns
// on the home and section listings, a "tag" layout turns on tag listings.
const (
	listLayoutName = "list"
	tagLayoutName  = "tag"
)

// renderJob binds one output artifact to its inputs. Document jobs carry the
// backing page; index jobs carry the member pages instead.
type renderJob struct {
	page   *site.Page
	tag    *site.Tag
	items  []*site.Page
	title  string
	route  string
	output string
	layout string
}

func (j renderJob) isListing() bool {
	return j.page == nil
}

func (j renderJob) sourcePath() string {
	if j.page != nil && j.page.Document != nil {
		return j.page.Document.FilePath
	}
	return ""
}

// assembleJobs expands the site model into the artifacts this build should
// produce. Full builds add index pages after the documents; partial builds
// render only the requested source paths.
func (s *service) assembleJobs(ctx context.Context, model *site.Site, opts BuildOptions) ([]renderJob, error) {
	pages := model.Listed()
	if opts.IncludeDrafts {
		pages = model.Pages()
	}

	partial := len(opts.Paths) > 0
	if partial {
		selected := make([]*site.Page, 0, len(opts.Paths))
		seen := map[string]struct{}{}
		for _, requested := range opts.Paths {
			trimmed := strings.TrimSpace(requested)
			if trimmed == "" {
				continue
			}
			page, ok := model.Get(trimmed)
			if !ok {
				return nil, fmt.Errorf("generator: unknown document %q", trimmed)
			}
			if _, dup := seen[page.Permalink]; dup {
				continue
			}
			seen[page.Permalink] = struct{}{}
			selected = append(selected, page)
		}
		pages = selected
	}

	jobs := make([]renderJob, 0, len(pages))
	taken := make(map[string]struct{}, len(pages))
	for _, page := range pages {
		jobs = append(jobs, renderJob{
			page:   page,
			title:  page.Title,
			route:  page.Permalink,
			output: page.OutputPath,
			layout: page.Layout,
		})
		taken[page.Permalink] = struct{}{}
	}
	if partial {
		return jobs, nil
	}

	listings, err := s.listingJobs(ctx, model, taken)
	if err != nil {
		return nil, err
	}
	return append(jobs, listings...), nil
}

// listingJobs derives the home, section, and tag index jobs. Routes a
// document already claims stay with the document.
func (s *service) listingJobs(ctx context.Context, model *site.Site, taken map[string]struct{}) ([]renderJob, error) {
	var jobs []renderJob

	hasList, err := s.listingLayoutAvailable(ctx, listLayoutName)
	if err != nil {
		return nil, err
	}
	if hasList {
		meta := model.Meta()
		if _, used := taken["/"]; !used {
			jobs = append(jobs, renderJob{
				items:  model.Listed(),
				title:  meta.Title,
				route:  "/",
				output: routeOutputPath("/"),
				layout: listLayoutName,
			})
		}
		for _, section := range model.Sections() {
			if _, used := taken[section.Permalink]; used {
				continue
			}
			jobs = append(jobs, renderJob{
				items:  section.Pages,
				title:  listingTitle(section.Name),
				route:  section.Permalink,
				output: routeOutputPath(section.Permalink),
				layout: listLayoutName,
			})
		}
	}

	hasTag, err := s.listingLayoutAvailable(ctx, tagLayoutName)
	if err != nil {
		return nil, err
	}
	if hasTag {
		for _, index := range model.Tags() {
			if _, used := taken[index.Permalink]; used {
				continue
			}
			tag := index.Tag
			jobs = append(jobs, renderJob{
				tag:    &tag,
				items:  index.Pages,
				title:  index.Name,
				route:  index.Permalink,
				output: routeOutputPath(index.Permalink),
				layout: tagLayoutName,
			})
		}
	}
	return jobs, nil
}

func (s *service) listingLayoutAvailable(ctx context.Context, name string) (bool, error) {
	if s.deps.Layouts == nil {
		return false, nil
	}
	if _, err := s.deps.Layouts.Resolve(ctx, name); err != nil {
		if errors.Is(err, layouts.ErrLayoutNotFound) {
			s.logger.Debug("build.listing.skip", "layout", name, "reason", "not_registered")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func listingTitle(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// DependencyMetadata tracks hashes and timestamps for incremental builds.
type DependencyMetadata struct {
	Sources      map[string]string
	Hash         string
	LastModified time.Time
}

func (s *service) dependencyMetadata(job renderJob, layout *layouts.Layout, meta site.Meta) DependencyMetadata {
	sources := map[string]string{
		"site":  joinParts(meta.BaseURL, meta.Title, meta.Language),
		"route": job.route,
	}
	if layout != nil {
		sources["layout"] = joinParts(layout.Name, layout.Template, layout.Path)
		if stamp := s.layoutFileStamp(layout); stamp != "" {
			sources["layout_file"] = stamp
		}
	}

	var lastModified time.Time
	if page := job.page; page != nil {
		source := ""
		checksum := ""
		var docModified time.Time
		if doc := page.Document; doc != nil {
			source = doc.FilePath
			checksum = hex.EncodeToString(doc.Checksum)
			docModified = doc.LastModified
		}
		sources["document"] = joinParts(source, checksum, docModified.UTC().Format(time.RFC3339Nano))
		lastModified = maxTime(page.Date, docModified)
	}
	if len(job.items) > 0 {
		values := make([]string, 0, len(job.items))
		for _, item := range job.items {
			values = append(values, joinParts(item.Permalink, item.Title, item.Date.UTC().Format(time.RFC3339Nano)))
			if doc := item.Document; doc != nil {
				lastModified = maxTime(lastModified, doc.LastModified)
			}
		}
		sort.Strings(values)
		sources["items"] = hashStrings(values)
	}

	return DependencyMetadata{
		Sources:      sources,
		Hash:         hashSources(sources),
		LastModified: lastModified,
	}
}

// layoutFileStamp folds the layout file's mtime into the dependency hash so
// edited templates invalidate incremental skips. A missing file contributes
// nothing; the identity source still covers renames.
func (s *service) layoutFileStamp(layout *layouts.Layout) string {
	dir := strings.TrimSpace(s.cfg.LayoutsDir)
	if dir == "" || layout == nil || strings.TrimSpace(layout.Path) == "" {
		return ""
	}
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(layout.Path)))
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format(time.RFC3339Nano)
}

func joinParts(parts ...string) string {
	return strings.Join(parts, "|")
}

func hashStrings(values []string) string {
	if len(values) == 0 {
		return ""
	}
	hasher := sha256.New()
	for _, value := range values {
		hasher.Write([]byte(value))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func hashSources(sources map[string]string) string {
	if len(sources) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte("="))
		hasher.Write([]byte(sources[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func maxTime(times ...time.Time) time.Time {
	var max time.Time
	for _, t := range times {
		if t.After(max) {
			max = t
		}
	}
	return max
}
