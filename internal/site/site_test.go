package site

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

func testDocument(path, section, title string, date time.Time, draft bool, tags ...string) *interfaces.Document {
	return &interfaces.Document{
		FilePath: path,
		Section:  section,
		FrontMatter: interfaces.FrontMatter{
			Title: title,
			Date:  date,
			Draft: draft,
			Tags:  tags,
		},
		Body: []byte("body"),
	}
}

func newTestURLs(t *testing.T) *URLBuilder {
	t.Helper()
	urls, err := NewURLBuilder(URLConfig{BaseURL: "https://example.com"})
	if err != nil {
		t.Fatalf("new url builder: %v", err)
	}
	return urls
}

func buildTestSite(t *testing.T, docs []*interfaces.Document) *Site {
	t.Helper()
	s, err := Build(docs, Config{
		Meta: Meta{Title: "Example Site", BaseURL: "https://example.com", Language: "en"},
		URLs: newTestURLs(t),
	})
	if err != nil {
		t.Fatalf("build site: %v", err)
	}
	return s
}

func TestBuildOrdersListingByDate(t *testing.T) {
	feb := time.Date(2026, 2, 18, 8, 0, 0, 0, time.UTC)
	nov := time.Date(2025, 11, 2, 10, 0, 0, 0, time.UTC)

	s := buildTestSite(t, []*interfaces.Document{
		testDocument("posts/older-entry.md", "posts", "Older Entry", nov, false),
		testDocument("posts/hello-world.md", "posts", "Hello World", feb, false),
		testDocument("posts/same-day-b.md", "posts", "Same Day B", feb, false),
		testDocument("about.md", "", "About Me", time.Time{}, false),
	})

	listed := s.Listed()
	wantPaths := []string{
		"posts/hello-world.md",
		"posts/same-day-b.md",
		"posts/older-entry.md",
		"about.md",
	}
	if len(listed) != len(wantPaths) {
		t.Fatalf("expected %d listed pages, got %d", len(wantPaths), len(listed))
	}
	for i, page := range listed {
		if page.Document.FilePath != wantPaths[i] {
			t.Fatalf("position %d: expected %q, got %q", i, wantPaths[i], page.Document.FilePath)
		}
	}
}

func TestBuildExcludesDraftsFromListings(t *testing.T) {
	date := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	s := buildTestSite(t, []*interfaces.Document{
		testDocument("notes/draft-note.md", "notes", "Draft Note", date, true, "solana"),
		testDocument("notes/published.md", "notes", "Published", date, false, "solana"),
	})

	for _, page := range s.Listed() {
		if page.Draft {
			t.Fatalf("draft leaked into listing: %+v", page)
		}
	}
	for _, section := range s.Sections() {
		for _, page := range section.Pages {
			if page.Draft {
				t.Fatalf("draft leaked into section %q", section.Name)
			}
		}
	}
	for _, index := range s.Tags() {
		for _, page := range index.Pages {
			if page.Draft {
				t.Fatalf("draft leaked into tag %q", index.Slug)
			}
		}
	}

	if s.Len() != 2 {
		t.Fatalf("drafts must stay renderable, expected 2 pages got %d", s.Len())
	}
	draft, ok := s.Get("notes/draft-note.md")
	if !ok {
		t.Fatalf("draft should resolve by path")
	}
	if !draft.Draft {
		t.Fatalf("expected draft flag on %+v", draft)
	}
}

func TestBuildTagIndexes(t *testing.T) {
	feb := time.Date(2026, 2, 18, 8, 0, 0, 0, time.UTC)
	s := buildTestSite(t, []*interfaces.Document{
		testDocument("posts/hello-world.md", "posts", "Hello World", feb, false, "solana", "fuzzer"),
		testDocument("posts/older-entry.md", "posts", "Older Entry", feb.AddDate(0, -3, 0), false, "solana"),
	})

	indexes := s.Tags()
	if len(indexes) != 2 {
		t.Fatalf("expected 2 tag indexes, got %d", len(indexes))
	}
	if indexes[0].Slug != "fuzzer" || indexes[1].Slug != "solana" {
		t.Fatalf("expected slug-ordered indexes, got %q and %q", indexes[0].Slug, indexes[1].Slug)
	}

	solana := indexes[1]
	if len(solana.Pages) != 2 {
		t.Fatalf("expected 2 pages tagged solana, got %d", len(solana.Pages))
	}
	if solana.Pages[0].Document.FilePath != "posts/hello-world.md" {
		t.Fatalf("tag pages must follow listing order, got %q first", solana.Pages[0].Document.FilePath)
	}
	if solana.Permalink != "/tags/solana" {
		t.Fatalf("unexpected tag permalink %q", solana.Permalink)
	}

	fuzzer := indexes[0]
	if len(fuzzer.Pages) != 1 || fuzzer.Pages[0].Document.FilePath != "posts/hello-world.md" {
		t.Fatalf("expected hello-world in fuzzer index, got %+v", fuzzer.Pages)
	}
}

func TestBuildSections(t *testing.T) {
	feb := time.Date(2026, 2, 18, 8, 0, 0, 0, time.UTC)
	s := buildTestSite(t, []*interfaces.Document{
		testDocument("posts/hello-world.md", "posts", "Hello World", feb, false),
		testDocument("notes/published.md", "notes", "Published", feb, false),
		testDocument("about.md", "", "About Me", time.Time{}, false),
	})

	sections := s.Sections()
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Name != "notes" || sections[1].Name != "posts" {
		t.Fatalf("expected name-ordered sections, got %q and %q", sections[0].Name, sections[1].Name)
	}
	if sections[1].Permalink != "/posts" {
		t.Fatalf("unexpected section permalink %q", sections[1].Permalink)
	}
}

func TestBuildPermalinks(t *testing.T) {
	feb := time.Date(2026, 2, 18, 8, 0, 0, 0, time.UTC)
	s := buildTestSite(t, []*interfaces.Document{
		testDocument("posts/hello-world.md", "posts", "Hello World", feb, false),
		testDocument("about.md", "", "About Me", time.Time{}, false),
	})

	post, ok := s.Get("posts/hello-world.md")
	if !ok {
		t.Fatalf("missing post page")
	}
	if post.Permalink != "/posts/hello-world" {
		t.Fatalf("unexpected post permalink %q", post.Permalink)
	}
	if post.OutputPath != "posts/hello-world/index.html" {
		t.Fatalf("unexpected output path %q", post.OutputPath)
	}

	about, ok := s.Get("about.md")
	if !ok {
		t.Fatalf("missing about page")
	}
	if about.Permalink != "/about-me" {
		t.Fatalf("root documents should skip the section segment, got %q", about.Permalink)
	}
	if about.OutputPath != "about-me/index.html" {
		t.Fatalf("unexpected output path %q", about.OutputPath)
	}

	if got := s.AbsoluteURL(post.Permalink); got != "https://example.com/posts/hello-world" {
		t.Fatalf("unexpected absolute url %q", got)
	}
	if got := s.AbsoluteURL("/"); got != "https://example.com/" {
		t.Fatalf("unexpected root url %q", got)
	}
}

func TestBuildResolvesSlugCollisions(t *testing.T) {
	feb := time.Date(2026, 2, 18, 8, 0, 0, 0, time.UTC)
	s := buildTestSite(t, []*interfaces.Document{
		testDocument("posts/b.md", "posts", "Hello", feb, false),
		testDocument("posts/a.md", "posts", "Hello", feb, false),
	})

	first, _ := s.Get("posts/a.md")
	second, _ := s.Get("posts/b.md")
	if first.Permalink != "/posts/hello" {
		t.Fatalf("path-first document should keep the plain slug, got %q", first.Permalink)
	}
	if second.Permalink != "/posts/hello-2" {
		t.Fatalf("expected collision suffix, got %q", second.Permalink)
	}
}

func TestBuildFallbackSlugAndTitle(t *testing.T) {
	s := buildTestSite(t, []*interfaces.Document{
		testDocument("posts/plain-note.md", "posts", "", time.Time{}, false),
	})

	page, ok := s.Get("posts/plain-note.md")
	if !ok {
		t.Fatalf("missing page")
	}
	if page.Title != "plain-note" {
		t.Fatalf("expected file-derived title, got %q", page.Title)
	}
	if page.Permalink != "/posts/plain-note" {
		t.Fatalf("expected file-derived slug, got %q", page.Permalink)
	}
}

func TestBuildRequiresURLBuilder(t *testing.T) {
	if _, err := Build(nil, Config{}); !errors.Is(err, ErrURLBuilderRequired) {
		t.Fatalf("expected ErrURLBuilderRequired, got %v", err)
	}
}

func TestSiteAccessorsCopy(t *testing.T) {
	feb := time.Date(2026, 2, 18, 8, 0, 0, 0, time.UTC)
	s := buildTestSite(t, []*interfaces.Document{
		testDocument("posts/hello-world.md", "posts", "Hello World", feb, false),
		testDocument("posts/older-entry.md", "posts", "Older Entry", feb.AddDate(0, -3, 0), false),
	})

	listed := s.Listed()
	listed[0], listed[1] = listed[1], listed[0]

	again := s.Listed()
	if again[0].Document.FilePath != "posts/hello-world.md" {
		t.Fatalf("mutating a returned slice must not reorder the site")
	}
}
