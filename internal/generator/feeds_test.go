package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-sitegen/internal/site"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

func feedFixtureModel(t *testing.T) *site.Site {
	t.Helper()
	urls, err := site.NewURLBuilder(site.URLConfig{BaseURL: "https://example.com"})
	if err != nil {
		t.Fatalf("url builder: %v", err)
	}

	docs := []*interfaces.Document{
		{
			FilePath: "posts/first.md",
			Section:  "posts",
			FrontMatter: interfaces.FrontMatter{
				Title:   "First Post",
				Summary: "  spaced   out  summary ",
				Date:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			},
			LastModified: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			FilePath: "posts/hidden.md",
			Section:  "posts",
			FrontMatter: interfaces.FrontMatter{
				Title: "Hidden",
				Date:  time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
				Draft: true,
			},
		},
	}

	model, err := site.Build(docs, site.Config{
		Meta: site.Meta{
			Title:       "News & Views",
			Description: "Wire desk",
			Language:    "en",
			BaseURL:     "https://example.com",
		},
		URLs: urls,
	})
	if err != nil {
		t.Fatalf("site build: %v", err)
	}
	return model
}

func TestBuildFeedItems(t *testing.T) {
	generatedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	items := buildFeedItems(feedFixtureModel(t), generatedAt)

	if len(items) != 1 {
		t.Fatalf("expected drafts excluded, got %d items", len(items))
	}
	item := items[0]
	if item.Title != "First Post" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.Link != "https://example.com/posts/first-post" {
		t.Fatalf("unexpected link %q", item.Link)
	}
	if item.GUID != item.Link {
		t.Fatalf("expected guid to mirror link, got %q", item.GUID)
	}
	if !item.PublishedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published time %v", item.PublishedAt)
	}
	if !item.UpdatedAt.Equal(time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected updated time %v", item.UpdatedAt)
	}
	if item.Summary != "spaced out summary" {
		t.Fatalf("expected collapsed whitespace, got %q", item.Summary)
	}
}

func TestBuildRSSFeed(t *testing.T) {
	generatedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	meta := site.Meta{
		Title:       "News & Views",
		Description: "Wire <desk>",
		Language:    "en",
		BaseURL:     "https://example.com",
	}
	items := []feedItem{{
		Title:       "Ampersand & Angle <Brackets>",
		Summary:     "A & B",
		Link:        "https://example.com/posts/a",
		GUID:        "https://example.com/posts/a",
		PublishedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}}

	feed := buildRSSFeed(meta, items, generatedAt)

	for _, want := range []string{
		`<rss version="2.0">`,
		"<title>News &amp; Views</title>",
		"<description>Wire &lt;desk&gt;</description>",
		"<language>en</language>",
		"<lastBuildDate>Sun, 10 Mar 2024 12:00:00 +0000</lastBuildDate>",
		"<title>Ampersand &amp; Angle &lt;Brackets&gt;</title>",
		"<pubDate>Fri, 01 Mar 2024 10:00:00 +0000</pubDate>",
		"<description>A &amp; B</description>",
	} {
		if !strings.Contains(feed, want) {
			t.Fatalf("expected %q in feed, got %s", want, feed)
		}
	}
}

func TestBuildAtomFeed(t *testing.T) {
	generatedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	meta := site.Meta{Title: "News", Language: "en", BaseURL: "https://example.com"}
	items := []feedItem{{
		Title:       "First Post",
		Link:        "https://example.com/posts/first-post",
		GUID:        "https://example.com/posts/first-post",
		PublishedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}}

	feed := buildAtomFeed(meta, items, generatedAt)

	for _, want := range []string{
		`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="en">`,
		"<id>https://example.com/feed.atom.xml</id>",
		"<updated>2024-03-10T12:00:00Z</updated>",
		`<link rel="self" href="https://example.com/feed.atom.xml" />`,
		"<id>https://example.com/posts/first-post</id>",
		"<published>2024-03-01T10:00:00Z</published>",
		// UpdatedAt falls back to the publish time.
		"<updated>2024-03-01T10:00:00Z</updated>",
	} {
		if !strings.Contains(feed, want) {
			t.Fatalf("expected %q in feed, got %s", want, feed)
		}
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	cases := map[string]string{
		"  a \n\t b  ": "a b",
		"plain":        "plain",
		"\n \t":        "",
		"":             "",
	}
	for input, want := range cases {
		if got := normalizeWhitespace(input); got != want {
			t.Fatalf("normalizeWhitespace(%q) = %q, want %q", input, got, want)
		}
	}
}
