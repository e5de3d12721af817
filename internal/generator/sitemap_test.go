package generator

import (
	"strings"
	"testing"
	"time"
)

func TestBuildSitemap(t *testing.T) {
	fallback := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []sitemapEntry{
		{Location: "https://example.com/b", LastMod: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
		{Location: "https://example.com/a"},
		{Location: "https://example.com/b"},
		{Location: "   "},
	}

	out := buildSitemap(entries, fallback)

	if got := strings.Count(out, "<url>"); got != 2 {
		t.Fatalf("expected 2 unique urls, got %d in %s", got, out)
	}
	first := strings.Index(out, "<loc>https://example.com/a</loc>")
	second := strings.Index(out, "<loc>https://example.com/b</loc>")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected sorted locations, got %s", out)
	}
	if !strings.Contains(out, "<lastmod>2024-03-10T12:00:00Z</lastmod>") {
		t.Fatalf("expected fallback lastmod, got %s", out)
	}
	if !strings.Contains(out, "<lastmod>2024-02-01T09:00:00Z</lastmod>") {
		t.Fatalf("expected entry lastmod, got %s", out)
	}
}

func TestBuildSitemapEscapesLocations(t *testing.T) {
	out := buildSitemap([]sitemapEntry{
		{Location: "https://example.com/a?x=1&y=2"},
	}, time.Time{})

	if !strings.Contains(out, "<loc>https://example.com/a?x=1&amp;y=2</loc>") {
		t.Fatalf("expected escaped location, got %s", out)
	}
}

func TestBuildRobots(t *testing.T) {
	withSitemap := buildRobots("https://example.com/", true)
	if !strings.Contains(withSitemap, "User-agent: *") {
		t.Fatalf("expected user-agent line, got %q", withSitemap)
	}
	if !strings.Contains(withSitemap, "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("expected sitemap line, got %q", withSitemap)
	}

	without := buildRobots("https://example.com", false)
	if strings.Contains(without, "Sitemap:") {
		t.Fatalf("expected no sitemap line, got %q", without)
	}

	fallback := buildRobots("", true)
	if !strings.Contains(fallback, "Sitemap: http://localhost/sitemap.xml") {
		t.Fatalf("expected fallback base url, got %q", fallback)
	}
}
