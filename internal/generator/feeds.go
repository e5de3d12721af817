package generator

import (
	"context"
	"fmt"
	"html"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-sitegen/internal/site"
)

const (
	maxFeedItems = 100

	rssFeedPath  = "feed.xml"
	atomFeedPath = "feed.atom.xml"
)

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// buildFeedItems turns the listed pages into feed entries. Listing order is
// already date-descending, so the newest entries survive the cap.
func buildFeedItems(model *site.Site, generatedAt time.Time) []feedItem {
	if model == nil {
		return nil
	}
	listed := model.Listed()
	if len(listed) > maxFeedItems {
		listed = listed[:maxFeedItems]
	}

	items := make([]feedItem, 0, len(listed))
	for _, page := range listed {
		link := model.AbsoluteURL(page.Permalink)

		publishedAt := page.Date
		var updatedAt time.Time
		if doc := page.Document; doc != nil {
			updatedAt = doc.LastModified
			if publishedAt.IsZero() {
				publishedAt = doc.LastModified
			}
		}
		if publishedAt.IsZero() {
			publishedAt = generatedAt
		}
		if updatedAt.IsZero() {
			updatedAt = publishedAt
		}

		items = append(items, feedItem{
			Title:       page.Title,
			Summary:     normalizeWhitespace(page.Summary),
			Link:        link,
			GUID:        link,
			PublishedAt: publishedAt,
			UpdatedAt:   updatedAt,
		})
	}
	return items
}

func (s *service) writeFeeds(
	ctx context.Context,
	writer artifactWriter,
	meta site.Meta,
	items []feedItem,
	generatedAt time.Time,
) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	dirCache := map[string]struct{}{}

	total := 0
	feeds := []struct {
		rel         string
		content     string
		contentType string
		feedType    string
	}{
		{rssFeedPath, buildRSSFeed(meta, items, generatedAt), "application/rss+xml", "rss"},
		{atomFeedPath, buildAtomFeed(meta, items, generatedAt), "application/atom+xml", "atom"},
	}
	for _, feed := range feeds {
		fullPath := joinOutputPath(baseDir, feed.rel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return total, err
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     strings.NewReader(feed.content),
			Size:        int64(len(feed.content)),
			Category:    categoryFeed,
			ContentType: feed.contentType,
			Checksum:    computeHashFromString(feed.content),
			Metadata: map[string]string{
				"feed_type":    feed.feedType,
				"generated_at": generatedAt.UTC().Format(time.RFC3339),
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return total, err
		}
		total++
	}
	return total, nil
}

func buildRSSFeed(meta site.Meta, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(meta.BaseURL)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(feedTitle(meta))))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(feedDescription(meta))))
	if language := strings.TrimSpace(meta.Language); language != "" {
		builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(language)))
	}
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid>%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(meta site.Meta, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(meta.BaseURL)
	feedID := baseLink + "/" + atomFeedPath

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if language := strings.TrimSpace(meta.Language); language != "" {
		builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXML(language)))
	} else {
		builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	}
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(feedTitle(meta))))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXML(feedID)))
	for _, item := range items {
		updated := item.UpdatedAt
		if updated.IsZero() {
			updated = item.PublishedAt
		}
		if updated.IsZero() {
			updated = generatedAt
		}
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedTitle(meta site.Meta) string {
	if title := strings.TrimSpace(meta.Title); title != "" {
		return title
	}
	return baseURLWithFallback(meta.BaseURL)
}

func feedDescription(meta site.Meta) string {
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		return desc
	}
	return "Latest updates"
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}
