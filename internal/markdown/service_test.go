package markdown

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

func TestServiceLoad(t *testing.T) {
	svc := newTestService(t, true)

	doc, err := svc.Load(context.Background(), "about.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.FrontMatter.Title != "About Me" {
		t.Fatalf("expected title About Me, got %q", doc.FrontMatter.Title)
	}
	if doc.FrontMatter.Layout != "about-alternative" {
		t.Fatalf("expected about-alternative layout, got %q", doc.FrontMatter.Layout)
	}
	if doc.Section != "" {
		t.Fatalf("expected top-level document to have no section, got %q", doc.Section)
	}
	html := string(doc.BodyHTML)
	if !strings.Contains(html, "<h2") || !strings.Contains(html, "Career</h2>") {
		t.Fatalf("expected rendered heading, got %q", html)
	}
	if strings.Count(html, "<li>") != 3 {
		t.Fatalf("expected three list items, got %q", html)
	}
	if len(doc.Checksum) == 0 {
		t.Fatalf("expected checksum to be populated")
	}
}

func TestServiceLoadMissingBlock(t *testing.T) {
	svc := newTestService(t, true)

	doc, err := svc.Load(context.Background(), "plain.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.FrontMatter.Title != "" || len(doc.FrontMatter.Raw) != 0 {
		t.Fatalf("expected empty metadata, got %#v", doc.FrontMatter)
	}
	if !strings.Contains(string(doc.BodyHTML), "Plain Page") {
		t.Fatalf("expected body to render, got %q", string(doc.BodyHTML))
	}
}

func TestServiceLoadDirectory(t *testing.T) {
	svc := newTestService(t, true)

	report, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	if len(report.Failures) != 0 {
		t.Fatalf("expected no failures, got %#v", report.Failures)
	}
	if len(report.Documents) != 5 {
		t.Fatalf("expected 5 documents, got %d", len(report.Documents))
	}

	sections := map[string]int{}
	var foundPost, foundDraft bool
	for _, doc := range report.Documents {
		sections[doc.Section]++
		if filepath.Ext(doc.FilePath) != ".md" {
			t.Fatalf("expected markdown file, got %s", doc.FilePath)
		}
		if len(doc.Checksum) == 0 {
			t.Fatalf("expected checksum set for %s", doc.FilePath)
		}
		if doc.FilePath == "posts/hello-world.md" {
			foundPost = true
			if !strings.Contains(string(doc.BodyHTML), `<code class="language-rust">`) {
				t.Fatalf("expected rust code fence in %s, got %q", doc.FilePath, string(doc.BodyHTML))
			}
		}
		if doc.FilePath == "notes/draft-note.md" {
			foundDraft = true
			if !doc.FrontMatter.Draft {
				t.Fatalf("expected draft flag on %s", doc.FilePath)
			}
		}
	}

	if sections[""] != 2 || sections["posts"] != 2 || sections["notes"] != 1 {
		t.Fatalf("unexpected section distribution: %#v", sections)
	}
	if !foundPost || !foundDraft {
		t.Fatalf("expected both posts/hello-world.md and notes/draft-note.md, got post=%v draft=%v", foundPost, foundDraft)
	}
}

func TestServiceLoadDirectory_NonRecursiveOverride(t *testing.T) {
	svc := newTestService(t, true)

	no := false
	report, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{
		Recursive: &no,
	})
	if err != nil {
		t.Fatalf("LoadDirectory override: %v", err)
	}

	if len(report.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(report.Documents))
	}
	if report.Documents[0].FilePath != "about.md" || report.Documents[1].FilePath != "plain.md" {
		t.Fatalf("expected top-level documents only, got %s and %s",
			report.Documents[0].FilePath, report.Documents[1].FilePath)
	}
}

func TestServiceLoadDirectoryCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "good.md", "+++\ntitle = \"Good\"\n+++\n\nFine.\n")
	writeTestFile(t, dir, "unterminated.md", "+++\ntitle = \"Broken\"\n\nBody.\n")
	writeTestFile(t, dir, "mistyped.md", "+++\ntitle = \"Broken\"\ndraft = \"yes\"\n+++\n\nBody.\n")

	svc, err := NewService(Config{BasePath: dir}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	report, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	if len(report.Documents) != 1 {
		t.Fatalf("expected the healthy document to load, got %d", len(report.Documents))
	}
	if report.Documents[0].FilePath != "good.md" {
		t.Fatalf("expected good.md, got %s", report.Documents[0].FilePath)
	}
	if len(report.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %#v", report.Failures)
	}

	byPath := map[string]interfaces.LoadFailure{}
	for _, failure := range report.Failures {
		byPath[failure.Path] = failure
	}
	if failure, ok := byPath["unterminated.md"]; !ok || failure.Line != 1 {
		t.Fatalf("expected unterminated.md failure at line 1, got %#v", report.Failures)
	}
	if failure, ok := byPath["mistyped.md"]; !ok || failure.Line != 3 {
		t.Fatalf("expected mistyped.md failure at line 3, got %#v", report.Failures)
	}
}

func TestServiceSchemaValidation(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "titled.md", "+++\ntitle = \"Has Title\"\n+++\n\nFine.\n")
	writeTestFile(t, dir, "untitled.md", "+++\nlayout = \"post\"\n+++\n\nNo title.\n")

	svc, err := NewService(Config{
		BasePath: dir,
		Schema: map[string]any{
			"fields": []any{
				map[string]any{"name": "title", "type": "string", "required": true},
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	report, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	if len(report.Documents) != 1 || report.Documents[0].FilePath != "titled.md" {
		t.Fatalf("expected only titled.md to pass, got %#v", report.Documents)
	}
	if len(report.Failures) != 1 || report.Failures[0].Path != "untitled.md" {
		t.Fatalf("expected untitled.md failure, got %#v", report.Failures)
	}
	if !IsParseError(report.Failures[0].Err) {
		t.Fatalf("expected schema failure to surface as ParseError, got %T", report.Failures[0].Err)
	}
}

func TestServiceRenderSanitizes(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(Config{
		BasePath: dir,
		Parser:   interfaces.ParseOptions{Sanitize: true},
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	html, err := svc.Render(context.Background(), []byte("safe text\n\n<script>alert(1)</script>\n"), interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := string(html)
	if strings.Contains(got, "<script>") {
		t.Fatalf("expected script tags to be removed, got %q", got)
	}
	if !strings.Contains(got, "safe text") {
		t.Fatalf("expected benign content to survive, got %q", got)
	}
}

func newTestService(tb testing.TB, recursive bool) *Service {
	tb.Helper()

	svc, err := NewService(Config{
		BasePath:  filepath.Join("testdata", "site"),
		Pattern:   "*.md",
		Recursive: recursive,
	}, nil)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}

func writeTestFile(tb testing.TB, dir, name, content string) {
	tb.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
}
