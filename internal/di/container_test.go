package di

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-sitegen/internal/catalog"
	"github.com/goliatone/go-sitegen/internal/generator"
	"github.com/goliatone/go-sitegen/internal/runtimeconfig"
	"github.com/goliatone/go-sitegen/internal/watch"
)

// scaffoldSite builds a one-page site in a temp dir and chdirs into it, since
// the module treats content, layout, and output paths as site-root relative.
func scaffoldSite(t *testing.T) runtimeconfig.Config {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)

	if err := os.MkdirAll(filepath.Join(root, "content", "posts"), 0o755); err != nil {
		t.Fatalf("mkdir content: %v", err)
	}
	page := "+++\ntitle = \"Hello\"\ndate = 2026-02-18\n+++\n\n## Greetings\n"
	if err := os.WriteFile(filepath.Join(root, "content", "posts", "hello.md"), []byte(page), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(root, "layouts"), 0o755); err != nil {
		t.Fatalf("mkdir layouts: %v", err)
	}
	layout := "<!DOCTYPE html><title>{{ .Page.Title }}</title>{{ .Page.Content }}"
	if err := os.WriteFile(filepath.Join(root, "layouts", "default.html"), []byte(layout), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}

	return runtimeconfig.DefaultConfig()
}

func TestNewContainerDefaults(t *testing.T) {
	cfg := scaffoldSite(t)

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if container.MarkdownService() == nil {
		t.Fatal("expected markdown service")
	}
	if container.URLBuilder() == nil {
		t.Fatal("expected url builder")
	}
	if _, err := container.GeneratorService().Build(context.Background(), generator.BuildOptions{}); !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected disabled generator, got %v", err)
	}
	if _, err := container.CatalogService().Latest(context.Background()); !errors.Is(err, catalog.ErrServiceDisabled) {
		t.Fatalf("expected disabled catalog, got %v", err)
	}
	if err := container.WatchService().Watch(context.Background(), nil); !errors.Is(err, watch.ErrServiceDisabled) {
		t.Fatalf("expected disabled watcher, got %v", err)
	}
	if container.ServerService() != nil {
		t.Fatal("expected no preview server by default")
	}
	if container.SiteCommands() != nil {
		t.Fatal("expected no command handlers by default")
	}
}

func TestNewContainerWithGeneratorEnabled(t *testing.T) {
	cfg := scaffoldSite(t)
	cfg.Features.Generator = true
	cfg.Features.Catalog = true
	cfg.Commands.Enabled = true

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if container.LayoutService() == nil {
		t.Fatal("expected layout service")
	}
	if container.TemplateRenderer() == nil {
		t.Fatal("expected template renderer")
	}
	if container.StorageProvider() == nil {
		t.Fatal("expected storage provider")
	}
	if container.SiteCommands() == nil || container.SiteCommands().Build == nil {
		t.Fatal("expected site command handlers")
	}

	result, err := container.GeneratorService().Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 1 {
		t.Fatalf("expected one page built, got %d", result.PagesBuilt)
	}
	if _, err := os.Stat(filepath.Join(cfg.Generator.OutputDir, "posts", "hello", "index.html")); err != nil {
		t.Fatalf("expected rendered artifact: %v", err)
	}

	record, err := container.CatalogService().Record(context.Background(), result)
	if err != nil {
		t.Fatalf("record build: %v", err)
	}
	if record.PagesBuilt != 1 {
		t.Fatalf("expected recorded page count 1, got %d", record.PagesBuilt)
	}
}

func TestNewContainerSqliteCatalog(t *testing.T) {
	cfg := scaffoldSite(t)
	cfg.Features.Generator = true
	cfg.Features.Catalog = true
	cfg.Catalog.Driver = "sqlite"
	cfg.Catalog.DSN = "file::memory:?cache=shared"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if _, err := container.CatalogService().Latest(context.Background()); !errors.Is(err, catalog.ErrNoBuilds) {
		t.Fatalf("expected empty catalog, got %v", err)
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = ""

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrContentDirRequired) {
		t.Fatalf("expected config validation error, got %v", err)
	}
}

func TestNewContainerCatalogOverride(t *testing.T) {
	cfg := scaffoldSite(t)
	cfg.Features.Generator = true
	cfg.Features.Catalog = true

	custom := catalog.NewService(catalog.Config{OutputDir: cfg.Generator.OutputDir}, catalog.NewMemoryRepository())
	container, err := NewContainer(cfg, WithCatalogService(custom))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if container.CatalogService() != custom {
		t.Fatal("expected injected catalog service")
	}
}
