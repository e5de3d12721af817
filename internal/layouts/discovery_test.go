package layouts

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDiscoverSeeds(t *testing.T) {
	seeds, err := DiscoverSeeds(filepath.Join("testdata", "layouts"))
	if err != nil {
		t.Fatalf("discover seeds: %v", err)
	}

	wantNames := []string{"_head", "about-alternative", "default", "list", "post", "tag"}
	if len(seeds) != len(wantNames) {
		t.Fatalf("expected %d seeds, got %d: %+v", len(wantNames), len(seeds), seeds)
	}
	for i, seed := range seeds {
		if seed.Name != wantNames[i] {
			t.Fatalf("seed %d: expected name %q, got %q", i, wantNames[i], seed.Name)
		}
		if seed.Template != seed.Name+".html" {
			t.Fatalf("seed %d: expected template %q, got %q", i, seed.Name+".html", seed.Template)
		}
		if seed.Set != "" {
			t.Fatalf("seed %d: expected empty set for root file, got %q", i, seed.Set)
		}
	}

	if !seeds[0].Partial {
		t.Fatalf("expected underscore prefix to mark a partial: %+v", seeds[0])
	}
	for _, seed := range seeds[1:] {
		if seed.Partial {
			t.Fatalf("unexpected partial %+v", seed)
		}
	}
}

func TestDiscoverSeedsSkipsNonTemplates(t *testing.T) {
	seeds, err := DiscoverSeeds(filepath.Join("testdata", "layouts"))
	if err != nil {
		t.Fatalf("discover seeds: %v", err)
	}
	for _, seed := range seeds {
		if seed.Path == "assets/site.css" {
			t.Fatalf("asset files must not become seeds: %+v", seed)
		}
	}
}

func TestDiscoverSeedsMissingDirectory(t *testing.T) {
	if _, err := DiscoverSeeds(filepath.Join("testdata", "does-not-exist")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
	if _, err := DiscoverSeeds("   "); err == nil {
		t.Fatalf("expected error for blank directory")
	}
}

func TestBootstrapSeedsLayouts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	seeds, err := DiscoverSeeds(filepath.Join("testdata", "layouts"))
	if err != nil {
		t.Fatalf("discover seeds: %v", err)
	}

	if err := Bootstrap(ctx, svc, seeds); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	// Idempotent
	if err := Bootstrap(ctx, svc, seeds); err != nil {
		t.Fatalf("bootstrap second run: %v", err)
	}

	layouts, err := svc.ListLayouts(ctx)
	if err != nil {
		t.Fatalf("list layouts: %v", err)
	}
	if len(layouts) != len(seeds) {
		t.Fatalf("expected %d layouts, got %d", len(seeds), len(layouts))
	}

	layout, err := svc.Resolve(ctx, "about-alternative")
	if err != nil {
		t.Fatalf("resolve discovered layout: %v", err)
	}
	if layout.Template != "about-alternative.html" {
		t.Fatalf("unexpected template %q", layout.Template)
	}

	fallback, err := svc.Resolve(ctx, "")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if fallback.Name != "default" {
		t.Fatalf("expected default layout, got %q", fallback.Name)
	}
}
