package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sitegen/internal/generator"
	"github.com/goliatone/go-sitegen/internal/identity"
)

func TestServiceRecordsBuildOutcome(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	repo := NewMemoryRepository()
	svc := NewService(Config{OutputDir: "dist"}, repo, WithNow(func() time.Time { return now }))

	result := &generator.BuildResult{
		Documents:     4,
		PagesBuilt:    7,
		PagesSkipped:  2,
		AssetsBuilt:   1,
		AssetsSkipped: 3,
		Duration:      1500 * time.Millisecond,
		Rendered: []generator.RenderedPage{
			{Route: "/posts/hello-world", Checksum: "abc123"},
			{Route: "/", Checksum: "def456"},
		},
		Errors: []error{errors.New("write index.html: disk full")},
	}

	record, err := svc.Record(ctx, result)
	if err != nil {
		t.Fatalf("record build: %v", err)
	}

	wantID := identity.BuildUUID("dist", now.Format(time.RFC3339Nano))
	if record.ID != wantID {
		t.Fatalf("expected deterministic id %s, got %s", wantID, record.ID)
	}
	if record.OutputDir != "dist" {
		t.Fatalf("expected output dir %q, got %q", "dist", record.OutputDir)
	}
	if record.Documents != 4 || record.PagesBuilt != 7 || record.PagesSkipped != 2 {
		t.Fatalf("page counters not carried over: %+v", record)
	}
	if record.AssetsBuilt != 1 || record.AssetsSkipped != 3 {
		t.Fatalf("asset counters not carried over: %+v", record)
	}
	if record.ErrorCount != 1 {
		t.Fatalf("expected 1 error, got %d", record.ErrorCount)
	}
	if record.Succeeded() {
		t.Fatalf("build with errors should not report success")
	}
	if record.ManifestHash == "" {
		t.Fatalf("expected a manifest hash for rendered pages")
	}
	if record.Duration != 1500*time.Millisecond {
		t.Fatalf("expected duration 1.5s, got %s", record.Duration)
	}
	if !record.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %s, got %s", now, record.CreatedAt)
	}
	if !record.StartedAt.Equal(now.Add(-1500 * time.Millisecond)) {
		t.Fatalf("expected started at %s, got %s", now.Add(-1500*time.Millisecond), record.StartedAt)
	}

	latest, err := svc.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != record.ID {
		t.Fatalf("expected latest record %s, got %s", record.ID, latest.ID)
	}
}

func TestServiceRecordsDryRun(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	svc := NewService(Config{OutputDir: "dist"}, NewMemoryRepository(), WithNow(func() time.Time { return now }))

	record, err := svc.Record(ctx, &generator.BuildResult{
		Documents:  4,
		PagesBuilt: 7,
		DryRun:     true,
	})
	if err != nil {
		t.Fatalf("record dry run: %v", err)
	}
	if !record.DryRun {
		t.Fatalf("expected dry run flag on record")
	}
	if record.ManifestHash != "" {
		t.Fatalf("expected empty manifest hash without rendered pages, got %q", record.ManifestHash)
	}
	if !record.Succeeded() {
		t.Fatalf("clean dry run should report success")
	}
}

func TestServiceHistoryRespectsLimits(t *testing.T) {
	ctx := context.Background()

	current := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService(Config{OutputDir: "dist", HistoryLimit: 2}, NewMemoryRepository(), WithNow(func() time.Time {
		current = current.Add(time.Minute)
		return current
	}))

	for n := 1; n <= 3; n++ {
		if _, err := svc.Record(ctx, &generator.BuildResult{Documents: 4, PagesBuilt: n}); err != nil {
			t.Fatalf("record build %d: %v", n, err)
		}
	}

	history, err := svc.History(ctx, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected default limit of 2, got %d records", len(history))
	}
	if history[0].PagesBuilt != 3 || history[1].PagesBuilt != 2 {
		t.Fatalf("expected newest-first history, got %d then %d", history[0].PagesBuilt, history[1].PagesBuilt)
	}

	full, err := svc.History(ctx, 10)
	if err != nil {
		t.Fatalf("full history: %v", err)
	}
	if len(full) != 3 {
		t.Fatalf("expected 3 records with explicit limit, got %d", len(full))
	}
}

func TestServiceLatestEmpty(t *testing.T) {
	svc := NewService(Config{OutputDir: "dist"}, NewMemoryRepository())
	if _, err := svc.Latest(context.Background()); !errors.Is(err, ErrNoBuilds) {
		t.Fatalf("expected ErrNoBuilds, got %v", err)
	}
}

func TestServiceRecordValidation(t *testing.T) {
	ctx := context.Background()

	svc := NewService(Config{OutputDir: "dist"}, NewMemoryRepository())
	if _, err := svc.Record(ctx, nil); !errors.Is(err, ErrResultRequired) {
		t.Fatalf("expected ErrResultRequired, got %v", err)
	}

	bare := NewService(Config{OutputDir: "dist"}, nil)
	if _, err := bare.Record(ctx, &generator.BuildResult{}); !errors.Is(err, ErrRepositoryRequired) {
		t.Fatalf("expected ErrRepositoryRequired, got %v", err)
	}
	if _, err := bare.Latest(ctx); !errors.Is(err, ErrRepositoryRequired) {
		t.Fatalf("expected ErrRepositoryRequired from latest, got %v", err)
	}
	if _, err := bare.History(ctx, 1); !errors.Is(err, ErrRepositoryRequired) {
		t.Fatalf("expected ErrRepositoryRequired from history, got %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Record(cancelled, &generator.BuildResult{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderedHashIgnoresOrder(t *testing.T) {
	forward := renderedHash([]generator.RenderedPage{
		{Route: "/a", Checksum: "one"},
		{Route: "/b", Checksum: "two"},
	})
	reversed := renderedHash([]generator.RenderedPage{
		{Route: "/b", Checksum: "two"},
		{Route: "/a", Checksum: "one"},
	})
	if forward == "" {
		t.Fatalf("expected a hash for a non-empty set")
	}
	if forward != reversed {
		t.Fatalf("hash should not depend on render order: %q vs %q", forward, reversed)
	}

	changed := renderedHash([]generator.RenderedPage{
		{Route: "/a", Checksum: "one"},
		{Route: "/b", Checksum: "three"},
	})
	if changed == forward {
		t.Fatalf("hash should change when a checksum changes")
	}

	if renderedHash(nil) != "" {
		t.Fatalf("expected empty hash for empty set")
	}
}

func TestDisabledCatalogService(t *testing.T) {
	ctx := context.Background()
	svc := NewDisabledService()

	if _, err := svc.Record(ctx, &generator.BuildResult{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled from record, got %v", err)
	}
	if _, err := svc.Latest(ctx); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled from latest, got %v", err)
	}
	if _, err := svc.History(ctx, 5); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled from history, got %v", err)
	}
}
