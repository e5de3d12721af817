package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-sitegen/internal/adapters/storage"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

func TestFilesystemStorageWriteAndRead(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemStorage(root, "dist")

	if _, err := provider.Exec(ctx, "generator.ensure_dir", "posts/hello-world"); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	content := []byte("<html>hello</html>")
	if _, err := provider.Exec(ctx, "generator.write", "posts/hello-world/index.html", bytes.NewReader(content)); err != nil {
		t.Fatalf("write: %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "posts", "hello-world", "index.html"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.Equal(onDisk, content) {
		t.Fatalf("artifact mismatch: %q", onDisk)
	}

	rows, err := provider.Query(ctx, "generator.read", "posts/hello-world/index.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil || !rows.Next() {
		t.Fatalf("expected one row")
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("read mismatch: %q", data)
	}
	if rows.Next() {
		t.Fatalf("expected single-row cursor")
	}
	if err := rows.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestFilesystemStorageTrimsBasePrefix(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemStorage(root, "dist")

	if _, err := provider.Exec(ctx, "generator.write", "dist/index.html", strings.NewReader("home")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "index.html")); err != nil {
		t.Fatalf("expected base prefix to be trimmed: %v", err)
	}
}

func TestFilesystemStorageRemove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemStorage(root, "")

	if _, err := provider.Exec(ctx, "generator.write", "stale/index.html", strings.NewReader("old")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := provider.Exec(ctx, "generator.remove", "stale"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "stale")); !os.IsNotExist(err) {
		t.Fatalf("expected stale dir to be gone, got %v", err)
	}

	// Removing a missing path stays quiet.
	if _, err := provider.Exec(ctx, "generator.remove", "stale"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestFilesystemStorageMissingReadReturnsNoRows(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewFilesystemStorage(t.TempDir(), "")

	rows, err := provider.Query(ctx, "generator.read", "absent.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows != nil {
		t.Fatalf("expected nil rows for missing file")
	}
}

func TestFilesystemStorageTransaction(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemStorage(root, "")

	err := provider.Transaction(ctx, func(tx interfaces.Transaction) error {
		if _, err := tx.Exec(ctx, "generator.write", "tx/index.html", strings.NewReader("tx")); err != nil {
			return err
		}
		if err := tx.Transaction(ctx, func(interfaces.Transaction) error { return nil }); err == nil {
			t.Fatalf("expected nested transaction error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "tx", "index.html")); err != nil {
		t.Fatalf("expected transactional write to land: %v", err)
	}
}

func TestNoOpProvider(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewNoOpProvider()

	if _, err := provider.Exec(ctx, "generator.write", "ignored.html", strings.NewReader("x")); err != nil {
		t.Fatalf("noop exec: %v", err)
	}
	rows, err := provider.Query(ctx, "generator.read", "ignored.html")
	if err != nil || rows != nil {
		t.Fatalf("noop query: rows=%v err=%v", rows, err)
	}
	if err := provider.Transaction(ctx, func(tx interfaces.Transaction) error {
		_, err := tx.Exec(ctx, "generator.write", "ignored.html", strings.NewReader("x"))
		return err
	}); err != nil {
		t.Fatalf("noop transaction: %v", err)
	}
}
