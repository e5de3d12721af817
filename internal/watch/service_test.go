package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, svc Service, rebuilds chan []string) (context.CancelFunc, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, func(_ context.Context, changed []string) error {
			rebuilds <- changed
			return nil
		})
	}()

	// Give the watcher time to register the roots before mutating them.
	time.Sleep(150 * time.Millisecond)
	return cancel, done
}

func waitForPath(t *testing.T, rebuilds chan []string, want string) {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case changed := <-rebuilds:
			for _, path := range changed {
				if path == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("expected a rebuild containing %s", want)
		}
	}
}

func TestWatchRebuildsOnChange(t *testing.T) {
	content := t.TempDir()
	svc := NewService(Config{
		Roots:    []string{content},
		Debounce: 25 * time.Millisecond,
	}, Dependencies{})

	rebuilds := make(chan []string, 8)
	cancel, done := startWatcher(t, svc, rebuilds)
	defer cancel()

	target := filepath.Join(content, "hello.md")
	if err := os.WriteFile(target, []byte("+++\ntitle = \"Hello\"\n+++\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	waitForPath(t, rebuilds, target)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestWatchPicksUpNewDirectories(t *testing.T) {
	content := t.TempDir()
	svc := NewService(Config{
		Roots:    []string{content},
		Debounce: 25 * time.Millisecond,
	}, Dependencies{})

	rebuilds := make(chan []string, 8)
	cancel, done := startWatcher(t, svc, rebuilds)
	defer cancel()

	section := filepath.Join(content, "posts")
	if err := os.Mkdir(section, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// Let the watcher pick up the new directory before writing into it.
	time.Sleep(150 * time.Millisecond)

	target := filepath.Join(section, "first.md")
	if err := os.WriteFile(target, []byte("+++\ntitle = \"First\"\n+++\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	waitForPath(t, rebuilds, target)

	cancel()
	<-done
}

func TestWatchValidation(t *testing.T) {
	svc := NewService(Config{Roots: []string{t.TempDir()}}, Dependencies{})

	if err := svc.Watch(context.Background(), nil); !errors.Is(err, errRebuildRequired) {
		t.Fatalf("expected errRebuildRequired, got %v", err)
	}

	empty := NewService(Config{}, Dependencies{})
	if err := empty.Watch(context.Background(), func(context.Context, []string) error { return nil }); !errors.Is(err, errRootsRequired) {
		t.Fatalf("expected errRootsRequired, got %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Watch(cancelled, func(context.Context, []string) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled before start, got %v", err)
	}
}

func TestWatchIgnoreRules(t *testing.T) {
	svc := NewService(Config{
		Roots:  []string{"content"},
		Ignore: []string{"dist"},
	}, Dependencies{}).(*service)

	cases := []struct {
		path string
		want bool
	}{
		{"dist/index.html", true},
		{"dist", true},
		{"distribution/notes.md", false},
		{".git/config", true},
		{"content/.hello.md.swp", true},
		{"content/posts/first.md", false},
	}
	for _, tc := range cases {
		if got := svc.ignored(tc.path); got != tc.want {
			t.Fatalf("ignored(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestDisabledWatchService(t *testing.T) {
	svc := NewDisabledService()
	err := svc.Watch(context.Background(), func(context.Context, []string) error { return nil })
	if !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}
