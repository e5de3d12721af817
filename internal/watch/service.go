package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-sitegen/internal/logging"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the watch feature is disabled.
	ErrServiceDisabled = errors.New("watch: service disabled")
	errRootsRequired   = errors.New("watch: at least one root directory is required")
	errRebuildRequired = errors.New("watch: rebuild callback is required")
)

// DefaultDebounce groups bursts of filesystem events into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Rebuild runs after the debounce window closes. It receives the distinct
// paths that changed since the previous invocation.
type Rebuild func(ctx context.Context, changed []string) error

// Service watches source trees and triggers rebuilds on change.
type Service interface {
	// Watch blocks until ctx is cancelled. A shutdown through ctx returns nil.
	Watch(ctx context.Context, rebuild Rebuild) error
}

// Config captures watcher behaviour.
type Config struct {
	// Roots lists the directories watched recursively, typically the content
	// and layouts trees.
	Roots []string
	// Ignore lists paths excluded from events, typically the output
	// directory. Hidden files and directories are always excluded.
	Ignore   []string
	Debounce time.Duration
}

// Dependencies lists collaborators for the watch service.
type Dependencies struct {
	Logger interfaces.Logger
}

// NewService wires a filesystem watcher with the provided configuration.
func NewService(cfg Config, deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	ignore := make([]string, 0, len(cfg.Ignore))
	for _, path := range cfg.Ignore {
		if strings.TrimSpace(path) == "" {
			continue
		}
		ignore = append(ignore, filepath.Clean(path))
	}
	return &service{
		cfg:    cfg,
		ignore: ignore,
		logger: logger,
	}
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	ignore []string
	logger interfaces.Logger
}

type disabledService struct{}

func (s *service) Watch(ctx context.Context, rebuild Rebuild) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if rebuild == nil {
		return errRebuildRequired
	}
	roots := s.roots()
	if len(roots) == 0 {
		return errRootsRequired
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range roots {
		s.addTree(watcher, root)
	}

	debounce := time.NewTimer(s.cfg.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	pending := map[string]struct{}{}

	s.logger.Info("watch.start",
		"roots", strings.Join(roots, string(os.PathListSeparator)),
		"debounce_ms", s.cfg.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watch.stop")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantOp(event) || s.ignored(event.Name) {
				continue
			}
			s.logger.Debug("watch.event", "path", event.Name, "op", event.Op.String())

			// New subdirectories are not covered by the parent watch.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				s.addTree(watcher, event.Name)
			}

			pending[event.Name] = struct{}{}
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(s.cfg.Debounce)

		case <-debounce.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = map[string]struct{}{}

			s.logger.Info("watch.rebuild", "changed", len(changed))
			if err := rebuild(ctx, changed); err != nil {
				s.logger.Error("watch.rebuild.failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch.error", "error", err)
		}
	}
}

func (s *service) roots() []string {
	roots := make([]string, 0, len(s.cfg.Roots))
	for _, root := range s.cfg.Roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		roots = append(roots, filepath.Clean(root))
	}
	return roots
}

// addTree registers root and every directory below it. Missing roots log a
// warning and are skipped so a site without a layouts directory still works.
func (s *service) addTree(watcher *fsnotify.Watcher, root string) {
	info, err := os.Stat(root)
	if err != nil {
		s.logger.Warn("watch.root.missing", "path", root)
		return
	}
	if !info.IsDir() {
		if err := watcher.Add(root); err != nil {
			s.logger.Warn("watch.add.failed", "path", root, "error", err)
		}
		return
	}

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("watch.walk.failed", "path", path, "error", err)
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && s.ignored(path) {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			s.logger.Warn("watch.add.failed", "path", path, "error", err)
		}
		return nil
	})
	if walkErr != nil {
		s.logger.Warn("watch.walk.failed", "path", root, "error", walkErr)
	}
}

func (s *service) ignored(path string) bool {
	if hasHiddenSegment(path) {
		return true
	}
	cleaned := filepath.Clean(path)
	for _, ignore := range s.ignore {
		if cleaned == ignore || strings.HasPrefix(cleaned, ignore+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func relevantOp(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}

func hasHiddenSegment(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if segment == "." || segment == ".." || segment == "" {
			continue
		}
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (disabledService) Watch(context.Context, Rebuild) error {
	return ErrServiceDisabled
}
