package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-sitegen/internal/generator"
	"github.com/goliatone/go-sitegen/internal/identity"
	"github.com/goliatone/go-sitegen/internal/logging"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the catalog feature is disabled.
	ErrServiceDisabled    = errors.New("catalog: service disabled")
	ErrRepositoryRequired = errors.New("catalog: repository required")
	ErrResultRequired     = errors.New("catalog: build result required")
)

// DefaultHistoryLimit bounds History queries that do not name a limit.
const DefaultHistoryLimit = 20

// Service tracks generator outcomes across runs.
type Service interface {
	// Record stores the outcome of one build.
	Record(ctx context.Context, result *generator.BuildResult) (*BuildRecord, error)
	// Latest returns the most recent record or ErrNoBuilds.
	Latest(ctx context.Context) (*BuildRecord, error)
	// History returns recent records newest first. A non-positive limit falls
	// back to the configured default.
	History(ctx context.Context, limit int) ([]*BuildRecord, error)
}

// Config captures catalog behaviour.
type Config struct {
	// OutputDir keys records to the build target so record IDs stay stable
	// per site.
	OutputDir    string
	HistoryLimit int
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithLogger overrides the default no-op logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a catalog implementation over the provided store.
func NewService(cfg Config, repo Repository, opts ...ServiceOption) Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	svc := &service{
		cfg:    cfg,
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	repo   Repository
	logger interfaces.Logger
	now    func() time.Time
}

type disabledService struct{}

func (s *service) Record(ctx context.Context, result *generator.BuildResult) (*BuildRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if result == nil {
		return nil, ErrResultRequired
	}

	now := s.now().UTC()
	record := &BuildRecord{
		ID:            identity.BuildUUID(s.cfg.OutputDir, now.Format(time.RFC3339Nano)),
		OutputDir:     s.cfg.OutputDir,
		Documents:     result.Documents,
		PagesBuilt:    result.PagesBuilt,
		PagesSkipped:  result.PagesSkipped,
		AssetsBuilt:   result.AssetsBuilt,
		AssetsSkipped: result.AssetsSkipped,
		ErrorCount:    len(result.Errors),
		ManifestHash:  renderedHash(result.Rendered),
		DryRun:        result.DryRun,
		Duration:      result.Duration,
		StartedAt:     now.Add(-result.Duration),
		CreatedAt:     now,
	}

	stored, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("catalog: record build: %w", err)
	}

	s.logger.Debug("catalog.build.recorded",
		"id", stored.ID.String(),
		"pages_built", stored.PagesBuilt,
		"pages_skipped", stored.PagesSkipped,
		"errors", stored.ErrorCount,
	)
	return stored, nil
}

func (s *service) Latest(ctx context.Context) (*BuildRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	return s.repo.Latest(ctx)
}

func (s *service) History(ctx context.Context, limit int) ([]*BuildRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	return s.repo.History(ctx, limit)
}

// renderedHash fingerprints the rendered set. Routes are sorted first so the
// hash does not depend on render order.
func renderedHash(pages []generator.RenderedPage) string {
	if len(pages) == 0 {
		return ""
	}
	lines := make([]string, 0, len(pages))
	for _, page := range pages {
		lines = append(lines, page.Route+"|"+page.Checksum)
	}
	sort.Strings(lines)
	digest := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(digest[:])
}

func (disabledService) Record(context.Context, *generator.BuildResult) (*BuildRecord, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Latest(context.Context) (*BuildRecord, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) History(context.Context, int) ([]*BuildRecord, error) {
	return nil, ErrServiceDisabled
}
