package catalog

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"
)

// BunRepository implements Repository with optional caching.
type BunRepository struct {
	repo repository.Repository[*BuildRecord]
}

// NewBunRepository creates a build record repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a build record repository with caching support.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewBuildRecordRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRepository{repo: base}
}

func (r *BunRepository) Create(ctx context.Context, record *BuildRecord) (*BuildRecord, error) {
	if record == nil {
		return nil, errRecordRequired
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return created, nil
}

func (r *BunRepository) Latest(ctx context.Context) (*BuildRecord, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at DESC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if len(records) == 0 {
		return nil, ErrNoBuilds
	}
	return records[0], nil
}

func (r *BunRepository) History(ctx context.Context, limit int) ([]*BuildRecord, error) {
	order := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at DESC")
	})

	var (
		records []*BuildRecord
		err     error
	)
	if limit > 0 {
		records, _, err = r.repo.List(ctx, order, repository.SelectPaginate(limit, 0))
	} else {
		records, _, err = r.repo.List(ctx, order)
	}
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return records, nil
}

// EnsureSchema creates the build_records table when missing. Records are
// derived state, so the table is created on demand rather than through
// migrations.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errDatabaseRequired
	}
	if _, err := db.NewCreateTable().Model((*BuildRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("catalog: create build_records table: %w", err)
	}
	return nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return ErrNoBuilds
	}
	return fmt.Errorf("build record repository error: %w", err)
}
