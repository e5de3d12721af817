package catalog

import (
	"context"
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	// ErrNoBuilds indicates the catalog holds no build records yet.
	ErrNoBuilds         = errors.New("catalog: no builds recorded")
	errRecordRequired   = errors.New("catalog: build record required")
	errDatabaseRequired = errors.New("catalog: database required")
)

// Repository stores build records. Implementations keep history newest first.
type Repository interface {
	Create(ctx context.Context, record *BuildRecord) (*BuildRecord, error)
	// Latest returns the most recent record or ErrNoBuilds.
	Latest(ctx context.Context) (*BuildRecord, error)
	// History returns up to limit records, newest first. A non-positive limit
	// returns everything the store kept.
	History(ctx context.Context, limit int) ([]*BuildRecord, error)
}

// NewBuildRecordRepository creates the bun repository for build records.
func NewBuildRecordRepository(db *bun.DB) repository.Repository[*BuildRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*BuildRecord]{
		NewRecord:          func() *BuildRecord { return &BuildRecord{} },
		GetID:              func(record *BuildRecord) uuid.UUID { return record.ID },
		SetID:              func(record *BuildRecord, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(record *BuildRecord) string { return record.ID.String() },
	})
}
