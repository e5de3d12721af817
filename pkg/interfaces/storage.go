package interfaces

import "context"

// StorageProvider encapsulates the side-effecting operations the generator
// performs. Queries and statements are dispatched by operation string (see the
// generator's op constants) so implementations can target a filesystem, an
// object store, or an in-memory fake without the generator knowing which.
type StorageProvider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Rows is the minimal cursor surface returned by StorageProvider.Query.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// Result mirrors database/sql semantics for providers that have them; file
// backed providers return zero values.
type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

// Transaction scopes a group of storage operations. Providers without real
// transactional semantics may run the callback against themselves.
type Transaction interface {
	StorageProvider
	Commit() error
	Rollback() error
}
