package storage

import (
	"context"

	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// NewNoOpProvider returns a provider that accepts every operation and writes
// nothing. Dry-run builds render through it to validate content without
// touching the output directory.
func NewNoOpProvider() interfaces.StorageProvider {
	return &noOpProvider{}
}

type noOpProvider struct{}

func (*noOpProvider) Query(context.Context, string, ...any) (interfaces.Rows, error) {
	return nil, nil
}

func (*noOpProvider) Exec(context.Context, string, ...any) (interfaces.Result, error) {
	return emptyResult{}, nil
}

func (*noOpProvider) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(noOpTx{})
}

type noOpTx struct{}

func (noOpTx) Query(context.Context, string, ...any) (interfaces.Rows, error) {
	return nil, nil
}

func (noOpTx) Exec(context.Context, string, ...any) (interfaces.Result, error) {
	return emptyResult{}, nil
}

func (noOpTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return nil
}

func (noOpTx) Commit() error {
	return nil
}

func (noOpTx) Rollback() error {
	return nil
}
