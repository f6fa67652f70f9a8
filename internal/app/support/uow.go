package support

import (
	"context"

	"rentora/internal/app/uow"
)

// BeginReadOnlyUnit opens a read-only unit of work for query handlers that run
// outside the command middleware chain. The caller must Rollback when done.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, error) {
	return factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
}

// WithReadOnlyUnit runs fn inside a read-only unit of work and releases it afterwards.
func WithReadOnlyUnit(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	unit, err := BeginReadOnlyUnit(ctx, factory)
	if err != nil {
		return err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	return fn(ctx, unit)
}
