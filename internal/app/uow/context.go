package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type ctxKey struct{}

func ContextWith(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok
}

// Require returns the contextual unit of work or starts a new one from the
// factory. The second return value tells the caller whether it owns the
// transaction lifecycle.
func Require(ctx context.Context, factory Factory, opts TxOptions) (context.Context, UnitOfWork, bool, error) {
	if unit, ok := FromContext(ctx); ok {
		return ctx, unit, false, nil
	}
	if factory == nil {
		return ctx, nil, false, ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return ctx, nil, false, err
	}
	return ContextWith(ctx, unit), unit, true, nil
}
