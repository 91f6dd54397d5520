package middleware

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
)

// Transaction opens a unit of work per command, committing on success and
// rolling back otherwise.
func Transaction(factory uow.Factory) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			unit, err := factory.Begin(ctx, uow.TxOptions{})
			if err != nil {
				return nil, err
			}
			execCtx := uow.ContextWith(ctx, unit)
			committed := false
			defer func() {
				if !committed {
					_ = unit.Rollback(execCtx)
				}
			}()

			res, err := nextFn(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, err
			}
			committed = true
			return res, nil
		})
	}
}

// ReadOnlyUnit provides queries with a read-only unit of work.
func ReadOnlyUnit(factory uow.Factory) QueryMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
			if err != nil {
				return nil, err
			}
			execCtx := uow.ContextWith(ctx, unit)
			defer unit.Rollback(execCtx)
			return nextFn(execCtx, q)
		})
	}
}
