package middleware

import (
	"context"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/outbox"
)

// OutboxFlush drains the outbox after a command handler succeeds. Chained
// inside Transaction, the flush shares the handler's unit of work.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
