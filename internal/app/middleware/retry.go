package middleware

import (
	"context"
	"time"

	"rentora/internal/app/commands"
)

// Retry re-runs a failed command once after the backoff when the error is
// classified transient. It must sit outside Transaction so the second
// attempt gets a fresh unit of work.
func Retry(backoff time.Duration, transient func(error) bool) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err == nil || transient == nil || !transient(err) {
				return res, err
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			return nextFn(ctx, cmd)
		})
	}
}
