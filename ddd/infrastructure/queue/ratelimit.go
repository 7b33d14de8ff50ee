package queue

import (
	"context"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles handler entry to at most ratePerSecond
// calls/second, the throughput bound §5's concurrency limits alone don't
// express (asynq.Config.Concurrency caps parallelism, not rate) — AW's
// "<=1/s" and EW's "<=5/s" from §4.4/§4.5.
func RateLimitMiddleware(ratePerSecond float64) func(asynq.Handler) asynq.Handler {
	limiter := rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			return next.ProcessTask(ctx, task)
		})
	}
}
