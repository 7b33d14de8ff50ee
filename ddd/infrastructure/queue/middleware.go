package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// RecordingMiddleware wraps every handler registered on a ServeMux so each
// task's outcome lands in the bounded dead-letter ring (§4.1), a thin
// decorator rather than a fork of asynq's own unbounded archive.
func RecordingMiddleware(ring *DeadLetterRing) func(asynq.Handler) asynq.Handler {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			err := next.ProcessTask(ctx, task)
			if ring == nil {
				return err
			}

			queueName, _ := asynq.GetQueueName(ctx)
			retryCount, _ := asynq.GetRetryCount(ctx)
			rec := DeadLetterRecord{
				TaskType:  task.Type(),
				Queue:     queueName,
				JobID:     extractJobID(task.Payload()),
				Attempt:   retryCount + 1,
				Timestamp: time.Now(),
			}
			if err != nil {
				rec.Error = err.Error()
				_ = ring.RecordFailure(context.Background(), rec)
			} else {
				_ = ring.RecordCompletion(context.Background(), rec)
			}
			return err
		})
	}
}

func extractJobID(payload []byte) string {
	var probe struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	return probe.JobID
}
