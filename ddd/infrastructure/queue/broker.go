package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/hibiken/asynq"

	"clipforge/pkg/errno"
)

// Policy is an Enqueue call's retry policy (§4.1). MaxRetry is passed to
// asynq as its retry count. Enqueue does not read BackoffBase: RetryDelay
// takes each task type's backoff base from retryBaseByType and always
// applies jitter (§4.1: "jitter permitted").
type Policy struct {
	MaxRetry    int
	BackoffBase time.Duration
}

// retryBaseByType lets RetryDelay pick each task type's backoff base
// without threading it through asynq's RetryDelayFunc signature, which
// only receives the task itself.
var retryBaseByType = map[string]time.Duration{
	TaskDownload:   2 * time.Second,
	TaskAnalysis:   2 * time.Second,
	TaskExtraction: 4 * time.Second,
}

// RetryDelay implements delay = base * 2^(attempt-1) with +-20% jitter
// (§4.1 backoff formula).
func RetryDelay(n int, _ error, task *asynq.Task) time.Duration {
	base, ok := retryBaseByType[task.Type()]
	if !ok {
		base = 2 * time.Second
	}
	delay := float64(base) * math.Pow(2, float64(n))
	jitter := 1 + (rand.Float64()*0.4 - 0.2)
	return time.Duration(delay * jitter)
}

// Broker is the Queue Broker client: a thin typed wrapper around an asynq
// client plus the bounded dead-letter ring (§4.1).
type Broker struct {
	client     *asynq.Client
	deadLetter *DeadLetterRing
}

// New builds a Broker against the given asynq redis connection options.
func New(redisOpt asynq.RedisConnOpt, deadLetter *DeadLetterRing) *Broker {
	return &Broker{client: asynq.NewClient(redisOpt), deadLetter: deadLetter}
}

// Close releases the underlying asynq client.
func (b *Broker) Close() error { return b.client.Close() }

// Enqueue JSON-encodes payload and submits it to queueName under taskType,
// applying policy's max attempts (§4.1). Reserve/Ack/Nack are modeled by
// asynq's own server: a handler returning nil acks, a non-nil error nacks
// and asynq applies RetryDelay before redelivery.
func (b *Broker) Enqueue(ctx context.Context, queueName, taskType string, payload any, policy Policy) (*asynq.TaskInfo, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.Queue(queueName)}
	if policy.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(policy.MaxRetry))
	}
	return b.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), opts...)
}

// DeadLetter exposes the bounded failure/completion ring for operator
// tooling (§4.1 retention requirement; nothing inside the core reads it).
func (b *Broker) DeadLetter() *DeadLetterRing { return b.deadLetter }

// ResultError adapts a handler's error for asynq: terminal taxonomy kinds
// (§7 invalid_input, data_integrity) are wrapped with asynq.SkipRetry so the
// task is archived immediately instead of retried to exhaustion.
func ResultError(err error) error {
	if err == nil {
		return nil
	}
	if errno.Retryable(err) {
		return err
	}
	return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
}
