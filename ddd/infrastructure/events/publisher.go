// Package events publishes the best-effort job-lifecycle event bus (§4.2
// SPEC_FULL addition): every write that changes Job.status also emits a
// Kafka message, giving the out-of-scope API a push-based alternative to
// polling Job.status/Job.current_step (§7).
package events

import (
	"context"
	"encoding/json"
	"time"

	"clipforge/pkg/kafka"
	"clipforge/pkg/logger"
)

// JobStatusChanged is the payload published on the configured topic.
type JobStatusChanged struct {
	JobID       string    `json:"job_id"`
	VideoID     string    `json:"video_id,omitempty"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	CurrentStep string    `json:"current_step"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher wraps the shared Kafka client for job-status events. Publish
// failures are logged, not propagated: the event bus is an observability
// convenience, never a correctness dependency of the pipeline.
type Publisher struct {
	client *kafka.Client
	topic  string
}

// New builds a Publisher against client, targeting topic.
func New(client *kafka.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// PublishJobStatusChanged emits evt, best-effort.
func (p *Publisher) PublishJobStatusChanged(ctx context.Context, evt JobStatusChanged) {
	if p == nil || p.client == nil {
		return
	}
	body, err := json.Marshal(evt)
	if err != nil {
		logger.Warn("failed to marshal job status event", map[string]interface{}{"job_id": evt.JobID, "error": err.Error()})
		return
	}
	if err := p.client.Produce(ctx, p.topic, []byte(evt.JobID), body); err != nil {
		logger.Warn("failed to publish job status event", map[string]interface{}{"job_id": evt.JobID, "error": err.Error()})
	}
}
