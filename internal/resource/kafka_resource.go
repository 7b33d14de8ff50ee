package resource

import "clipforge/pkg/kafka"

// KafkaResource owns the shared Kafka client backing the job-lifecycle
// event bus (§4.2). Thin wrapper so OpenAll/CloseAll can treat it like
// every other resource singleton.
type KafkaResource struct{}

var kafkaSingleton = &KafkaResource{}

// DefaultKafkaResource returns the global Kafka resource instance.
func DefaultKafkaResource() *KafkaResource { return kafkaSingleton }

func (r *KafkaResource) MustOpen() { kafka.DefaultClient().MustOpen() }

func (r *KafkaResource) Close() { kafka.DefaultClient().Close() }
