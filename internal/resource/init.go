// Package resource holds the process-wide singleton clients (MySQL, Redis,
// MinIO, Kafka, the etcd analysis lock) each worker process opens once at
// startup and closes on shutdown.
package resource

// OpenAll opens every resource singleton in dependency order. Call once
// during startup, after config.SetGlobalConfig and before any worker runs.
func OpenAll() {
	DefaultMySQLResource().MustOpen()
	DefaultRedisResource().MustOpen()
	DefaultMinioResource().MustOpen()
	DefaultKafkaResource().MustOpen()
	DefaultEtcdResource().MustOpen()
}

// CloseAll closes every resource singleton in reverse order.
func CloseAll() {
	DefaultEtcdResource().Close()
	DefaultKafkaResource().Close()
	DefaultMinioResource().Close()
	DefaultRedisResource().Close()
	DefaultMySQLResource().Close()
}
