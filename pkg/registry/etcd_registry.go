// Package registry wraps an etcd client for the pipeline's one piece of
// distributed coordination: the analysis worker's fleet-wide single-flight
// lock (§4.3, §5 "default concurrency 1").
package registry

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"

	"clipforge/pkg/logger"
)

// EtcdConfig defines the etcd client connection.
type EtcdConfig struct {
	Endpoints   []string
	DialTimeout time.Duration
}

// AnalysisLock guards a session-scoped etcd mutex so every analysis worker
// process in the fleet, not just one process's goroutines, honors the
// pipeline's concurrency=1 default for AW.
type AnalysisLock struct {
	client     *clientv3.Client
	key        string
	sessionTTL time.Duration
}

// NewAnalysisLock dials etcd and prepares the mutex helper. The session
// (and its lease) is created fresh on every Acquire/Release pair rather
// than held open, so a crashed worker's lock expires within sessionTTL
// instead of wedging the fleet.
func NewAnalysisLock(cfg EtcdConfig, key string, sessionTTL time.Duration) (*AnalysisLock, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	return &AnalysisLock{client: client, key: key, sessionTTL: sessionTTL}, nil
}

// Acquire blocks until the lock is held or ctx is done, and returns a
// release function the caller must call when analysis finishes.
func (l *AnalysisLock) Acquire(ctx context.Context) (release func(), err error) {
	session, err := concurrency.NewSession(l.client, concurrency.WithTTL(int(l.sessionTTL.Seconds())), concurrency.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd session: %w", err)
	}
	mutex := concurrency.NewMutex(session, l.key)
	if err := mutex.Lock(ctx); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to acquire analysis lock: %w", err)
	}
	logger.Debug("analysis lock acquired", map[string]interface{}{"key": l.key})
	return func() {
		if err := mutex.Unlock(context.Background()); err != nil {
			logger.Warn("failed to release analysis lock", map[string]interface{}{"key": l.key, "error": err.Error()})
		}
		_ = session.Close()
	}, nil
}

// Close releases the underlying etcd client.
func (l *AnalysisLock) Close() error {
	return l.client.Close()
}
