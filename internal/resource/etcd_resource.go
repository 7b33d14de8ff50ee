package resource

import (
	"sync"

	"clipforge/pkg/config"
	"clipforge/pkg/logger"
	"clipforge/pkg/registry"
)

var (
	etcdResourceOnce sync.Once
	etcdSingleton    *EtcdResource
)

// EtcdResource owns the etcd-backed analysis lock (§4.3) shared by every
// analysis worker in the fleet.
type EtcdResource struct {
	lock *registry.AnalysisLock
}

// DefaultEtcdResource returns the global etcd resource instance.
func DefaultEtcdResource() *EtcdResource {
	etcdResourceOnce.Do(func() {
		etcdSingleton = &EtcdResource{}
	})
	return etcdSingleton
}

// MustOpen dials etcd and prepares the analysis lock using global configuration.
func (r *EtcdResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before EtcdResource")
	}

	lock, err := registry.NewAnalysisLock(registry.EtcdConfig{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: cfg.Etcd.DialTimeout,
	}, cfg.Etcd.LockKey, cfg.Etcd.SessionTTL)
	if err != nil {
		panic("failed to open etcd analysis lock: " + err.Error())
	}

	r.lock = lock
	logger.Info("etcd resource initialized", map[string]interface{}{"lock_key": cfg.Etcd.LockKey})
}

// Lock exposes the analysis worker's distributed single-flight mutex.
func (r *EtcdResource) Lock() *registry.AnalysisLock { return r.lock }

// Close releases the underlying etcd client.
func (r *EtcdResource) Close() {
	if r.lock != nil {
		_ = r.lock.Close()
	}
}
