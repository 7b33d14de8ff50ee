package resource

import (
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"clipforge/pkg/config"
	"clipforge/pkg/logger"
)

var (
	mysqlResourceOnce sync.Once
	mysqlSingleton    *MySQLResource
)

// MySQLResource manages the lifecycle of the shared GORM/MySQL connection
// backing the Job Store (§4.2).
type MySQLResource struct {
	db *gorm.DB
}

// DefaultMySQLResource returns the global MySQL resource instance.
func DefaultMySQLResource() *MySQLResource {
	mysqlResourceOnce.Do(func() {
		mysqlSingleton = &MySQLResource{}
	})
	return mysqlSingleton
}

// MustOpen establishes the database connection using global configuration.
func (r *MySQLResource) MustOpen() {
	if r.db != nil {
		return
	}
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MySQLResource")
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		panic("failed to connect mysql: " + err.Error())
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic("failed to get underlying sql.DB: " + err.Error())
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	r.db = db
	logger.Info("MySQL resource initialized", map[string]interface{}{"database": cfg.Database.Database})
}

// DB exposes the GORM handle.
func (r *MySQLResource) DB() *gorm.DB { return r.db }

// Close releases the underlying connection pool.
func (r *MySQLResource) Close() {
	if r.db == nil {
		return
	}
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
