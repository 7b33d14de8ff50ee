// Package logger wraps logrus with the structured, field-first call style
// used across the pipeline (job_id, video_id, segment_id, queue, attempt).
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"clipforge/pkg/config"
)

var (
	once   sync.Once
	global *logrus.Logger
)

// Global returns the process-wide logger, initializing it with sane
// defaults on first use so packages can log before SetGlobalLogger runs.
func Global() *logrus.Logger {
	once.Do(func() {
		global = newLogger(nil)
	})
	return global
}

// SetGlobalLogger builds the logger from configuration and installs it as
// the process-wide singleton. Call once during startup, before any other
// component logs.
func SetGlobalLogger(cfg *config.LogConfig) *logrus.Logger {
	once.Do(func() {})
	global = newLogger(cfg)
	return global
}

func newLogger(cfg *config.LogConfig) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{})

	if cfg == nil {
		return l
	}
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		l.SetLevel(lvl)
	}
	if cfg.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

func Info(msg string, fields map[string]interface{}) {
	Global().WithFields(logrus.Fields(fields)).Info(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	Global().WithFields(logrus.Fields(fields)).Warn(msg)
}

func Error(msg string, fields map[string]interface{}) {
	Global().WithFields(logrus.Fields(fields)).Error(msg)
}

func Debug(msg string, fields map[string]interface{}) {
	Global().WithFields(logrus.Fields(fields)).Debug(msg)
}

func Infof(format string, args ...interface{}) {
	Global().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Global().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Global().Errorf(format, args...)
}

func Fatal(msg string) {
	Global().Fatal(msg)
}
