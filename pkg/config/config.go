package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the pipeline's full layered configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Minio    MinioConfig    `mapstructure:"minio"`
	Etcd     EtcdConfig     `mapstructure:"etcd"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	External ExternalConfig `mapstructure:"external"`
}

// DatabaseConfig configures the Job Store's MySQL connection (§4.2).
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig backs both the asynq queue broker and the dead-letter ring.
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig configures the best-effort job-lifecycle event bus (§4.2).
type KafkaConfig struct {
	BootstrapServers []string          `mapstructure:"bootstrap_servers"`
	ClientID         string            `mapstructure:"client_id"`
	Enabled          bool              `mapstructure:"enabled"`
	Topics           KafkaTopicsConfig `mapstructure:"topics"`
}

type KafkaTopicsConfig struct {
	JobStatusChanged string `mapstructure:"job_status_changed"`
}

// MinioConfig configures the three object-storage buckets (§2.1).
type MinioConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	RawVideosBucket  string `mapstructure:"raw_videos_bucket"`
	ThumbnailsBucket string `mapstructure:"thumbnails_bucket"`
	ProcessedBucket  string `mapstructure:"processed_shorts_bucket"`
}

// EtcdConfig backs the analysis worker's distributed single-flight mutex.
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	LockKey     string        `mapstructure:"lock_key"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

// WorkerConfig holds worker process settings. Concurrency is defaulted
// by normalize but not read by cmd/worker, whose per-queue concurrency
// comes from the worker package's *ConcurrencyDefault constants.
type WorkerConfig struct {
	Concurrency         int           `mapstructure:"concurrency"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// PipelineConfig holds the rate limits and defaults from §5 and §6.
type PipelineConfig struct {
	AnalysisRatePerSecond   float64 `mapstructure:"analysis_rate_per_second"`
	ExtractionRatePerSecond float64 `mapstructure:"extraction_rate_per_second"`
	RankingTopN             int     `mapstructure:"ranking_top_n"`
}

// ExternalConfig locates the out-of-scope collaborator binaries/services
// this repo shells out to or calls over HTTP (§6).
type ExternalConfig struct {
	YTDLPBinaryPath      string        `mapstructure:"ytdlp_binary_path"`
	FFmpegBinaryPath     string        `mapstructure:"ffmpeg_binary_path"`
	FFprobeBinaryPath    string        `mapstructure:"ffprobe_binary_path"`
	TranscriptionURL     string        `mapstructure:"transcription_url"`
	TranscriptionTimeout time.Duration `mapstructure:"transcription_timeout"`
	WorkDir              string        `mapstructure:"work_dir"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads layered YAML+env configuration. A .env file in the working
// directory, if present, is loaded before viper reads the environment, so
// local worker bring-up doesn't need exported shell variables.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("kafka.enabled", true)
	viper.SetDefault("kafka.client_id", "clipforge")
	viper.SetDefault("kafka.bootstrap_servers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topics.job_status_changed", "clipforge.job.status_changed")
	viper.SetDefault("minio.raw_videos_bucket", "raw-videos")
	viper.SetDefault("minio.thumbnails_bucket", "thumbnails")
	viper.SetDefault("minio.processed_shorts_bucket", "processed-shorts")
	viper.SetDefault("etcd.endpoints", []string{"localhost:2379"})
	viper.SetDefault("etcd.lock_key", "/clipforge/locks/analysis-worker")
	viper.SetDefault("etcd.session_ttl", 30*time.Second)
	viper.SetDefault("worker.concurrency", 4)
	viper.SetDefault("worker.shutdown_grace_period", 10*time.Second)
	viper.SetDefault("pipeline.analysis_rate_per_second", 1.0)
	viper.SetDefault("pipeline.extraction_rate_per_second", 5.0)
	viper.SetDefault("pipeline.ranking_top_n", 8)
	viper.SetDefault("external.ytdlp_binary_path", "yt-dlp")
	viper.SetDefault("external.ffmpeg_binary_path", "ffmpeg")
	viper.SetDefault("external.ffprobe_binary_path", "ffprobe")
	viper.SetDefault("external.transcription_timeout", 5*time.Minute)
	viper.SetDefault("external.work_dir", "/tmp/clipforge")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetEnvPrefix("CLIPFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:9092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "clipforge"
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 4
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}
	if c.Pipeline.AnalysisRatePerSecond <= 0 {
		c.Pipeline.AnalysisRatePerSecond = 1.0
	}
	if c.Pipeline.ExtractionRatePerSecond <= 0 {
		c.Pipeline.ExtractionRatePerSecond = 5.0
	}
	if c.Pipeline.RankingTopN <= 0 {
		c.Pipeline.RankingTopN = 8
	}
	if c.External.YTDLPBinaryPath == "" {
		c.External.YTDLPBinaryPath = "yt-dlp"
	}
	if c.External.FFmpegBinaryPath == "" {
		c.External.FFmpegBinaryPath = "ffmpeg"
	}
	if c.External.FFprobeBinaryPath == "" {
		c.External.FFprobeBinaryPath = "ffprobe"
	}
	if c.External.WorkDir == "" {
		c.External.WorkDir = "/tmp/clipforge"
	}
}

// GetDSN returns the MySQL DSN GORM expects.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// GetRedisAddr returns the host:port go-redis expects.
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// SetGlobalConfig installs the process-wide configuration, read once at
// startup before any resource singleton opens.
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// GetGlobalConfig returns the process-wide configuration, or nil if
// SetGlobalConfig hasn't run yet.
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalCfg
}
