// Command worker runs one or more stage handlers of the clip pipeline
// (§4.3-§4.5): Download, Analysis and Extraction Workers, each an
// asynq.Handler registered against its named queue. The --role flag
// selects which stage(s) this process drives; --role=all runs every
// stage's asynq.Server in one process, the convenient shape for local
// development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"clipforge/ddd/infrastructure/database"
	"clipforge/ddd/infrastructure/events"
	"clipforge/ddd/infrastructure/external"
	"clipforge/ddd/infrastructure/queue"
	"clipforge/ddd/infrastructure/storage"
	"clipforge/ddd/infrastructure/worker"
	"clipforge/internal/resource"
	"clipforge/pkg/config"
	"clipforge/pkg/kafka"
	"clipforge/pkg/logger"
	"clipforge/pkg/task"
)

func main() {
	role := flag.String("role", "all", "which stage(s) to run: download, analysis, extraction, all")
	configPath := flag.String("config", "config.yaml", "path to the worker's YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)
	logger.SetGlobalLogger(&cfg.Log)

	resource.OpenAll()
	defer resource.CloseAll()

	deadLetter := queue.NewDeadLetterRing(resource.DefaultRedisResource().Client())
	broker := queue.New(redisConnOpt(cfg), deadLetter)
	defer broker.Close()

	db := resource.DefaultMySQLResource().DB()
	jobRepo := database.NewJobRepository(db)
	videoRepo := database.NewVideoRepository(db)
	segmentRepo := database.NewSegmentRepository(db)
	clipRepo := database.NewClipRepository(db)

	storageGW := storage.NewMinioStorage(resource.DefaultMinioResource())
	downloadGW := external.NewYTDLP(cfg.External.YTDLPBinaryPath)
	ffmpeg := external.NewFFmpeg(cfg.External.FFmpegBinaryPath, cfg.External.FFprobeBinaryPath)
	transcriptionGW := external.NewTranscriptionClient(cfg.External.TranscriptionURL, os.Getenv("CLIPFORGE_TRANSCRIPTION_API_KEY"), cfg.External.TranscriptionTimeout)

	var kafkaClient *kafka.Client
	if cfg.Kafka.Enabled {
		kafkaClient = kafka.DefaultClient()
	}
	publisher := events.New(kafkaClient, cfg.Kafka.Topics.JobStatusChanged)

	downloadHandler := &worker.DownloadWorker{
		Jobs:            jobRepo,
		Videos:          videoRepo,
		Downloader:      downloadGW,
		Storage:         storageGW,
		Broker:          broker,
		Events:          publisher,
		WorkDir:         cfg.External.WorkDir,
		RawVideosBucket: cfg.Minio.RawVideosBucket,
	}

	analysisHandler := &worker.AnalysisWorker{
		Jobs:            jobRepo,
		Videos:          videoRepo,
		Segments:        segmentRepo,
		Storage:         storageGW,
		Media:           ffmpeg,
		Transcription:   transcriptionGW,
		Broker:          broker,
		Events:          publisher,
		Lock:            resource.DefaultEtcdResource().Lock(),
		WorkDir:         cfg.External.WorkDir,
		RawVideosBucket: cfg.Minio.RawVideosBucket,
		TopN:            cfg.Pipeline.RankingTopN,
	}

	extractionHandler := &worker.ExtractionWorker{
		Jobs:             jobRepo,
		Videos:           videoRepo,
		Segments:         segmentRepo,
		Clips:            clipRepo,
		Storage:          storageGW,
		Media:            ffmpeg,
		Transcription:    transcriptionGW,
		Broker:           broker,
		Events:           publisher,
		WorkDir:          cfg.External.WorkDir,
		RawVideosBucket:  cfg.Minio.RawVideosBucket,
		ProcessedBucket:  cfg.Minio.ProcessedBucket,
		ThumbnailsBucket: cfg.Minio.ThumbnailsBucket,
		CaptionsEnabled:  cfg.External.TranscriptionURL != "",
	}

	servers := map[string]*stageServer{
		"download": {
			queueName:   queue.QueueDownload,
			concurrency: worker.DownloadConcurrencyDefault,
			handler:     downloadHandler,
		},
		"analysis": {
			queueName:   queue.QueueAnalysis,
			concurrency: worker.AnalysisConcurrencyDefault,
			handler:     queue.RateLimitMiddleware(cfg.Pipeline.AnalysisRatePerSecond)(analysisHandler),
		},
		"extraction": {
			queueName:   queue.QueueExtraction,
			concurrency: worker.ExtractionConcurrencyDefault,
			handler:     queue.RateLimitMiddleware(cfg.Pipeline.ExtractionRatePerSecond)(extractionHandler),
		},
	}

	roles := rolesFor(*role)
	if len(roles) == 0 {
		fmt.Fprintln(os.Stderr, "unknown --role:", *role)
		os.Exit(1)
	}

	for _, r := range roles {
		task.Register(newStageTask(r, servers[r], cfg, deadLetter))
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := task.StartAll(ctx); err != nil {
		logger.Error("failed to start stage servers", map[string]interface{}{"error": err.Error()})
		cancel()
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received, draining in-flight tasks", nil)
	cancel()
	task.StopAll()
	logger.Info("worker exited", nil)
}

type stageServer struct {
	queueName   string
	concurrency int
	handler     asynq.Handler
}

// stageTask adapts one stage's asynq.Server into pkg/task.BackgroundTask,
// so cmd/worker manages every stage's lifecycle (and the shutdown grace
// window of §5) through the same start/stop contract the rest of the
// teacher's fleet uses for its background processes.
type stageTask struct {
	name       string
	server     *stageServer
	cfg        *config.Config
	deadLetter *queue.DeadLetterRing
	srv        *asynq.Server
}

func newStageTask(name string, server *stageServer, cfg *config.Config, deadLetter *queue.DeadLetterRing) *stageTask {
	return &stageTask{name: name, server: server, cfg: cfg, deadLetter: deadLetter}
}

func (t *stageTask) Name() string { return t.name }

// Start launches the stage's asynq.Server in the background; asynq.Server
// owns its own run loop, so Start returns once the server is dispatched
// (§5 "drains: stops reserving new tasks... then closes the QB and JS
// connections" is handled by Stop).
func (t *stageTask) Start(ctx context.Context) error {
	t.srv = asynq.NewServer(redisConnOpt(t.cfg), asynq.Config{
		Concurrency:    t.server.concurrency,
		Queues:         map[string]int{t.server.queueName: 1},
		RetryDelayFunc: queue.RetryDelay,
	})

	mux := asynq.NewServeMux()
	mux.Use(queue.RecordingMiddleware(t.deadLetter))
	mux.Handle(taskTypeFor(t.server.queueName), t.server.handler)

	go func() {
		if err := t.srv.Run(mux); err != nil {
			logger.Error("asynq server exited with error", map[string]interface{}{"stage": t.name, "error": err.Error()})
		}
	}()
	logger.Info("stage server started", map[string]interface{}{"stage": t.name, "queue": t.server.queueName, "concurrency": t.server.concurrency})
	return nil
}

// Stop drains in-flight tasks up to the configured shutdown grace period
// before returning (§5).
func (t *stageTask) Stop() error {
	done := make(chan struct{})
	go func() {
		t.srv.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(t.cfg.Worker.ShutdownGracePeriod):
		logger.Warn("stage server shutdown grace period exceeded", map[string]interface{}{"stage": t.name})
	}
	return nil
}

func taskTypeFor(queueName string) string {
	switch queueName {
	case queue.QueueDownload:
		return queue.TaskDownload
	case queue.QueueAnalysis:
		return queue.TaskAnalysis
	case queue.QueueExtraction:
		return queue.TaskExtraction
	default:
		return ""
	}
}

func rolesFor(role string) []string {
	switch role {
	case "all":
		return []string{"download", "analysis", "extraction"}
	case "download", "analysis", "extraction":
		return []string{role}
	default:
		return nil
	}
}

func redisConnOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

