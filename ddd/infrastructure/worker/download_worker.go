// Package worker hosts the per-stage asynq.Handler implementations — the
// Download, Analysis and Extraction Workers (§4.3–§4.5) — each registered
// against its named queue by cmd/worker.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"clipforge/ddd/domain/entity"
	"clipforge/ddd/domain/gateway"
	"clipforge/ddd/domain/repo"
	"clipforge/ddd/domain/service/urlid"
	"clipforge/ddd/domain/vo"
	"clipforge/ddd/infrastructure/events"
	"clipforge/ddd/infrastructure/queue"
	"clipforge/pkg/errno"
	"clipforge/pkg/logger"
)

// DownloadConcurrencyDefault is DW's default per-process concurrency (§4.3).
const DownloadConcurrencyDefault = 2

// DownloadWorker is the asynq.Handler for the download queue (§4.3).
type DownloadWorker struct {
	Jobs            repo.JobRepository
	Videos          repo.VideoRepository
	Downloader      gateway.DownloadGateway
	Storage         gateway.StorageGateway
	Broker          *queue.Broker
	Events          *events.Publisher
	WorkDir         string
	RawVideosBucket string
}

// ProcessTask implements asynq.Handler.
func (w *DownloadWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.DownloadTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return queue.ResultError(errno.Wrap(errno.KindInvalidInput, "decode download task", err))
	}

	job, err := w.Jobs.Get(ctx, payload.JobID)
	if err != nil {
		return queue.ResultError(errno.Wrap(errno.KindDataIntegrity, "load job", err))
	}

	if err := w.run(ctx, job, payload); err != nil {
		w.failJob(ctx, job, err)
		return queue.ResultError(err)
	}
	return nil
}

func (w *DownloadWorker) run(ctx context.Context, job *entity.Job, payload queue.DownloadTaskPayload) error {
	job.Advance(vo.JobDownloading, 10, "Starting download")
	if err := w.Jobs.Update(ctx, job); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "update job status", err)
	}
	w.publish(ctx, job)

	externalID, ok := urlid.Extract(payload.SourceURL)
	if !ok {
		return errno.New(errno.KindInvalidInput, "invalid_url: "+payload.SourceURL)
	}

	tempDir := filepath.Join(w.WorkDir, fmt.Sprintf("dl-%s-%d", externalID, time.Now().UnixNano()))
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "create temp dir", err)
	}
	defer os.RemoveAll(tempDir)

	videoPath, title, durationSec, thumbnailURL, meta, err := w.Downloader.Fetch(ctx, payload.SourceURL, tempDir)
	if err != nil {
		return err
	}

	storageKey := fmt.Sprintf("raw-videos/%s/%s", externalID, filepath.Base(videoPath))
	if _, err := w.Storage.Upload(ctx, w.RawVideosBucket, storageKey, videoPath, ""); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "upload raw video", err)
	}

	video := entity.NewVideo(payload.UserID, externalID, payload.SourceURL, title, durationSec, storageKey, rawMetadataFrom(meta))
	if thumbnailURL != "" {
		video.ThumbnailURL = &thumbnailURL
	}
	if err := w.Videos.Upsert(ctx, video); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "upsert video", err)
	}

	canonical, err := w.Videos.GetByExternalID(ctx, externalID)
	if err != nil {
		return errno.Wrap(errno.KindDataIntegrity, "reload video after upsert", err)
	}

	job.VideoID = &canonical.ID
	job.Advance(vo.JobDownloading, 20, "Download complete")
	if err := w.Jobs.Update(ctx, job); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "link job to video", err)
	}
	w.publish(ctx, job)

	if _, err := w.Broker.Enqueue(ctx, queue.QueueAnalysis, queue.TaskAnalysis, queue.AnalysisTaskPayload{
		JobID:   job.ID,
		VideoID: canonical.ID,
	}, queue.Policy{MaxRetry: 3, BackoffBase: 2 * time.Second}); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "enqueue analysis task", err)
	}
	return nil
}

// rawMetadataFrom tolerates absence of any field in the companion metadata
// JSON, defaulting to the zero value (§4.3 step 7).
func rawMetadataFrom(meta map[string]any) entity.RawMetadata {
	var out entity.RawMetadata
	if meta == nil {
		return out
	}
	if v, ok := meta["uploader"].(string); ok {
		out.Uploader = v
	}
	if v, ok := meta["view_count"].(float64); ok {
		out.ViewCount = int64(v)
	}
	if v, ok := meta["like_count"].(float64); ok {
		out.LikeCount = int64(v)
	}
	if v, ok := meta["upload_date"].(string); ok {
		out.UploadDate = v
	}
	if tags, ok := meta["tags"].([]interface{}); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				out.Tags = append(out.Tags, s)
			}
		}
	}
	return out
}

func (w *DownloadWorker) failJob(ctx context.Context, job *entity.Job, cause error) {
	job.Fail(cause.Error())
	if err := w.Jobs.Update(ctx, job); err != nil {
		logger.Error("failed to persist job failure", map[string]interface{}{"job_id": job.ID, "error": err.Error()})
	}
	w.publish(ctx, job)
}

func (w *DownloadWorker) publish(ctx context.Context, job *entity.Job) {
	videoID := ""
	if job.VideoID != nil {
		videoID = *job.VideoID
	}
	w.Events.PublishJobStatusChanged(ctx, events.JobStatusChanged{
		JobID:       job.ID,
		VideoID:     videoID,
		Status:      string(job.Status),
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Timestamp:   time.Now(),
	})
}

var _ asynq.Handler = (*DownloadWorker)(nil)
