package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"clipforge/ddd/domain/entity"
	"clipforge/ddd/domain/gateway"
	"clipforge/ddd/domain/port"
	"clipforge/ddd/domain/repo"
	"clipforge/ddd/domain/service/caption"
	"clipforge/ddd/domain/vo"
	"clipforge/ddd/infrastructure/events"
	"clipforge/ddd/infrastructure/queue"
	"clipforge/pkg/errno"
	"clipforge/pkg/logger"
)

// ExtractionConcurrencyDefault is EW's default per-process concurrency
// (§4.5).
const ExtractionConcurrencyDefault = 2

const (
	clipWidth  = 1080
	clipHeight = 1920
)

// baseTags are unconditionally present on every clip, deduplicated against
// whatever title-derived words are added (§4.5 step 7).
var baseTags = []string{"shorts", "viral", "trending", "highlight", "fyp"}

// ExtractionWorker is the asynq.Handler for the extraction queue (§4.5):
// cuts the clip, optionally burns captions, generates a thumbnail, uploads
// artifacts, creates the Clip row, and aggregates job completion.
type ExtractionWorker struct {
	Jobs              repo.JobRepository
	Videos            repo.VideoRepository
	Segments          repo.SegmentRepository
	Clips             repo.ClipRepository
	Storage           gateway.StorageGateway
	Media             port.MediaTool
	Transcription     gateway.TranscriptionGateway
	Broker            *queue.Broker
	Events            *events.Publisher
	WorkDir           string
	RawVideosBucket   string
	ProcessedBucket   string
	ThumbnailsBucket  string
	CaptionsEnabled   bool
}

// ProcessTask implements asynq.Handler.
func (w *ExtractionWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.ExtractionTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return queue.ResultError(errno.Wrap(errno.KindInvalidInput, "decode extraction task", err))
	}

	segment, err := w.Segments.Get(ctx, payload.SegmentID)
	if err != nil {
		return queue.ResultError(errno.Wrap(errno.KindDataIntegrity, "load segment", err))
	}
	video, err := w.Videos.Get(ctx, payload.VideoID)
	if err != nil {
		return queue.ResultError(errno.Wrap(errno.KindDataIntegrity, "load video", err))
	}
	job, err := w.Jobs.Get(ctx, payload.JobID)
	if err != nil {
		return queue.ResultError(errno.Wrap(errno.KindDataIntegrity, "load job", err))
	}

	// §4.5 idempotency: a Clip already present for this segment means a
	// prior delivery of this same task already completed successfully.
	if existing, err := w.Clips.GetBySegment(ctx, segment.ID); err == nil && existing != nil {
		return nil
	}

	if err := w.run(ctx, job, video, segment, payload); err != nil {
		w.failSegment(ctx, segment, err)
		return queue.ResultError(err)
	}
	return nil
}

func (w *ExtractionWorker) run(ctx context.Context, job *entity.Job, video *entity.Video, segment *entity.Segment, payload queue.ExtractionTaskPayload) error {
	segment.Status = vo.SegmentExtracting
	if err := w.Segments.Update(ctx, segment); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "mark segment extracting", err)
	}

	tempDir := filepath.Join(w.WorkDir, fmt.Sprintf("ew-%s-%d", segment.ID, time.Now().UnixNano()))
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "create temp dir", err)
	}
	defer os.RemoveAll(tempDir)

	srcPath := filepath.Join(tempDir, "source"+filepath.Ext(video.StorageKey))
	if err := w.Storage.Download(ctx, w.RawVideosBucket, video.StorageKey, srcPath); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "download source video", err)
	}

	cutPath := filepath.Join(tempDir, "cut.mp4")
	if err := w.Media.CutClip(ctx, srcPath, payload.Start, payload.End, cutPath); err != nil {
		return errno.Wrap(errno.KindExternalToolFailure, "cut clip", err)
	}

	finalPath := cutPath
	var hasCaptions bool
	var captionStyle *string
	var captionData []entity.CaptionSegment

	if w.CaptionsEnabled && job.Options.AddSubtitles && w.Transcription != nil {
		groups, captionErr := w.buildCaptions(ctx, srcPath, payload.Start, payload.End, tempDir)
		if captionErr == nil && len(groups) > 0 {
			burnedPath := filepath.Join(tempDir, "captioned.mp4")
			if err := w.burnCaptions(ctx, cutPath, groups, tempDir, burnedPath); err == nil {
				finalPath = burnedPath
				hasCaptions = true
				style := dominantStyle(groups)
				captionStyle = &style
				captionData = groups
			}
		}
	}

	thumbPath := ""
	if clipDuration, err := w.Media.ProbeDuration(ctx, finalPath); err == nil {
		candidate := filepath.Join(tempDir, "thumb.jpg")
		if err := w.Media.ExtractThumbnail(ctx, finalPath, clipDuration/2, candidate); err == nil {
			thumbPath = candidate
		}
	}

	clipKey := fmt.Sprintf("clips/%s/%s.mp4", video.ID, segment.ID)
	if _, err := w.Storage.Upload(ctx, w.ProcessedBucket, clipKey, finalPath, ""); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "upload clip", err)
	}

	var thumbKey *string
	if thumbPath != "" {
		key := fmt.Sprintf("thumbnails/%s/%s.jpg", video.ID, segment.ID)
		if _, err := w.Storage.Upload(ctx, w.ThumbnailsBucket, key, thumbPath, ""); err == nil {
			thumbKey = &key
		}
	}

	title := clipTitle(video.Title, segment.CompositeScore)
	description := clipDescription(segment.CompositeScore)
	tags := clipTags(video.Title)

	clip := entity.NewClip(segment.ID, video.ID, clipKey, title, description, tags)
	clip.ThumbnailKey = thumbKey
	if err := w.Clips.Insert(ctx, clip); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "insert clip", err)
	}

	segment.Status = vo.SegmentExtracted
	segment.HasCaptions = hasCaptions
	segment.CaptionStyle = captionStyle
	segment.CaptionData = captionData
	if err := w.Segments.Update(ctx, segment); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "mark segment extracted", err)
	}

	return w.aggregateCompletion(ctx, job, video)
}

// buildCaptions extracts the clip's audio, transcribes it, and groups the
// result into styled caption segments (§4.6). Transcription failure
// degrades gracefully: captions are skipped (§7 transcription_failure).
func (w *ExtractionWorker) buildCaptions(ctx context.Context, srcPath string, start, end float64, tempDir string) ([]entity.CaptionSegment, error) {
	audioPath := filepath.Join(tempDir, "captions.mp3")
	if err := w.Media.ExtractAudioSegment(ctx, srcPath, start, end, audioPath); err != nil {
		return nil, err
	}
	transcript, err := w.Transcription.Transcribe(ctx, audioPath, end-start)
	if err != nil || len(transcript.Words) == 0 {
		return nil, errno.New(errno.KindTranscriptionFailure, "no transcript words")
	}
	words := make([]caption.Word, len(transcript.Words))
	for i, tw := range transcript.Words {
		words[i] = caption.Word{Text: tw.Word, Start: tw.Start, End: tw.End}
	}
	groups := caption.Group(words)
	return caption.Style(groups), nil
}

// burnCaptions emits the styled subtitle format first, retrying with the
// simple format on failure, and falls back to the un-captioned clip on
// both-format failure (§4.5 step 4).
func (w *ExtractionWorker) burnCaptions(ctx context.Context, cutPath string, groups []entity.CaptionSegment, tempDir, destPath string) error {
	assPath := filepath.Join(tempDir, "captions.ass")
	if err := os.WriteFile(assPath, []byte(caption.RenderASS(groups)), 0o644); err == nil {
		if err := w.Media.BurnSubtitles(ctx, cutPath, assPath, destPath); err == nil {
			return nil
		}
	}

	srtPath := filepath.Join(tempDir, "captions.srt")
	if err := os.WriteFile(srtPath, []byte(caption.RenderSRT(groups)), 0o644); err != nil {
		return err
	}
	return w.Media.BurnSubtitles(ctx, cutPath, srtPath, destPath)
}

func dominantStyle(groups []entity.CaptionSegment) string {
	counts := map[string]int{}
	for _, g := range groups {
		counts[g.Style]++
	}
	best, bestCount := caption.StyleNormal, -1
	for _, name := range []string{caption.StyleHook, caption.StyleEmphasis, caption.StylePunchline, caption.StyleNormal} {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

// aggregateCompletion re-reads both counts and applies the job's terminal
// state unconditionally, so any interleaving of concurrent extraction
// tasks for the same video converges on the same result (§4.5 step 9,
// §5 "completion aggregation race").
func (w *ExtractionWorker) aggregateCompletion(ctx context.Context, job *entity.Job, video *entity.Video) error {
	segCount, err := w.Segments.CountByVideo(ctx, video.ID)
	if err != nil {
		return errno.Wrap(errno.KindStorageFailure, "count segments", err)
	}
	clipCount, err := w.Clips.CountByVideo(ctx, video.ID)
	if err != nil {
		return errno.Wrap(errno.KindStorageFailure, "count clips", err)
	}

	current, err := w.Jobs.Get(ctx, job.ID)
	if err != nil {
		return errno.Wrap(errno.KindDataIntegrity, "reload job", err)
	}
	if current.Status.Terminal() {
		return nil
	}

	if clipCount >= segCount && segCount > 0 {
		current.Complete()
		if err := w.Jobs.Update(ctx, current); err != nil {
			return errno.Wrap(errno.KindStorageFailure, "mark job completed", err)
		}
		if err := w.Videos.UpdateStatus(ctx, video.ID, string(vo.VideoProcessed)); err != nil {
			return errno.Wrap(errno.KindStorageFailure, "mark video processed", err)
		}
		w.publish(ctx, current)
		return nil
	}

	progress := 80
	if segCount > 0 {
		progress = 80 + int(19*float64(clipCount)/float64(segCount))
	}
	current.Advance(vo.JobExtracting, progress, fmt.Sprintf("Extracted %d/%d clips", clipCount, segCount))
	if err := w.Jobs.Update(ctx, current); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "update job progress", err)
	}
	w.publish(ctx, current)
	return nil
}

// clipTitle truncates the source title to 60 chars and appends an emoji
// keyed on the composite score (§4.5 step 7).
func clipTitle(sourceTitle string, composite float64) string {
	title := sourceTitle
	if r := []rune(title); len(r) > 60 {
		title = strings.TrimSpace(string(r[:60]))
	}
	emoji := "✨"
	switch {
	case composite >= 0.9:
		emoji = "🔥"
	case composite >= 0.8:
		emoji = "⚡"
	}
	return title + " " + emoji
}

// clipDescription reports the engagement percentage derived from the
// composite score (§4.5 step 7).
func clipDescription(composite float64) string {
	pct := int(composite * 100)
	return fmt.Sprintf("High-engagement moment — %d%% predicted retention", pct)
}

// clipTags unions the fixed base tags with lowercase 4+-letter words from
// the title, deduplicated, capped at the first 6 title-derived words
// (§4.5 step 7).
func clipTags(title string) []string {
	seen := make(map[string]bool, len(baseTags))
	tags := make([]string, 0, len(baseTags)+6)
	for _, t := range baseTags {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}

	words := strings.Fields(strings.ToLower(title))
	added := 0
	for _, raw := range words {
		if added >= 6 {
			break
		}
		w := strings.TrimFunc(raw, func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
		})
		if len(w) < 4 || seen[w] {
			continue
		}
		seen[w] = true
		tags = append(tags, w)
		added++
	}

	return tags
}

func (w *ExtractionWorker) failSegment(ctx context.Context, segment *entity.Segment, cause error) {
	segment.Status = vo.SegmentFailed
	if err := w.Segments.Update(ctx, segment); err != nil {
		logger.Error("failed to persist segment failure", map[string]interface{}{"segment_id": segment.ID, "error": err.Error()})
	}
}

func (w *ExtractionWorker) publish(ctx context.Context, job *entity.Job) {
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

var _ asynq.Handler = (*ExtractionWorker)(nil)
