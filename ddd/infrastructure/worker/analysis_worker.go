package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"clipforge/ddd/domain/entity"
	"clipforge/ddd/domain/gateway"
	"clipforge/ddd/domain/port"
	"clipforge/ddd/domain/repo"
	"clipforge/ddd/domain/service/score"
	"clipforge/ddd/domain/service/selection"
	"clipforge/ddd/domain/service/signal"
	"clipforge/ddd/domain/service/window"
	"clipforge/ddd/domain/vo"
	"clipforge/ddd/infrastructure/events"
	"clipforge/ddd/infrastructure/queue"
	"clipforge/pkg/errno"
	"clipforge/pkg/logger"
	"clipforge/pkg/registry"
)

// AnalysisConcurrencyDefault is AW's default per-process concurrency
// (§4.4: "Default concurrency 1 with rate limit <= 1/s").
const AnalysisConcurrencyDefault = 1

// analysisBatchSize bounds memory by processing candidates in batches
// (§4.4.8).
const analysisBatchSize = 5

// analysisTopN is AW's internal ranking depth (§4.4.5 default 8), distinct
// from the user-facing options.clipCount default of 5. Per the §9 open
// question, options.ClipCount is honored as the authoritative cut of this
// ranked list — see DESIGN.md.
const analysisTopN = 8

// AnalysisWorker is the asynq.Handler for the analysis queue (§4.4), the
// viral-moment detector: dense candidate generation, per-window signal
// scoring, non-overlapping top-N selection, and boundary snapping.
type AnalysisWorker struct {
	Jobs            repo.JobRepository
	Videos          repo.VideoRepository
	Segments        repo.SegmentRepository
	Storage         gateway.StorageGateway
	Media           port.MediaTool
	Transcription   gateway.TranscriptionGateway
	Broker          *queue.Broker
	Events          *events.Publisher
	Lock            *registry.AnalysisLock
	WorkDir         string
	RawVideosBucket string
	TopN            int
}

// ProcessTask implements asynq.Handler.
func (w *AnalysisWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.AnalysisTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return queue.ResultError(errno.Wrap(errno.KindInvalidInput, "decode analysis task", err))
	}

	if w.Lock != nil {
		release, err := w.Lock.Acquire(ctx)
		if err != nil {
			return queue.ResultError(errno.Wrap(errno.KindExternalToolFailure, "acquire analysis lock", err))
		}
		defer release()
	}

	job, err := w.Jobs.Get(ctx, payload.JobID)
	if err != nil {
		return queue.ResultError(errno.Wrap(errno.KindDataIntegrity, "load job", err))
	}
	video, err := w.Videos.Get(ctx, payload.VideoID)
	if err != nil {
		return queue.ResultError(errno.Wrap(errno.KindDataIntegrity, "load video", err))
	}

	if err := w.run(ctx, job, video); err != nil {
		w.failJob(ctx, job, err)
		return queue.ResultError(err)
	}
	return nil
}

func (w *AnalysisWorker) run(ctx context.Context, job *entity.Job, video *entity.Video) error {
	job.Advance(vo.JobAnalyzing, 10, "Analyzing video")
	if err := w.Jobs.Update(ctx, job); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "update job status", err)
	}
	w.publish(ctx, job)

	tempDir := filepath.Join(w.WorkDir, fmt.Sprintf("an-%s-%d", video.ID, time.Now().UnixNano()))
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "create temp dir", err)
	}
	defer os.RemoveAll(tempDir)

	videoPath := filepath.Join(tempDir, "source"+filepath.Ext(video.StorageKey))
	if err := w.Storage.Download(ctx, w.RawVideosBucket, video.StorageKey, videoPath); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "download source video", err)
	}

	duration := float64(video.Duration)
	candidates := window.Generate(duration)

	// options.ClipCount is the user-facing authoritative cut of the ranked
	// list (§9 open question); w.TopN (operator config) is only the
	// fallback when a job carries no explicit ClipCount.
	topN := analysisTopN
	if w.TopN > 0 {
		topN = w.TopN
	}
	if job.Options.ClipCount > 0 {
		topN = job.Options.ClipCount
	}

	job.Advance(vo.JobAnalyzing, 20, "Scanning candidate windows")
	if err := w.Jobs.Update(ctx, job); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "update job progress", err)
	}
	w.publish(ctx, job)

	scored := make([]selection.Scored, 0, len(candidates))
	sceneByCandidate := make(map[int][]float64, len(candidates))
	wordsByCandidate := make(map[int][]selection.Word, len(candidates))

	for batchStart := 0; batchStart < len(candidates); batchStart += analysisBatchSize {
		batchEnd := batchStart + analysisBatchSize
		if batchEnd > len(candidates) {
			batchEnd = len(candidates)
		}
		batch := candidates[batchStart:batchEnd]

		results := make([]selection.Scored, len(batch))
		scenes := make([][]float64, len(batch))
		words := make([][]selection.Word, len(batch))

		var wg sync.WaitGroup
		for i, c := range batch {
			wg.Add(1)
			go func(i int, c window.Candidate) {
				defer wg.Done()
				sigs, sceneOffsets, transcriptWords := w.analyzeCandidate(ctx, videoPath, c)
				meta := score.Meta{WindowStart: c.Start, WindowEnd: c.End, VideoDuration: duration}
				analysis := score.Score(sigs, meta)
				results[i] = selection.Scored{Candidate: c, Analysis: analysis}
				scenes[i] = sceneOffsets
				words[i] = transcriptWords
			}(i, c)
		}
		wg.Wait()

		for i := range batch {
			idx := batchStart + i
			scored = append(scored, results[i])
			sceneByCandidate[idx] = scenes[i]
			wordsByCandidate[idx] = words[i]
		}

		progress := 40 + int(40*float64(batchEnd)/float64(max1(len(candidates))))
		if progress > 80 {
			progress = 80
		}
		job.Advance(vo.JobAnalyzing, progress, "Scoring candidate windows")
		if err := w.Jobs.Update(ctx, job); err != nil {
			return errno.Wrap(errno.KindStorageFailure, "update job progress", err)
		}
		w.publish(ctx, job)
	}

	selected := selection.Select(scored, topN)

	job.Advance(vo.JobAnalyzing, 85, "Selecting top moments")
	if err := w.Jobs.Update(ctx, job); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "update job progress", err)
	}
	w.publish(ctx, job)

	for i, candIdx := range indicesOf(scored, selected) {
		snapped := selection.SnapBoundaries(selected[i].Candidate, sceneByCandidate[candIdx], wordsByCandidate[candIdx])

		sigScores := entity.SignalScores{
			Audio:      selected[i].Analysis.Signals.Audio.EngagementScore,
			Visual:     selected[i].Analysis.Signals.Visual.EngagementScore,
			Speech:     selected[i].Analysis.Signals.Speech.EngagementScore,
			Engagement: selected[i].Analysis.Composite,
		}
		segment := entity.NewSegment(video.ID, snapped.Start, snapped.End, selected[i].Analysis.Composite, sigScores, selected[i].Analysis.Reason)
		if err := w.Segments.Create(ctx, segment); err != nil {
			return errno.Wrap(errno.KindStorageFailure, "persist segment", err)
		}

		if _, err := w.Broker.Enqueue(ctx, queue.QueueExtraction, queue.TaskExtraction, queue.ExtractionTaskPayload{
			JobID:     job.ID,
			VideoID:   video.ID,
			SegmentID: segment.ID,
			Start:     segment.StartTime,
			End:       segment.EndTime,
		}, queue.Policy{MaxRetry: 3, BackoffBase: 4 * time.Second}); err != nil {
			return errno.Wrap(errno.KindStorageFailure, "enqueue extraction task", err)
		}
	}

	if err := w.Videos.UpdateStatus(ctx, video.ID, string(vo.VideoAnalyzed)); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "update video status", err)
	}

	job.Advance(vo.JobExtracting, 95, "Extracting clips")
	if err := w.Jobs.Update(ctx, job); err != nil {
		return errno.Wrap(errno.KindStorageFailure, "update job status", err)
	}
	w.publish(ctx, job)
	return nil
}

// analyzeCandidate computes the three per-window signals in parallel
// (§4.4.2), substituting the neutral fallback for any signal source that
// fails (§7 signal_failure). It also returns the window's absolute scene
// boundaries and transcript word timestamps for later boundary snapping.
func (w *AnalysisWorker) analyzeCandidate(ctx context.Context, videoPath string, c window.Candidate) (signal.SignalSet, []float64, []selection.Word) {
	var (
		audioSig  signal.AudioSignal
		visualSig signal.VisualSignal
		speechSig signal.SpeechSignal
		scenes    []float64
		words     []selection.Word
	)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		probe, err := w.Media.ProbeAudio(ctx, videoPath, c.Start, c.End)
		if err != nil {
			audioSig = signal.AudioFallback()
			return
		}
		silenceSeconds := 0.0
		for _, s := range probe.Silences {
			silenceSeconds += s.End - s.Start
		}
		audioSig = signal.NewAudioSignal(probe.MeanVolumeDB, probe.MaxVolumeDB, silenceSeconds, len(probe.LoudMoments), c.End-c.Start)
	}()

	go func() {
		defer wg.Done()
		changes, err := w.Media.DetectSceneChanges(ctx, videoPath, c.Start, c.End, 0.3)
		if err != nil {
			visualSig = signal.VisualFallback()
			return
		}
		offsets := make([]float64, len(changes))
		for i, ch := range changes {
			offsets[i] = ch.Offset
			scenes = append(scenes, c.Start+ch.Offset)
		}
		visualSig = signal.NewVisualSignal(offsets, c.End-c.Start)
	}()

	go func() {
		defer wg.Done()
		audioPath := filepath.Join(os.TempDir(), fmt.Sprintf("aw-speech-%d.mp3", time.Now().UnixNano()))
		defer os.Remove(audioPath)
		if err := w.Media.ExtractAudioSegment(ctx, videoPath, c.Start, c.End, audioPath); err != nil {
			speechSig = signal.SpeechFallback()
			return
		}
		transcript, err := w.Transcription.Transcribe(ctx, audioPath, c.End-c.Start)
		if err != nil || len(transcript.Words) == 0 {
			speechSig = signal.SpeechFallback()
			return
		}
		localWords := make([]signal.Word, len(transcript.Words))
		for i, tw := range transcript.Words {
			localWords[i] = signal.Word{Text: tw.Word, Start: tw.Start, End: tw.End}
			words = append(words, selection.Word{End: c.Start + tw.End})
		}
		speechSig = signal.NewSpeechSignal(transcript.Text, localWords, c.End-c.Start)
	}()

	wg.Wait()
	return signal.SignalSet{Audio: audioSig, Visual: visualSig, Speech: speechSig}, scenes, words
}

// indicesOf maps each selected candidate back to its position in the
// original scored slice, so snapping can look up that candidate's
// per-window scene boundaries and transcript words.
func indicesOf(all []selection.Scored, selected []selection.Scored) []int {
	out := make([]int, len(selected))
	for i, s := range selected {
		for j, a := range all {
			if a.Candidate == s.Candidate {
				out[i] = j
				break
			}
		}
	}
	return out
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func (w *AnalysisWorker) failJob(ctx context.Context, job *entity.Job, cause error) {
	job.Fail(cause.Error())
	if err := w.Jobs.Update(ctx, job); err != nil {
		logger.Error("failed to persist job failure", map[string]interface{}{"job_id": job.ID, "error": err.Error()})
	}
	w.publish(ctx, job)
}

func (w *AnalysisWorker) publish(ctx context.Context, job *entity.Job) {
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

var _ asynq.Handler = (*AnalysisWorker)(nil)
