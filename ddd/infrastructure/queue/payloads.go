// Package queue is the asynq-backed Queue Broker (§4.1): four named
// queues (download, analysis, extraction, and the declared-but-unused
// upload queue), durable at-least-once delivery, and a bounded
// dead-letter ring of recent failures/completions.
package queue

// Queue names (§4.1). Upload is declared but never scheduled — see
// DESIGN.md's resolution of the §9 open question.
const (
	QueueDownload  = "download"
	QueueAnalysis  = "analysis"
	QueueExtraction = "extraction"
	QueueUpload    = "upload"
)

// Task type names, matching the queue they're enqueued on.
const (
	TaskDownload  = "download:fetch"
	TaskAnalysis  = "analysis:detect"
	TaskExtraction = "extraction:cut"
)

// DownloadTaskPayload is the Download Worker's input task (§4.3).
type DownloadTaskPayload struct {
	JobID     string `json:"job_id"`
	SourceURL string `json:"source_url"`
	UserID    string `json:"user_id"`
}

// AnalysisTaskPayload is the Analysis Worker's input task (§4.4).
type AnalysisTaskPayload struct {
	JobID   string `json:"job_id"`
	VideoID string `json:"video_id"`
}

// ExtractionTaskPayload is the Extraction Worker's input task (§4.5).
type ExtractionTaskPayload struct {
	JobID     string  `json:"job_id"`
	VideoID   string  `json:"video_id"`
	SegmentID string  `json:"segment_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}
