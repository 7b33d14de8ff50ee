package gateway

import "context"

// StorageGateway is the contract the core consumes for the (out-of-scope)
// S3-compatible object store client (§1, §6). Implementations own multipart
// behavior; the core only ever deals in bucket+key pairs.
type StorageGateway interface {
	// Upload puts the local file at localPath under key in bucket, returning
	// the final object key (storage keys are deterministic, so this is the
	// same key on success; re-delivery overwrites per §4.3/§4.5).
	Upload(ctx context.Context, bucket, key, localPath, contentType string) (string, error)
	// Download pulls bucket/key to localPath.
	Download(ctx context.Context, bucket, key, localPath string) error
	// PublicURL returns a reader-accessible URL for a previously uploaded key.
	PublicURL(bucket, key string) string
}

// DownloadGateway is the contract the core consumes for the (out-of-scope)
// external media-download utility (§4.3, §6). Implementations shell out.
type DownloadGateway interface {
	// Fetch invokes the utility against sourceURL, writing its output into
	// destDir, and returns the produced video file's absolute path plus
	// whatever metadata JSON was recovered (a nil map if absent).
	Fetch(ctx context.Context, sourceURL, destDir string) (videoPath string, title string, durationSec int, thumbnailURL string, meta map[string]any, err error)
}

// TranscriptWord is one word-level timestamp as returned by the
// transcription endpoint (§6).
type TranscriptWord struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcript is the (possibly degraded) result of a transcription call.
type Transcript struct {
	Text     string
	Duration float64
	Words    []TranscriptWord
}

// TranscriptionGateway is the contract the core consumes for the
// (out-of-scope) external speech-to-text service (§4.4.2, §4.6, §6).
type TranscriptionGateway interface {
	// Transcribe submits the audio file at localPath and returns word-level
	// timestamps. If the endpoint only returns prose text, the implementation
	// distributes the words evenly across the reported duration, or across
	// [0, durationHint] when none is reported (§4.6).
	Transcribe(ctx context.Context, localPath string, durationHint float64) (Transcript, error)
}
