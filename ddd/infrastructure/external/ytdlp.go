// Package external wraps every out-of-scope black-box subprocess and HTTP
// collaborator the core consumes: the media-download utility, the
// media-probe/scene-change/frame-encoder/subtitle-burn tool, and the
// transcription endpoint (§1, §6). Every subprocess invocation passes
// arguments as argv, never shell-interpolated, with an explicit
// kill-on-timeout (§9). Output capture is bounded (maxCapturedOutput) only
// for the download utility; the ffmpeg/ffprobe calls collect their full
// combined output.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"clipforge/ddd/domain/gateway"
	"clipforge/pkg/errno"
)

const (
	downloadTimeout    = 600 * time.Second
	maxCapturedOutput  = 50 << 20 // 50 MiB, §4.3 step 4
	clientIdentityFlag = "ios"
)

// YTDLP shells out to the external media-download utility (§4.3, §6).
type YTDLP struct {
	binPath string
}

// NewYTDLP builds a YTDLP adapter invoking the given binary (default
// "yt-dlp" if empty).
func NewYTDLP(binPath string) *YTDLP {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &YTDLP{binPath: binPath}
}

// Fetch invokes the utility against sourceURL, writing output into destDir,
// and returns the produced video file's path plus whatever metadata JSON
// was recovered (§4.3 steps 4-7). Absence of the metadata JSON is
// tolerated; absence of the video file is an external_tool_failure.
func (y *YTDLP) Fetch(ctx context.Context, sourceURL, destDir string) (videoPath, title string, durationSec int, thumbnailURL string, meta map[string]any, err error) {
	runCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	outputTemplate := filepath.Join(destDir, "video.%(ext)s")
	args := []string{
		"--no-check-certificates",
		"--no-warnings",
		"--ignore-errors",
		"--format", "best[ext=mp4]/best",
		"--output", outputTemplate,
		"--write-info-json",
		"--write-thumbnail",
		"--no-playlist",
		"--socket-timeout", "30",
		"--retries", "15",
		"--fragment-retries", "15",
		"--extractor-args", "youtube:player_client=" + clientIdentityFlag,
		sourceURL,
	}

	cmd := exec.CommandContext(runCtx, y.binPath, args...)
	var stdout, stderr boundedBuffer
	stdout.limit = maxCapturedOutput
	stderr.limit = maxCapturedOutput
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runCtx.Err() != nil {
		return "", "", 0, "", nil, errno.Wrap(errno.KindTimeout, "download utility exceeded timeout", runCtx.Err())
	}
	if runErr != nil {
		return "", "", 0, "", nil, errno.Wrap(errno.KindExternalToolFailure, "download utility failed: "+stderr.String(), runErr)
	}

	videoPath, err = findVideoFile(destDir)
	if err != nil {
		return "", "", 0, "", nil, errno.Wrap(errno.KindExternalToolFailure, "download_missing_output", err)
	}

	title, durationSec, thumbnailURL, meta = readInfoJSON(destDir)
	return videoPath, title, durationSec, thumbnailURL, meta, nil
}

// findVideoFile locates the first filename starting with "video." and
// ending in one of the recognized containers (§4.3 step 5).
func findVideoFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	exts := map[string]bool{".mp4": true, ".webm": true, ".mkv": true}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "video.") {
			continue
		}
		if exts[strings.ToLower(filepath.Ext(name))] {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("no video.{mp4,webm,mkv} output found in %s", dir)
}

// readInfoJSON reads the companion metadata JSON (§4.3 step 7); absence is
// tolerated, defaults returned.
func readInfoJSON(dir string) (title string, durationSec int, thumbnailURL string, meta map[string]any) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, "", nil
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".info.json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return "", 0, "", nil
		}
		var raw map[string]any
		if err := json.Unmarshal(b, &raw); err != nil {
			return "", 0, "", nil
		}
		if v, ok := raw["title"].(string); ok {
			title = v
		}
		if v, ok := raw["duration"].(float64); ok {
			durationSec = int(v)
		}
		if v, ok := raw["thumbnail"].(string); ok {
			thumbnailURL = v
		}
		return title, durationSec, thumbnailURL, raw
	}
	return "", 0, "", nil
}

// boundedBuffer caps captured subprocess output at limit bytes (§4.3 step
// 4, §9).
type boundedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	return b.buf.Write(p)
}

func (b *boundedBuffer) String() string { return b.buf.String() }

var _ gateway.DownloadGateway = (*YTDLP)(nil)
