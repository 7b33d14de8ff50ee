package external

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"clipforge/ddd/domain/port"
	"clipforge/pkg/errno"
)

const (
	analysisToolTimeout  = 120 * time.Second
	extractionToolTimeout = 300 * time.Second
	silenceThresholdDB   = -50.0
	minSilenceSeconds    = 1.0
	sceneChangeThreshold = 0.3
)

// FFmpeg shells out to the external media-probe, scene-change detector,
// frame encoder and subtitle-burn tool (§1, §4.4.2, §4.5, §6) — all the
// same ffmpeg/ffprobe binary pair, wearing different hats per invocation.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpeg builds an FFmpeg adapter against the given binaries (defaults
// "ffmpeg"/"ffprobe" when empty).
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// ProbeDuration returns a media file's duration in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	runCtx, cancel := context.WithTimeout(ctx, analysisToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, toolErr(runCtx, "ffprobe duration", err, out)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, errno.Wrap(errno.KindExternalToolFailure, "parse ffprobe duration", err)
	}
	return dur, nil
}

var (
	meanVolumeRe = regexp.MustCompile(`mean_volume:\s*(-?[\d.]+)\s*dB`)
	maxVolumeRe  = regexp.MustCompile(`max_volume:\s*(-?[\d.]+)\s*dB`)
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// ProbeAudio runs volumedetect + silencedetect over [start, end] of path
// and derives loud moments from the non-silent stretches between detected
// silences (§4.4.2).
func (f *FFmpeg) ProbeAudio(ctx context.Context, path string, start, end float64) (port.AudioProbe, error) {
	runCtx, cancel := context.WithTimeout(ctx, analysisToolTimeout)
	defer cancel()

	filter := fmt.Sprintf("volumedetect,silencedetect=noise=%gdB:d=%g", silenceThresholdDB, minSilenceSeconds)
	cmd := exec.CommandContext(runCtx, f.ffmpegPath,
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", path,
		"-af", filter,
		"-f", "null",
		"-",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return port.AudioProbe{}, toolErr(runCtx, "ffmpeg audio probe", err, out)
	}

	text := string(out)
	probe := port.AudioProbe{}
	if m := meanVolumeRe.FindStringSubmatch(text); len(m) == 2 {
		probe.MeanVolumeDB, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := maxVolumeRe.FindStringSubmatch(text); len(m) == 2 {
		probe.MaxVolumeDB, _ = strconv.ParseFloat(m[1], 64)
	}

	var pendingStart float64
	haveStart := false
	for _, line := range strings.Split(text, "\n") {
		if m := silenceStartRe.FindStringSubmatch(line); len(m) == 2 {
			pendingStart, _ = strconv.ParseFloat(m[1], 64)
			haveStart = true
			continue
		}
		if m := silenceEndRe.FindStringSubmatch(line); len(m) == 2 && haveStart {
			silEnd, _ := strconv.ParseFloat(m[1], 64)
			probe.Silences = append(probe.Silences, port.SilenceInterval{Start: pendingStart, End: silEnd})
			haveStart = false
		}
	}

	probe.LoudMoments = loudMomentsFromSilences(probe.Silences, end-start)
	return probe, nil
}

// loudMomentsFromSilences treats every gap between consecutive silences (or
// the window's own bounds) as a loud moment offset, a cheap stand-in for a
// dedicated peak detector.
func loudMomentsFromSilences(silences []port.SilenceInterval, windowLen float64) []float64 {
	if len(silences) == 0 {
		if windowLen > 0 {
			return []float64{0}
		}
		return nil
	}
	var out []float64
	cursor := 0.0
	for _, s := range silences {
		if s.Start-cursor > 0.5 {
			out = append(out, cursor)
		}
		cursor = s.End
	}
	if windowLen-cursor > 0.5 {
		out = append(out, cursor)
	}
	return out
}

var sceneTimeRe = regexp.MustCompile(`pts_time:([\d.]+)`)

// DetectSceneChanges runs ffmpeg's scene-change filter over [start, end]
// and returns detected boundary offsets relative to the window start
// (§4.4.2, §4.4.6).
func (f *FFmpeg) DetectSceneChanges(ctx context.Context, path string, start, end float64, threshold float64) ([]port.SceneChange, error) {
	runCtx, cancel := context.WithTimeout(ctx, analysisToolTimeout)
	defer cancel()

	filter := fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold)
	cmd := exec.CommandContext(runCtx, f.ffmpegPath,
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", path,
		"-vf", filter,
		"-f", "null",
		"-",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, toolErr(runCtx, "ffmpeg scene detect", err, out)
	}

	var changes []port.SceneChange
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "showinfo") {
			continue
		}
		if m := sceneTimeRe.FindStringSubmatch(line); len(m) == 2 {
			if t, err := strconv.ParseFloat(m[1], 64); err == nil {
				changes = append(changes, port.SceneChange{Offset: t})
			}
		}
	}
	return changes, nil
}

// ExtractAudioSegment extracts a mono 128kb/s MP3 from [start, end] of
// srcPath, the input the transcription endpoint consumes (§4.6).
func (f *FFmpeg) ExtractAudioSegment(ctx context.Context, srcPath string, start, end float64, destPath string) error {
	runCtx, cancel := context.WithTimeout(ctx, analysisToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.ffmpegPath,
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", srcPath,
		"-vn",
		"-ac", "1",
		"-b:a", "128k",
		destPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return toolErr(runCtx, "ffmpeg extract audio segment", err, out)
	}
	return nil
}

// CutClip cuts [start, end] from srcPath, scaling and center-cropping to
// 1080x1920 (9:16), encoding H.264 preset medium CRF 23, AAC 128kb/s, with
// faststart (§4.5 step 3). Exactly one encode invocation; the clip is
// never cut twice (§9).
func (f *FFmpeg) CutClip(ctx context.Context, srcPath string, start, end float64, destPath string) error {
	runCtx, cancel := context.WithTimeout(ctx, extractionToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.ffmpegPath,
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", srcPath,
		"-vf", "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		destPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return toolErr(runCtx, "ffmpeg cut clip", err, out)
	}
	return nil
}

// BurnSubtitles burns subtitlePath into srcPath, writing destPath (§4.5
// step 4). Callers retry with the simpler SRT format on ASS failure and
// fall back to the un-captioned clip on both-format failure.
func (f *FFmpeg) BurnSubtitles(ctx context.Context, srcPath, subtitlePath, destPath string) error {
	runCtx, cancel := context.WithTimeout(ctx, extractionToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.ffmpegPath,
		"-y",
		"-i", srcPath,
		"-vf", "subtitles="+escapeFilterPath(subtitlePath),
		"-c:a", "copy",
		destPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return toolErr(runCtx, "ffmpeg burn subtitles", err, out)
	}
	return nil
}

// ExtractThumbnail grabs the single frame at atSecond from srcPath,
// scaled and center-cropped to 1080x1920 (§4.5 step 5).
func (f *FFmpeg) ExtractThumbnail(ctx context.Context, srcPath string, atSecond float64, destPath string) error {
	runCtx, cancel := context.WithTimeout(ctx, analysisToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.ffmpegPath,
		"-y",
		"-ss", fmtSeconds(atSecond),
		"-i", srcPath,
		"-vframes", "1",
		"-vf", "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920",
		destPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return toolErr(runCtx, "ffmpeg extract thumbnail", err, out)
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}

func toolErr(ctx context.Context, label string, cause error, out []byte) error {
	if ctx.Err() != nil {
		return errno.Wrap(errno.KindTimeout, label+" exceeded timeout", ctx.Err())
	}
	msg := label
	if len(out) > 0 {
		tail := out
		if len(tail) > 2000 {
			tail = tail[len(tail)-2000:]
		}
		msg += ": " + string(tail)
	}
	return errno.Wrap(errno.KindExternalToolFailure, msg, cause)
}

var _ port.MediaTool = (*FFmpeg)(nil)
