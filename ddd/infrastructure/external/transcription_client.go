package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"clipforge/ddd/domain/gateway"
	"clipforge/pkg/errno"
)

// TranscriptionClient is a plain net/http multipart client for the
// out-of-scope transcription endpoint (§4.4.2, §4.6, §6).
type TranscriptionClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewTranscriptionClient builds a client against baseURL, authenticating
// with apiKey and bounding every call by timeout.
func NewTranscriptionClient(baseURL, apiKey string, timeout time.Duration) *TranscriptionClient {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &TranscriptionClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type transcriptionResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Words    []struct {
		Word       string  `json:"word"`
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Confidence float64 `json:"confidence,omitempty"`
	} `json:"words,omitempty"`
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments,omitempty"`
}

// Transcribe submits localPath as a multipart form POST, requesting
// verbose JSON with word-level timestamps (§6). If the endpoint returns
// only a text field, words are evenly distributed across [0, durationHint]
// (§4.6).
func (c *TranscriptionClient) Transcribe(ctx context.Context, localPath string, durationHint float64) (gateway.Transcript, error) {
	body, contentType, err := buildMultipartBody(localPath)
	if err != nil {
		return gateway.Transcript{}, errno.Wrap(errno.KindTranscriptionFailure, "build multipart body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return gateway.Transcript{}, errno.Wrap(errno.KindTranscriptionFailure, "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return gateway.Transcript{}, errno.Wrap(errno.KindTimeout, "transcription request exceeded timeout", ctx.Err())
		}
		return gateway.Transcript{}, errno.Wrap(errno.KindTranscriptionFailure, "transcription request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(resp.Body)
		return gateway.Transcript{}, errno.New(errno.KindTranscriptionFailure,
			fmt.Sprintf("transcription endpoint returned %d: %s", resp.StatusCode, truncateBytes(rb, 500)))
	}

	var raw transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return gateway.Transcript{}, errno.Wrap(errno.KindTranscriptionFailure, "decode transcription response", err)
	}

	tr := gateway.Transcript{Text: raw.Text, Duration: raw.Duration}
	if tr.Duration <= 0 {
		tr.Duration = durationHint
	}

	if len(raw.Words) > 0 {
		tr.Words = make([]gateway.TranscriptWord, len(raw.Words))
		for i, w := range raw.Words {
			tr.Words[i] = gateway.TranscriptWord{Word: w.Word, Start: w.Start, End: w.End, Confidence: w.Confidence}
		}
		return tr, nil
	}

	if tr.Text == "" {
		return gateway.Transcript{}, errno.New(errno.KindTranscriptionFailure, "empty transcription response")
	}

	tr.Words = distributeWordsEvenly(tr.Text, tr.Duration)
	return tr, nil
}

// distributeWordsEvenly is the §4.6 fallback when the endpoint returns
// only prose text: words are spread uniformly across the window.
func distributeWordsEvenly(text string, duration float64) []gateway.TranscriptWord {
	words := splitWords(text)
	if len(words) == 0 || duration <= 0 {
		return nil
	}
	per := duration / float64(len(words))
	out := make([]gateway.TranscriptWord, len(words))
	for i, w := range words {
		out[i] = gateway.TranscriptWord{
			Word:  w,
			Start: float64(i) * per,
			End:   float64(i+1) * per,
		}
	}
	return out
}

func splitWords(text string) []string {
	var out []string
	var cur []rune
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func buildMultipartBody(localPath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"model":                  "whisper-1",
		"response_format":        "verbose_json",
		"timestamp_granularities[]": "word",
		"language":               "en",
		"temperature":            "0",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
