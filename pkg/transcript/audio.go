package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/xhad/rescript/internal/models"
)

// AudioConfig configures the download-then-transcribe provider.
type AudioConfig struct {
	APIKey   string // OpenAI-compatible speech-to-text credential
	BaseURL  string
	Model    string
	Timeout  time.Duration
	MaxBytes int64 // cap on downloaded audio size
}

// AudioClient downloads the best available audio stream for a video (no
// video, no playlist expansion) and submits the raw bytes to an
// OpenAI-compatible speech-to-text endpoint. It is the slowest and costliest
// provider and runs only when every cheaper variant produced no usable text.
type AudioClient struct {
	config AudioConfig
	yt     youtube.Client
	client *http.Client
}

func NewAudioClient(config AudioConfig) *AudioClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.groq.com/openai/v1"
	}
	if config.Model == "" {
		config.Model = "whisper-large-v3"
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Minute
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = 25 << 20 // common speech-to-text upload limit
	}

	return &AudioClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (a *AudioClient) Name() string {
	return "audio"
}

func (a *AudioClient) Fetch(ctx context.Context, videoID string) ([]models.Segment, error) {
	if a.config.APIKey == "" {
		return nil, providerErr(a.Name(), "no speech-to-text credential configured", nil)
	}

	audio, err := a.downloadAudio(ctx, videoID)
	if err != nil {
		return nil, err
	}

	text, err := a.transcribe(ctx, videoID, audio)
	if err != nil {
		return nil, err
	}

	return []models.Segment{{Text: text}}, nil
}

func (a *AudioClient) downloadAudio(ctx context.Context, videoID string) ([]byte, error) {
	video, err := a.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, providerErr(a.Name(), "video metadata fetch failed", err)
	}

	formats := video.Formats.Type("audio")
	if len(formats) == 0 {
		return nil, providerErr(a.Name(), "no audio formats available", nil)
	}
	formats.Sort()

	stream, _, err := a.yt.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return nil, providerErr(a.Name(), "audio stream fetch failed", err)
	}
	defer stream.Close()

	audio, err := io.ReadAll(io.LimitReader(stream, a.config.MaxBytes))
	if err != nil {
		return nil, providerErr(a.Name(), "audio download failed", err)
	}
	if len(audio) == 0 {
		return nil, providerErr(a.Name(), "empty audio stream", nil)
	}
	return audio, nil
}

func (a *AudioClient) transcribe(ctx context.Context, videoID string, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", videoID+".m4a")
	if err != nil {
		return "", providerErr(a.Name(), "building upload failed", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", providerErr(a.Name(), "building upload failed", err)
	}
	writer.WriteField("model", a.config.Model)
	writer.WriteField("response_format", "json")
	if err := writer.Close(); err != nil {
		return "", providerErr(a.Name(), "building upload failed", err)
	}

	endpoint := a.config.BaseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", providerErr(a.Name(), "building request failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", providerErr(a.Name(), "transcription request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", providerErr(a.Name(), fmt.Sprintf("received status code %d", resp.StatusCode), nil)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", providerErr(a.Name(), "malformed payload", err)
	}
	if result.Text == "" {
		return "", providerErr(a.Name(), "empty transcription", nil)
	}
	return result.Text, nil
}
