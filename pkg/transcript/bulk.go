package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/xhad/rescript/internal/models"
)

// BulkConfig configures the batched transcript-API provider.
type BulkConfig struct {
	BaseURL string
	Token   string // basic authorization credential; provider is unavailable without it
	Timeout time.Duration
}

// BulkClient talks to a transcript API that accepts all video IDs in a single
// authorized POST. The one-call-many-IDs shape is adapted to the per-ID
// provider contract: Prime batch-fetches the IDs not already seen and caches
// per-ID entries, and Fetch reads the cache, lazily fetching IDs that were
// never primed. The client lives for the process lifetime and handles any
// number of batches; each new batch only asks the API for unseen IDs. A
// missing key in the response means "no transcript", not a hard error.
type BulkClient struct {
	config BulkConfig
	client *http.Client

	mu    sync.Mutex
	cache map[string]string
	// misses records IDs the API was already asked about but returned no
	// transcript for; the value is the batch error, if the call itself failed.
	misses map[string]error
}

func NewBulkClient(config BulkConfig) *BulkClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.youtube-transcript.io/api/transcripts"
	}

	return &BulkClient{
		config: config,
		client: newHTTPClient(config.Timeout),
		cache:  make(map[string]string),
		misses: make(map[string]error),
	}
}

func (b *BulkClient) Name() string {
	return "bulk"
}

// Prime issues one batched call covering the given IDs that have not been
// fetched before. Failures are recorded per ID and surfaced from Fetch, so a
// broken batch endpoint degrades exactly like any other provider failure.
func (b *BulkClient) Prime(ctx context.Context, videoIDs []string) {
	if b.config.Token == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var pending []string
	for _, id := range videoIDs {
		if _, ok := b.cache[id]; ok {
			continue
		}
		if _, ok := b.misses[id]; ok {
			continue
		}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return
	}

	b.fetchInto(ctx, pending)
}

func (b *BulkClient) Fetch(ctx context.Context, videoID string) ([]models.Segment, error) {
	if b.config.Token == "" {
		return nil, providerErr(b.Name(), "no credential configured", nil)
	}

	b.mu.Lock()
	text, cached := b.cache[videoID]
	batchErr, seen := b.misses[videoID]
	if !cached && !seen {
		b.fetchInto(ctx, []string{videoID})
		text, cached = b.cache[videoID]
		batchErr = b.misses[videoID]
	}
	b.mu.Unlock()

	if cached {
		return []models.Segment{{Text: text}}, nil
	}
	if batchErr != nil {
		return nil, providerErr(b.Name(), "batched call failed", batchErr)
	}
	return nil, providerErr(b.Name(), "no transcript for video", nil)
}

// fetchInto must be called with b.mu held. Every requested ID ends up either
// in the cache or in misses, so it is never asked for again.
func (b *BulkClient) fetchInto(ctx context.Context, videoIDs []string) {
	err := b.fetchBatch(ctx, videoIDs)
	for _, id := range videoIDs {
		if _, ok := b.cache[id]; !ok {
			b.misses[id] = err
		}
	}
}

// bulkEntry tolerates the two payload shapes observed in the wild: a plain
// text/transcript field, or a track list with timed segments.
type bulkEntry struct {
	Text       string `json:"text"`
	Transcript string `json:"transcript"`
	Tracks     []struct {
		Transcript []models.Segment `json:"transcript"`
	} `json:"tracks"`
}

func (e bulkEntry) text() string {
	if e.Text != "" {
		return e.Text
	}
	if e.Transcript != "" {
		return e.Transcript
	}
	for _, track := range e.Tracks {
		if len(track.Transcript) > 0 {
			return JoinSegments(track.Transcript)
		}
	}
	return ""
}

// fetchBatch must be called with b.mu held.
func (b *BulkClient) fetchBatch(ctx context.Context, videoIDs []string) error {
	payload, err := json.Marshal(map[string][]string{"ids": videoIDs})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Basic "+b.config.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("received status code %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var entries map[string]bulkEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("malformed payload: %v", err)
	}

	for id, entry := range entries {
		if text := entry.text(); text != "" {
			b.cache[id] = text
		}
	}
	return nil
}
