package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xhad/rescript/internal/models"
)

// WatchPageConfig configures the watch-page scrape provider.
type WatchPageConfig struct {
	BaseURL  string // overridable for tests
	Language string
	Timeout  time.Duration
}

// WatchPageClient scrapes the public watch page for the player response,
// extracts the first matching caption track URL, and decodes the timed-text
// XML behind it. No credential needed, but more fragile than the hosted
// captions endpoint, so it sits after it in the chain.
type WatchPageClient struct {
	config WatchPageConfig
	client *http.Client
}

var captionTracksPattern = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

func NewWatchPageClient(config WatchPageConfig) *WatchPageClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.youtube.com"
	}
	if config.Language == "" {
		config.Language = "en"
	}

	return &WatchPageClient{
		config: config,
		client: newHTTPClient(config.Timeout),
	}
}

func (w *WatchPageClient) Name() string {
	return "watchpage"
}

func (w *WatchPageClient) Fetch(ctx context.Context, videoID string) ([]models.Segment, error) {
	trackURL, err := w.findCaptionTrack(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return w.fetchTimedText(ctx, trackURL)
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

func (w *WatchPageClient) findCaptionTrack(ctx context.Context, videoID string) (string, error) {
	pageURL := w.config.BaseURL + "/watch?v=" + videoID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", providerErr(w.Name(), "building request failed", err)
	}
	req.Header.Set("Accept-Language", w.config.Language)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", providerErr(w.Name(), "watch page request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", providerErr(w.Name(), fmt.Sprintf("received status code %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", providerErr(w.Name(), "parsing watch page failed", err)
	}

	var raw string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if !strings.Contains(text, "captionTracks") {
			return true
		}
		if m := captionTracksPattern.FindStringSubmatch(text); m != nil {
			raw = m[1]
			return false
		}
		return true
	})

	if raw == "" {
		return "", providerErr(w.Name(), "no caption tracks on watch page", nil)
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return "", providerErr(w.Name(), "malformed caption track list", err)
	}
	if len(tracks) == 0 {
		return "", providerErr(w.Name(), "empty caption track list", nil)
	}

	for _, track := range tracks {
		if track.LanguageCode == w.config.Language {
			return track.BaseURL, nil
		}
	}
	return tracks[0].BaseURL, nil
}

type timedText struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedTextRow `xml:"text"`
}

type timedTextRow struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Body  string  `xml:",chardata"`
}

func (w *WatchPageClient) fetchTimedText(ctx context.Context, trackURL string) ([]models.Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, providerErr(w.Name(), "building request failed", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, providerErr(w.Name(), "timed text request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providerErr(w.Name(), fmt.Sprintf("received status code %d", resp.StatusCode), nil)
	}

	var tt timedText
	if err := xml.NewDecoder(resp.Body).Decode(&tt); err != nil {
		return nil, providerErr(w.Name(), "malformed timed text", err)
	}

	if len(tt.Texts) == 0 {
		return nil, providerErr(w.Name(), "empty segment list", nil)
	}

	segments := make([]models.Segment, 0, len(tt.Texts))
	for _, row := range tt.Texts {
		segments = append(segments, models.Segment{
			Text:     html.UnescapeString(row.Body),
			Start:    row.Start,
			Duration: row.Dur,
		})
	}
	return segments, nil
}
