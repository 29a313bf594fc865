package models

// TranscriptStatus reports whether transcript text could be acquired for a video.
type TranscriptStatus string

const (
	StatusOK          TranscriptStatus = "ok"
	StatusUnavailable TranscriptStatus = "unavailable"
)

// Segment is a timed span of spoken text as returned by a transcript provider.
// Segments only exist inside a provider call; they are joined into plain text
// before anything downstream sees them.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the per-video result produced by the fallback chain,
// exactly once per requested video.
type Transcript struct {
	VideoID   string
	SourceURL string
	Text      string
	Status    TranscriptStatus
	Reason    string
}

func (t Transcript) Available() bool {
	return t.Status == StatusOK
}

// Document is the ordered concatenation of per-video transcript blocks.
// TotalLength is the length before any truncation was applied, so prompts
// can mention how much was cut.
type Document struct {
	Text        string
	Blocks      int
	TotalLength int
	Truncated   bool
}

// RewriteResult carries either a model-produced script or a degraded
// fallback text. Exactly one of Script and Preview is populated.
type RewriteResult struct {
	Script   string
	Preview  string
	Degraded bool
	Reason   string
}

// Text returns whichever of the two result fields is populated.
func (r RewriteResult) Text() string {
	if r.Degraded {
		return r.Preview
	}
	return r.Script
}

// Outcome wraps the final rewrite result with batch bookkeeping.
type Outcome struct {
	InputCount    int
	ResolvedCount int
	DroppedCount  int
	RawLength     int
	Truncated     bool
	Result        RewriteResult
}
