package types

import (
	"context"

	"github.com/xhad/rescript/internal/models"
)

// Provider produces transcript segments for a single video, or an error
// describing why it could not. Implementations must never panic; every
// failure mode is converted into an error value.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, videoID string) ([]models.Segment, error)
}

// Primer is implemented by providers that can pre-warm themselves with a
// single batched call covering all video IDs in a request.
type Primer interface {
	Prime(ctx context.Context, videoIDs []string)
}

// Acquirer turns a video ID into a Transcript. It always returns a value:
// when every provider fails the Transcript carries StatusUnavailable.
type Acquirer interface {
	Acquire(ctx context.Context, videoID, sourceURL string) models.Transcript
	Prime(ctx context.Context, videoIDs []string)
}

// Rewriter produces exactly one RewriteResult per invocation. A failed or
// credential-less completion call yields a degraded result, never an error.
type Rewriter interface {
	Rewrite(ctx context.Context, doc models.Document) models.RewriteResult
}
