package transcript

import (
	"context"
	"log"
	"strings"

	"github.com/xhad/rescript/internal/models"
	"github.com/xhad/rescript/internal/types"
)

// Chain tries providers in a fixed priority order per video, short-circuiting
// on the first one that returns non-empty text. An empty or whitespace-only
// result counts as a failure for fallback purposes. When every provider
// fails, Acquire yields a Transcript with StatusUnavailable instead of an
// error, so the batch as a whole always completes.
type Chain struct {
	providers []types.Provider
}

func NewChain(providers ...types.Provider) *Chain {
	return &Chain{providers: providers}
}

// Prime forwards the full ID list to providers that can pre-warm themselves
// with one batched call.
func (c *Chain) Prime(ctx context.Context, videoIDs []string) {
	for _, p := range c.providers {
		if primer, ok := p.(types.Primer); ok {
			primer.Prime(ctx, videoIDs)
		}
	}
}

func (c *Chain) Acquire(ctx context.Context, videoID, sourceURL string) models.Transcript {
	reason := "no providers configured"

	for _, p := range c.providers {
		segments, err := p.Fetch(ctx, videoID)
		if err != nil {
			reason = err.Error()
			log.Printf("transcript: %s failed for %s: %v", p.Name(), videoID, err)
			continue
		}

		text := JoinSegments(segments)
		if strings.TrimSpace(text) == "" {
			reason = p.Name() + ": empty transcript"
			continue
		}

		return models.Transcript{
			VideoID:   videoID,
			SourceURL: sourceURL,
			Text:      text,
			Status:    models.StatusOK,
		}
	}

	return models.Transcript{
		VideoID:   videoID,
		SourceURL: sourceURL,
		Status:    models.StatusUnavailable,
		Reason:    reason,
	}
}
