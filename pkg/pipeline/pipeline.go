package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/xhad/rescript/internal/models"
	"github.com/xhad/rescript/internal/types"
	"github.com/xhad/rescript/pkg/aggregator"
	"github.com/xhad/rescript/pkg/resolver"
)

// InputError marks a failure of input validation: empty batch, oversized
// batch, or zero resolvable video IDs. These are the only errors Run can
// return; everything past validation degrades instead of failing.
type InputError struct {
	msg string
}

func (e *InputError) Error() string {
	return e.msg
}

func inputErrorf(format string, args ...interface{}) *InputError {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is an input-validation failure, so the
// HTTP boundary can map it to a 400 rather than a 500.
func IsInputError(err error) bool {
	_, ok := err.(*InputError)
	return ok
}

type PipelineConfig struct {
	MaxBatch int
}

// Pipeline sequences resolution, concurrent transcript acquisition,
// aggregation and the rewrite call end to end.
type Pipeline struct {
	config     PipelineConfig
	chain      types.Acquirer
	aggregator aggregator.Aggregator
	rewriter   types.Rewriter
}

func NewWithConfig(config PipelineConfig, chain types.Acquirer, agg aggregator.Aggregator, rewriter types.Rewriter) *Pipeline {
	if config.MaxBatch == 0 {
		config.MaxBatch = 10
	}

	return &Pipeline{
		config:     config,
		chain:      chain,
		aggregator: agg,
		rewriter:   rewriter,
	}
}

// Run executes the pipeline for a batch of raw URL strings. Input validation
// happens before any network call; after it succeeds, individual video and
// model failures degrade gracefully and Run always returns an Outcome.
func (p *Pipeline) Run(ctx context.Context, rawURLs []string) (models.Outcome, error) {
	if len(rawURLs) == 0 {
		return models.Outcome{}, inputErrorf("no urls provided")
	}
	if len(rawURLs) > p.config.MaxBatch {
		return models.Outcome{}, inputErrorf("too many urls: %d exceeds the maximum of %d", len(rawURLs), p.config.MaxBatch)
	}

	ids, dropped := resolver.ResolveAll(rawURLs)
	if len(ids) == 0 {
		return models.Outcome{}, inputErrorf("no valid video ids found")
	}

	p.chain.Prime(ctx, ids)

	// Fan out one acquisition per video and wait for all to settle. Each
	// goroutine writes only its own slot, so block order equals input order
	// and no locking is needed.
	transcripts := make([]models.Transcript, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			transcripts[i] = p.chain.Acquire(ctx, id, resolver.ShortURL(id))
		}(i, id)
	}
	wg.Wait()

	doc := p.aggregator.Aggregate(transcripts)
	result := p.rewriter.Rewrite(ctx, doc)

	return models.Outcome{
		InputCount:    len(rawURLs),
		ResolvedCount: len(ids),
		DroppedCount:  dropped,
		RawLength:     doc.TotalLength,
		Truncated:     doc.Truncated,
		Result:        result,
	}, nil
}
