package evalclient

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	defaultPoolWidth = 4
	maxPoolWidth     = 6
)

// BatchRequest is one category evaluation inside a batch.
type BatchRequest struct {
	Category     string
	CandidateIDs []string
}

// BatchResult pairs a category with its evaluation outcome. Err is set when
// that evaluation failed; sibling evaluations are unaffected.
type BatchResult struct {
	Category string
	Result   *EvaluationResult
	Err      error
}

// BatchEvaluate runs many category evaluations across a bounded worker pool.
// Width is clamped to the hard cap; non-positive width uses the default.
// Results are returned in request order. A failed evaluation records its
// error in its own slot and never cancels the others.
func (c *Client) BatchEvaluate(ctx context.Context, requests []BatchRequest, width int) []BatchResult {
	if width <= 0 {
		width = defaultPoolWidth
	}
	if width > maxPoolWidth {
		width = maxPoolWidth
	}

	results := make([]BatchResult, len(requests))

	g := new(errgroup.Group)
	g.SetLimit(width)

	for i, req := range requests {
		g.Go(func() error {
			result, err := c.Evaluate(ctx, req.Category, req.CandidateIDs)
			results[i] = BatchResult{Category: req.Category, Result: result, Err: err}
			return nil
		})
	}

	// workers never return errors; failures live in their result slots
	_ = g.Wait()

	return results
}
