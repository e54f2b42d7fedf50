// Package refine post-processes retrieved candidate lists before scoring:
// deduplication, hard-requirement filtering and budget truncation, executed
// as a sequential step pipeline.
package refine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentsift/talentsift/internal/candidate"
)

// Step is a single refinement applied to a candidate list.
type Step interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, c *candidate.Candidates) (*candidate.Candidates, Stats, error)
}

// Stats describes the result of executing a refinement step.
type Stats struct {
	Initial int
	Dropped int
	Left    int
}

// Pipeline executes refinement steps sequentially.
type Pipeline struct {
	steps  []Step
	logger *zap.Logger
}

func New(steps []Step, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{steps: steps, logger: logger}
}

// Run validates every enabled step, then applies them in order, returning
// the refined candidate list.
func (p *Pipeline) Run(ctx context.Context, c *candidate.Candidates) (*candidate.Candidates, error) {
	for _, step := range p.steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range p.steps {
		if !step.IsEnabled() {
			p.logger.Info("refinement step disabled", zap.String("name", step.Name()))
			continue
		}

		next, stats, err := step.Apply(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		p.logger.Info("refinement step",
			zap.String("name", step.Name()),
			zap.Int("initial", stats.Initial),
			zap.Int("dropped", stats.Dropped),
			zap.Int("left", stats.Left),
		)

		c = next
	}

	return c, nil
}
