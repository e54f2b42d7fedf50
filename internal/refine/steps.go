package refine

import (
	"context"
	"fmt"

	"github.com/talentsift/talentsift/internal/candidate"
)

type dedupeStep struct{}

// NewDedupe creates a step that removes duplicate candidate ids, keeping the
// first (best-ranked) occurrence.
func NewDedupe() Step {
	return &dedupeStep{}
}

func (s *dedupeStep) Name() string { return "dedupe" }

func (s *dedupeStep) Disable(string) {}

func (s *dedupeStep) IsEnabled() bool { return true }

func (s *dedupeStep) Validate() error { return nil }

func (s *dedupeStep) Apply(_ context.Context, c *candidate.Candidates) (*candidate.Candidates, Stats, error) {
	initial := c.Len()

	seen := make(map[string]struct{}, initial)
	unique := make([]*candidate.Profile, 0, initial)
	for _, item := range c.Items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		unique = append(unique, item)
	}

	next := &candidate.Candidates{Items: unique}
	return next, Stats{Initial: initial, Dropped: initial - next.Len(), Left: next.Len()}, nil
}

type hardFilterStep struct {
	disabled bool
	reason   string
	mustHave []string
	exclude  []string
}

// NewHardFilter creates a step that drops candidates failing the role's
// mandatory requirements. Soft preferences never drop anyone; they only
// influence ranking.
func NewHardFilter(mustHave, exclude []string) Step {
	return &hardFilterStep{mustHave: mustHave, exclude: exclude}
}

func (s *hardFilterStep) Name() string { return "hard_filter" }

func (s *hardFilterStep) Disable(reason string) {
	s.disabled = true
	s.reason = reason
}

func (s *hardFilterStep) IsEnabled() bool {
	return !s.disabled && (len(s.mustHave) > 0 || len(s.exclude) > 0)
}

func (s *hardFilterStep) Validate() error { return nil }

func (s *hardFilterStep) Apply(_ context.Context, c *candidate.Candidates) (*candidate.Candidates, Stats, error) {
	initial := c.Len()

	kept := make([]*candidate.Profile, 0, initial)
	for _, item := range c.Items {
		if item.SatisfiesHardFilters(s.mustHave, s.exclude) {
			kept = append(kept, item)
		}
	}

	next := &candidate.Candidates{Items: kept}
	return next, Stats{Initial: initial, Dropped: initial - next.Len(), Left: next.Len()}, nil
}

type truncateStep struct {
	limit int
}

// NewTruncate creates a step that caps the list at the query's candidate
// budget.
func NewTruncate(limit int) Step {
	return &truncateStep{limit: limit}
}

func (s *truncateStep) Name() string { return "truncate" }

func (s *truncateStep) Disable(string) {}

func (s *truncateStep) IsEnabled() bool { return true }

func (s *truncateStep) Validate() error {
	if s.limit <= 0 {
		return fmt.Errorf("truncate limit must be positive, got %d", s.limit)
	}
	return nil
}

func (s *truncateStep) Apply(_ context.Context, c *candidate.Candidates) (*candidate.Candidates, Stats, error) {
	initial := c.Len()
	c.Truncate(s.limit)
	return c, Stats{Initial: initial, Dropped: initial - c.Len(), Left: c.Len()}, nil
}
