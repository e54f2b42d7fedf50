// Package retrieval defines the boundary to the vector/keyword index. The
// index itself is an external collaborator; the core only issues queries and
// decodes its results.
package retrieval

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/talentsift/talentsift/internal/candidate"
)

// Strategy selects which retrieval signal the index should use.
type Strategy string

const (
	StrategyVectorOnly  Strategy = "vector_only"
	StrategyKeywordOnly Strategy = "keyword_only"
	StrategyHybrid      Strategy = "hybrid"
	StrategyJudgment    Strategy = "judgment_enhanced"
)

// Valid reports whether the strategy is one of the known enum values.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyVectorOnly, StrategyKeywordOnly, StrategyHybrid, StrategyJudgment:
		return true
	}
	return false
}

// Query describes one retrieval attempt. A query is immutable once issued;
// follow-up attempts construct a new value.
type Query struct {
	Text          string
	Category      string
	Strategy      Strategy
	MaxCandidates int
}

// Validate checks the query invariants before it crosses the boundary.
func (q Query) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("query text is required")
	}
	if q.Category == "" {
		return fmt.Errorf("role category is required")
	}
	if !q.Strategy.Valid() {
		return fmt.Errorf("unknown retrieval strategy: %q", q.Strategy)
	}
	if q.MaxCandidates <= 0 {
		return fmt.Errorf("max candidates must be positive, got %d", q.MaxCandidates)
	}
	return nil
}

// WithStrategy returns a copy of the query using the given strategy.
func (q Query) WithStrategy(s Strategy) Query {
	q.Strategy = s
	return q
}

// Broadened returns a copy with the candidate budget doubled, capped at limit.
func (q Query) Broadened(limit int) Query {
	widened := q.MaxCandidates * 2
	if limit > 0 && widened > limit {
		widened = limit
	}
	q.MaxCandidates = widened
	return q
}

// Result is one retrieved candidate with the raw score the index assigned.
type Result struct {
	Profile *candidate.Profile
	Score   float64
}

// Retriever is implemented by the index boundary. It returns results ordered
// best-first.
type Retriever interface {
	Search(ctx context.Context, query Query) ([]Result, error)
}

// DecodeProfiles converts loosely-typed index rows into candidate profiles.
// Rows are matched by their json attribute names.
func DecodeProfiles(rows []map[string]any) ([]*candidate.Profile, error) {
	var profiles []*candidate.Profile

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &profiles,
		TagName:          "json",
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("building row decoder: %w", err)
	}

	if err := decoder.Decode(rows); err != nil {
		return nil, fmt.Errorf("decoding index rows: %w", err)
	}

	return profiles, nil
}
