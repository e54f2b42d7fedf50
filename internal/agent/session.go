package agent

import (
	"time"

	"github.com/talentsift/talentsift/internal/candidate"
	"github.com/talentsift/talentsift/internal/retrieval"
	"github.com/talentsift/talentsift/internal/validator"
)

// Session owns the state of one orchestrated search: the base query, the
// per-iteration validation audit trail and the best-scoring candidate list
// seen so far. Sessions are single-threaded and never shared.
type Session struct {
	Query        retrieval.Query
	Results      []*validator.Result
	Improvements []string
	Iteration    int
	StartedAt    time.Time

	best      *candidate.Candidates
	bestScore float64
	hasBest   bool
}

func newSession(query retrieval.Query) *Session {
	return &Session{
		Query:     query,
		StartedAt: time.Now(),
	}
}

// record appends the iteration's validation result and updates the
// best-so-far candidate list. A later, equal-or-worse iteration never
// replaces an earlier best.
func (s *Session) record(result *validator.Result, candidates *candidate.Candidates) {
	s.Results = append(s.Results, result)

	if result.Status == validator.StatusFailed && candidates.Len() == 0 {
		return
	}

	if !s.hasBest || result.Score > s.bestScore {
		s.best = candidates
		s.bestScore = result.Score
		s.hasBest = true
	}
}

// Best returns the best-scoring candidate list across all iterations, or an
// empty list when no iteration produced candidates.
func (s *Session) Best() *candidate.Candidates {
	if !s.hasBest {
		return &candidate.Candidates{}
	}
	return s.best
}

// BestScore returns the validation score of the best iteration.
func (s *Session) BestScore() float64 {
	return s.bestScore
}

func (s *Session) improve(labels ...string) {
	s.Improvements = append(s.Improvements, labels...)
}
