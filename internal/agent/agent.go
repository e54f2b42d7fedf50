// Package agent runs the iterative search-validate-retry loop: it retrieves
// candidates with an escalating strategy, ranks and refines them, validates
// the result and retries until the set is good enough or the iteration
// budget runs out.
package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentsift/talentsift/internal/candidate"
	"github.com/talentsift/talentsift/internal/refine"
	"github.com/talentsift/talentsift/internal/retrieval"
	"github.com/talentsift/talentsift/internal/validator"
)

// State names the orchestration phases, used for logging and the terminal
// outcome.
type State string

const (
	StateIdle       State = "idle"
	StateSearching  State = "searching"
	StateValidating State = "validating"
	StateRetrying   State = "retrying"
	StateAccepted   State = "accepted"
	StateExhausted  State = "exhausted"
)

const (
	// DefaultMaxIterations bounds the retry loop.
	DefaultMaxIterations = 3
	defaultMaxCandidates = 10
	defaultBroadenLimit  = 50
)

// Role is the injected per-role search configuration. Required and excluded
// keywords are hard criteria; preferred keywords only boost ranking.
type Role struct {
	Category          string   `mapstructure:"category"`
	Query             string   `mapstructure:"query"`
	PreferredKeywords []string `mapstructure:"preferred_keywords"`
	RequiredKeywords  []string `mapstructure:"required_keywords"`
	ExcludedKeywords  []string `mapstructure:"excluded_keywords"`
	TargetYears       int      `mapstructure:"target_years"`
	MaxCandidates     int      `mapstructure:"max_candidates"`
}

func (r Role) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("role category is required")
	}
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("role query is required")
	}
	return nil
}

// Outcome is the terminal result of one orchestrated search.
type Outcome struct {
	State        State
	Candidates   *candidate.Candidates
	Score        float64
	Results      []*validator.Result
	Improvements []string
	Iterations   int
}

// Agent drives search sessions. It holds no per-session state and is safe to
// reuse across roles.
type Agent struct {
	retriever     retrieval.Retriever
	validator     *validator.Validator
	weights       candidate.Weights
	maxIterations int
	broadenLimit  int
	logger        *zap.Logger
}

func New(retriever retrieval.Retriever, v *validator.Validator, weights candidate.Weights, maxIterations int, logger *zap.Logger) *Agent {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Agent{
		retriever:     retriever,
		validator:     v,
		weights:       weights,
		maxIterations: maxIterations,
		broadenLimit:  defaultBroadenLimit,
		logger:        logger,
	}
}

// Run executes the full state machine for one role and returns the
// best-scoring candidate list seen across all iterations together with the
// ordered validation audit trail.
func (a *Agent) Run(ctx context.Context, role Role) (*Outcome, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if _, err := a.weights.Normalize(); err != nil {
		return nil, err
	}

	maxCandidates := role.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}

	base := retrieval.Query{
		Text:          role.Query,
		Category:      role.Category,
		Strategy:      retrieval.StrategyHybrid,
		MaxCandidates: maxCandidates,
	}

	session := newSession(base)

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		session.Iteration = iteration
		query := queryForIteration(base, iteration, a.broadenLimit)

		a.logger.Info("search iteration",
			zap.String("state", string(StateSearching)),
			zap.String("role_category", role.Category),
			zap.Int("iteration", iteration),
			zap.String("strategy", string(query.Strategy)),
			zap.Int("max_candidates", query.MaxCandidates),
		)

		results, err := a.retriever.Search(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Empty results are a first-class failed validation, not a
			// fatal error; the retry logic decides what happens next.
			a.logger.Warn("retrieval failed",
				zap.String("role_category", role.Category),
				zap.Int("iteration", iteration),
				zap.Error(err),
			)
			results = nil
		}

		ranked, err := a.rank(results, role)
		if err != nil {
			return nil, err
		}

		refined, err := a.refine(ctx, ranked, role, query.MaxCandidates)
		if err != nil {
			return nil, err
		}

		a.logger.Info("validating candidates",
			zap.String("state", string(StateValidating)),
			zap.String("role_category", role.Category),
			zap.Int("iteration", iteration),
			zap.Int("candidates", refined.Len()),
		)

		budgetRemaining := iteration+1 < a.maxIterations
		result := a.validator.Validate(ctx, role.Category, role.PreferredKeywords, refined, budgetRemaining)
		session.record(result, refined)

		if result.Status == validator.StatusExcellent || !result.ShouldRetry {
			break
		}

		session.improve(result.Suggestions...)
		if label := escalationLabel(iteration + 1); label != "" {
			session.improve(label)
		}

		a.logger.Info("retrying with adjusted strategy",
			zap.String("state", string(StateRetrying)),
			zap.String("role_category", role.Category),
			zap.Int("next_iteration", iteration+1),
			zap.Float64("score", result.Score),
		)
	}

	state := StateExhausted
	if session.Best().Len() > 0 {
		state = StateAccepted
	}

	a.logger.Info("session finished",
		zap.String("state", string(state)),
		zap.String("role_category", role.Category),
		zap.Int("iterations", len(session.Results)),
		zap.Float64("best_score", session.BestScore()),
		zap.Int("candidates", session.Best().Len()),
	)

	return &Outcome{
		State:        state,
		Candidates:   session.Best(),
		Score:        session.BestScore(),
		Results:      session.Results,
		Improvements: session.Improvements,
		Iterations:   len(session.Results),
	}, nil
}

// queryForIteration applies the fixed strategy-escalation order: hybrid
// first, then vector-only with a widened candidate budget, then
// keyword-only.
func queryForIteration(base retrieval.Query, iteration, broadenLimit int) retrieval.Query {
	switch iteration {
	case 0:
		return base.WithStrategy(retrieval.StrategyHybrid)
	case 1:
		return base.Broadened(broadenLimit).WithStrategy(retrieval.StrategyVectorOnly)
	default:
		return base.WithStrategy(retrieval.StrategyKeywordOnly)
	}
}

func escalationLabel(nextIteration int) string {
	switch nextIteration {
	case 1:
		return "widened candidate budget, switched strategy to vector_only"
	case 2:
		return "switched strategy to keyword_only"
	default:
		return ""
	}
}

func (a *Agent) rank(results []retrieval.Result, role Role) (*candidate.Candidates, error) {
	ranking := make(candidate.Ranking, 0, len(results))
	for _, r := range results {
		score, err := candidate.ScoreProfile(r.Profile, r.Score, role.PreferredKeywords, role.TargetYears, a.weights)
		if err != nil {
			return nil, err
		}
		ranking = append(ranking, candidate.Ranked{Profile: r.Profile, Score: score})
	}

	ranking.Sort()
	return ranking.Profiles(), nil
}

func (a *Agent) refine(ctx context.Context, c *candidate.Candidates, role Role, limit int) (*candidate.Candidates, error) {
	pipeline := refine.New([]refine.Step{
		refine.NewDedupe(),
		refine.NewHardFilter(role.RequiredKeywords, role.ExcludedKeywords),
		refine.NewTruncate(limit),
	}, a.logger)

	return pipeline.Run(ctx, c)
}
