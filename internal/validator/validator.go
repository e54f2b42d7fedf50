// Package validator scores retrieved candidate sets and decides whether the
// agent should accept them, retry with an adjusted query, or escalate.
package validator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentsift/talentsift/internal/candidate"
	"github.com/talentsift/talentsift/internal/judge"
)

// Status classifies a validated candidate set.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusModerate  Status = "moderate"
	StatusPoor      Status = "poor"
	StatusFailed    Status = "failed"
)

const (
	// DefaultImprovementThreshold is the score below which a retry is worth it.
	DefaultImprovementThreshold = 0.7
	// DefaultEscalationThreshold is the score below which the strategy must change.
	DefaultEscalationThreshold = 0.3

	// neutralScore is used when neither the judge nor the heuristic can
	// produce a signal for a metric.
	neutralScore = 0.6
)

// metricOrder fixes the iteration order so reasoning and suggestions are
// deterministic.
var metricOrder = []string{
	judge.MetricDomainRelevance,
	judge.MetricQualificationMatch,
	judge.MetricProfileCompleteness,
	judge.MetricDiversity,
	judge.MetricConsistency,
}

var metricWeights = map[string]float64{
	judge.MetricDomainRelevance:     0.35,
	judge.MetricQualificationMatch:  0.25,
	judge.MetricProfileCompleteness: 0.15,
	judge.MetricDiversity:           0.10,
	judge.MetricConsistency:         0.15,
}

type metricSuggestion struct {
	metric    string
	threshold float64
	text      string
}

var metricSuggestions = []metricSuggestion{
	{judge.MetricDomainRelevance, 0.5, "broaden domain keywords"},
	{judge.MetricQualificationMatch, 0.5, "relax seniority requirements"},
	{judge.MetricProfileCompleteness, 0.5, "prefer sources with richer profiles"},
	{judge.MetricDiversity, 0.4, "widen geographic and employer variety"},
	{judge.MetricConsistency, 0.5, "tighten the query to a single role"},
}

const emptyResultSuggestion = "broaden query or check source availability"

// Result is the outcome of validating a candidate set.
type Result struct {
	Status         Status
	Score          float64
	Reasoning      string
	Suggestions    []string
	Metrics        map[string]float64
	ShouldRetry    bool
	ShouldEscalate bool
}

// Validator computes quality metrics for a candidate set, preferring the
// judgment collaborator and falling back to keyword heuristics when it is
// unavailable. Validate never returns an error.
type Validator struct {
	judge                judge.Judge
	improvementThreshold float64
	escalationThreshold  float64
	logger               *zap.Logger
}

// New creates a Validator. The judge may be nil, in which case only the
// heuristic path is used. Non-positive thresholds fall back to defaults.
func New(j judge.Judge, improvementThreshold, escalationThreshold float64, logger *zap.Logger) *Validator {
	if improvementThreshold <= 0 {
		improvementThreshold = DefaultImprovementThreshold
	}
	if escalationThreshold <= 0 {
		escalationThreshold = DefaultEscalationThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Validator{
		judge:                j,
		improvementThreshold: improvementThreshold,
		escalationThreshold:  escalationThreshold,
		logger:               logger,
	}
}

// Validate scores the candidate set for the role category. budgetRemaining
// reports whether the calling session still has retry iterations left.
func (v *Validator) Validate(ctx context.Context, category string, keywords []string, c *candidate.Candidates, budgetRemaining bool) *Result {
	if c == nil || c.Len() == 0 {
		return &Result{
			Status:      StatusFailed,
			Score:       0.0,
			Reasoning:   "no candidates to validate",
			Suggestions: []string{emptyResultSuggestion},
			Metrics:     map[string]float64{},
		}
	}

	assessment := v.assess(ctx, category, keywords, c.Items)
	metrics := assessment.Metrics()

	score := 0.0
	for _, name := range metricOrder {
		score += metricWeights[name] * metrics[name]
	}

	status := statusFor(score)

	result := &Result{
		Status:         status,
		Score:          score,
		Reasoning:      reasoningFor(assessment, score),
		Suggestions:    suggestionsFor(metrics),
		Metrics:        metrics,
		ShouldRetry:    score < v.improvementThreshold && budgetRemaining && status != StatusExcellent,
		ShouldEscalate: score < v.escalationThreshold,
	}

	v.logger.Info("validation complete",
		zap.String("role_category", category),
		zap.String("status", string(status)),
		zap.Float64("score", score),
		zap.Bool("should_retry", result.ShouldRetry),
		zap.Bool("should_escalate", result.ShouldEscalate),
	)

	return result
}

func (v *Validator) assess(ctx context.Context, category string, keywords []string, items []*candidate.Profile) *judge.Assessment {
	if v.judge != nil {
		assessment, err := v.judge.Assess(ctx, category, items)
		if err == nil {
			return assessment
		}
		v.logger.Warn("judgment collaborator unavailable, using heuristic fallback",
			zap.String("role_category", category),
			zap.Error(err),
		)
	}

	return heuristicAssessment(keywords, items)
}

// heuristicAssessment derives the sub-metrics from keyword overlap and
// profile field coverage. It is pure arithmetic with guards and cannot fail;
// metrics without any signal settle on a neutral value.
func heuristicAssessment(keywords []string, items []*candidate.Profile) *judge.Assessment {
	overlaps := make([]float64, 0, len(items))
	completeness := 0.0
	experience := 0.0
	countries := make(map[string]struct{}, len(items))

	for _, p := range items {
		overlaps = append(overlaps, keywordOverlap(p, keywords))
		completeness += fieldCoverage(p)
		experience += experienceSignal(p.YearsExperience)
		if country := strings.TrimSpace(strings.ToLower(p.Country)); country != "" {
			countries[country] = struct{}{}
		}
	}

	n := float64(len(items))

	relevance := neutralScore
	consistency := 1.0
	if len(keywords) > 0 {
		sum, low, high := 0.0, 1.0, 0.0
		for _, o := range overlaps {
			sum += o
			if o < low {
				low = o
			}
			if o > high {
				high = o
			}
		}
		relevance = sum / n
		consistency = 1.0 - (high - low)
	}

	diversity := 0.5
	if len(items) > 1 {
		diversity = float64(len(countries)) / n
		if diversity > 1 {
			diversity = 1
		}
	}

	return &judge.Assessment{
		DomainRelevance:     relevance,
		QualificationMatch:  experience / n,
		ProfileCompleteness: completeness / n,
		Diversity:           diversity,
		Consistency:         consistency,
		Reasoning:           "heuristic keyword-overlap assessment",
	}
}

func keywordOverlap(p *candidate.Profile, keywords []string) float64 {
	if len(keywords) == 0 {
		return neutralScore
	}

	matched := 0
	for _, kw := range keywords {
		if p.HasKeyword(kw) {
			matched++
		}
	}

	return float64(matched) / float64(len(keywords))
}

func fieldCoverage(p *candidate.Profile) float64 {
	fields := []string{p.Summary, p.Headline, p.SkillsText, p.ExperienceText, p.EducationText}
	filled := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(fields))
}

func experienceSignal(years int) float64 {
	if years <= 0 {
		return neutralScore
	}
	signal := float64(years) / 10.0
	if signal > 1 {
		return 1
	}
	return signal
}

func statusFor(score float64) Status {
	switch {
	case score >= 0.9:
		return StatusExcellent
	case score >= 0.8:
		return StatusGood
	case score >= 0.6:
		return StatusModerate
	case score >= 0.3:
		return StatusPoor
	default:
		return StatusFailed
	}
}

func reasoningFor(assessment *judge.Assessment, score float64) string {
	reasoning := strings.TrimSpace(assessment.Reasoning)
	if reasoning == "" {
		reasoning = "composite of sub-metric scores"
	}
	return fmt.Sprintf("%s (score %.2f)", reasoning, score)
}

func suggestionsFor(metrics map[string]float64) []string {
	suggestions := make([]string, 0, len(metricSuggestions))
	for _, s := range metricSuggestions {
		if metrics[s.metric] < s.threshold {
			suggestions = append(suggestions, s.text)
		}
	}
	return suggestions
}
