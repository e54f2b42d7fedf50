// Package judge defines the optional judgment collaborator used to assess
// candidate-set quality. Callers must tolerate the collaborator being
// unavailable and fall back to heuristics.
package judge

import (
	"context"

	"github.com/talentsift/talentsift/internal/candidate"
)

// Metric names shared between judge implementations and the validator's
// heuristic fallback.
const (
	MetricDomainRelevance     = "domain_relevance"
	MetricQualificationMatch  = "qualification_match"
	MetricProfileCompleteness = "profile_completeness"
	MetricDiversity           = "diversity"
	MetricConsistency         = "consistency"
)

// Assessment carries the structured sub-metric scores (each in [0,1])
// returned by a judgment call, plus free-text reasoning.
type Assessment struct {
	DomainRelevance     float64
	QualificationMatch  float64
	ProfileCompleteness float64
	Diversity           float64
	Consistency         float64

	Reasoning string
	Strengths []string
	Concerns  []string
}

// Metrics returns the sub-metric scores keyed by their canonical names.
func (a *Assessment) Metrics() map[string]float64 {
	return map[string]float64{
		MetricDomainRelevance:     a.DomainRelevance,
		MetricQualificationMatch:  a.QualificationMatch,
		MetricProfileCompleteness: a.ProfileCompleteness,
		MetricDiversity:           a.Diversity,
		MetricConsistency:         a.Consistency,
	}
}

// Judge assesses a candidate set against a role category.
type Judge interface {
	Assess(ctx context.Context, category string, candidates []*candidate.Profile) (*Assessment, error)
}
