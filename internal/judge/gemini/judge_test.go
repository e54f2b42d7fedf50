package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/talentsift/talentsift/internal/candidate"
)

type stubGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func sampleProfiles() []*candidate.Profile {
	return []*candidate.Profile{
		{ID: "cand-1", Name: "Jordan Doe", Headline: "Interventional Radiologist", Summary: "15 years in diagnostic imaging", Country: "US", YearsExperience: 15},
		{ID: "cand-2", Name: "Sam Lee", Headline: "Radiology Resident", Summary: "Early career radiologist", Country: "CA", YearsExperience: 2},
	}
}

func TestJudgeAssess(t *testing.T) {
	stub := &stubGenerator{response: `{
		"domain_relevance": 0.9,
		"qualification_match": 0.8,
		"profile_completeness": 0.7,
		"diversity": 0.6,
		"consistency": 0.85,
		"reasoning": "Strong radiology backgrounds",
		"strengths": ["relevant specialties"],
		"concerns": ["one junior profile"]
	}`}

	j := NewJudge(stub, zap.NewNop(), 0, 0)

	assessment, err := j.Assess(context.Background(), "radiology", sampleProfiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.DomainRelevance != 0.9 {
		t.Fatalf("expected domain_relevance 0.9, got %v", assessment.DomainRelevance)
	}

	if assessment.Reasoning != "Strong radiology backgrounds" {
		t.Fatalf("unexpected reasoning: %s", assessment.Reasoning)
	}

	if !strings.Contains(stub.lastPrompt, "radiology") {
		t.Fatalf("expected role category in prompt")
	}

	if !strings.Contains(stub.lastPrompt, "cand-1") {
		t.Fatalf("expected candidate ids in prompt")
	}
}

func TestJudgeAssessClampsOutOfRangeScores(t *testing.T) {
	stub := &stubGenerator{response: `{
		"domain_relevance": 1.7,
		"qualification_match": -0.2,
		"profile_completeness": 0.5,
		"diversity": 0.5,
		"consistency": 0.5,
		"reasoning": "out of range"
	}`}

	j := NewJudge(stub, zap.NewNop(), 0, 0)

	assessment, err := j.Assess(context.Background(), "radiology", sampleProfiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.DomainRelevance != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %v", assessment.DomainRelevance)
	}

	if assessment.QualificationMatch != 0.0 {
		t.Fatalf("expected clamp to 0.0, got %v", assessment.QualificationMatch)
	}
}

func TestJudgeAssessRejectsEmptyCandidates(t *testing.T) {
	stub := &stubGenerator{response: "{}"}
	j := NewJudge(stub, zap.NewNop(), 0, 0)

	if _, err := j.Assess(context.Background(), "radiology", nil); err == nil {
		t.Fatal("expected error for empty candidate list")
	}

	if stub.calls != 0 {
		t.Fatalf("expected no generator calls, got %d", stub.calls)
	}
}

func TestJudgeAssessTruncatesSample(t *testing.T) {
	stub := &stubGenerator{response: `{
		"domain_relevance": 0.5,
		"qualification_match": 0.5,
		"profile_completeness": 0.5,
		"diversity": 0.5,
		"consistency": 0.5,
		"reasoning": "ok"
	}`}

	j := NewJudge(stub, zap.NewNop(), 1, 0)

	if _, err := j.Assess(context.Background(), "radiology", sampleProfiles()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(stub.lastPrompt, "cand-2") {
		t.Fatalf("expected sample truncated to 1 candidate, prompt: %s", stub.lastPrompt)
	}
}

func TestJudgeAssessPropagatesGeneratorErrors(t *testing.T) {
	stub := &stubGenerator{err: errors.New("backend down")}
	j := NewJudge(stub, zap.NewNop(), 0, 0)

	if _, err := j.Assess(context.Background(), "radiology", sampleProfiles()); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseAssessmentHandlesCodeBlock(t *testing.T) {
	raw := "```json\n{\"domain_relevance\": 0.8, \"qualification_match\": 0.7, \"profile_completeness\": 0.6, \"diversity\": 0.5, \"consistency\": 0.9, \"reasoning\": \"fine\"}\n```"

	assessment, err := parseAssessment(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.Consistency != 0.9 {
		t.Fatalf("expected consistency 0.9, got %v", assessment.Consistency)
	}
}

func TestParseAssessmentRejectsNonJSON(t *testing.T) {
	if _, err := parseAssessment("the candidates look great"); err == nil {
		t.Fatal("expected parse error")
	}
}
