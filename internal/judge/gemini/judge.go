package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/talentsift/talentsift/internal/candidate"
	"github.com/talentsift/talentsift/internal/judge"
	"github.com/talentsift/talentsift/internal/logger"
	"github.com/talentsift/talentsift/internal/util"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultSampleSize   = 8
	summaryRuneLimit    = 400
)

// Judge assesses candidate sets with Gemini and parses the structured
// response into sub-metric scores.
type Judge struct {
	generator  contentGenerator
	logger     *zap.Logger
	sampleSize int
	maxLogLen  int
}

func NewJudge(generator contentGenerator, lg *zap.Logger, sampleSize, maxLogLength int) *Judge {
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	return &Judge{
		generator:  generator,
		logger:     lg,
		sampleSize: sampleSize,
		maxLogLen:  maxLogLength,
	}
}

// Assess sends a truncated candidate sample to the model and returns the
// parsed assessment. Any transport or parse failure is returned to the caller,
// which is expected to fall back to heuristics.
func (j *Judge) Assess(ctx context.Context, category string, candidates []*candidate.Profile) (*judge.Assessment, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("role category is required")
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates to assess")
	}

	sample := candidates
	if len(sample) > j.sampleSize {
		sample = sample[:j.sampleSize]
	}

	payload := make([]map[string]any, 0, len(sample))
	for _, p := range sample {
		payload = append(payload, map[string]any{
			"id":               p.ID,
			"name":             p.Name,
			"headline":         p.Headline,
			"summary":          util.TruncateForLog(p.Summary, summaryRuneLimit),
			"skills":           util.TruncateForLog(p.SkillsText, summaryRuneLimit),
			"country":          p.Country,
			"years_experience": p.YearsExperience,
		})
	}

	candidatesJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate payload: %w", err)
	}

	prompt := buildPrompt(category, string(candidatesJSON))

	lg := logger.WithJudgeFields(j.logger, "gemini", j.generator.Model(), category)

	lg.Debug("gemini assessment request",
		zap.Int("candidates", len(candidates)),
		zap.Int("sampled", len(sample)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	lg.Debug("gemini assessment response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, j.maxLogLen)),
	)

	return parseAssessment(raw)
}

func buildPrompt(category, candidatesJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Role category: {{ROLE_CATEGORY}}\n\nCandidates:\n{{CANDIDATES_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{ROLE_CATEGORY}}", category)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES_JSON}}", candidatesJSON)
	return prompt
}

type assessmentPayload struct {
	DomainRelevance     float64  `json:"domain_relevance"`
	QualificationMatch  float64  `json:"qualification_match"`
	ProfileCompleteness float64  `json:"profile_completeness"`
	Diversity           float64  `json:"diversity"`
	Consistency         float64  `json:"consistency"`
	Reasoning           string   `json:"reasoning"`
	Strengths           []string `json:"strengths"`
	Concerns            []string `json:"concerns"`
}

func parseAssessment(raw string) (*judge.Assessment, error) {
	cleaned := extractJSON(raw)

	var data assessmentPayload
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &judge.Assessment{
		DomainRelevance:     clamp01(data.DomainRelevance),
		QualificationMatch:  clamp01(data.QualificationMatch),
		ProfileCompleteness: clamp01(data.ProfileCompleteness),
		Diversity:           clamp01(data.Diversity),
		Consistency:         clamp01(data.Consistency),
		Reasoning:           strings.TrimSpace(data.Reasoning),
		Strengths:           data.Strengths,
		Concerns:            data.Concerns,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
