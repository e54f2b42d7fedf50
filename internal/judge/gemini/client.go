// Package gemini implements the judgment collaborator on top of the Google
// GenAI client.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-pro"
	defaultMaxRetries = 2

	baseRetryDelay = 2 * time.Second
	// Quota hints above this wait are treated as a hard failure so callers
	// can fall back to heuristics instead of stalling the run.
	maxQuotaWait = 30 * time.Second
)

// swappable for tests
var sleep = time.Sleep

var retryInPattern = regexp.MustCompile(`retry in ([0-9.]+)s`)

type contentCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based
// interactions with transient-error retries.
type Generator struct {
	models     contentCaller
	modelName  string
	maxRetries int
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	return &Generator{models: client.Models, modelName: model, maxRetries: maxRetries}, nil
}

// GenerateContent sends the prompt to Gemini and returns the first textual
// response, retrying transient failures.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
		if err == nil {
			return collectText(resp)
		}

		lastErr = err

		delay, retryable := retryDelay(err, attempt)
		if !retryable || attempt == g.maxRetries {
			break
		}

		sleep(delay)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// retryDelay decides whether the error is worth retrying and how long to wait
// before the next attempt. Server errors back off exponentially. Rate-limit
// errors honor the quota hint embedded in the message unless the hint exceeds
// maxQuotaWait, in which case the call fails immediately.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	backoff := baseRetryDelay << attempt

	switch {
	case apiErr.Code == 429:
		if hint, ok := quotaHint(apiErr.Message); ok {
			if hint > maxQuotaWait {
				return 0, false
			}
			if hint > backoff {
				return hint, true
			}
		}
		return backoff, true
	case apiErr.Code >= 500:
		return backoff, true
	default:
		return 0, false
	}
}

func quotaHint(message string) (time.Duration, bool) {
	match := retryInPattern.FindStringSubmatch(strings.ToLower(message))
	if match == nil {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	return time.Duration(seconds * float64(time.Second)), true
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	var builder strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
