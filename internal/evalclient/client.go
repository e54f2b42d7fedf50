// Package evalclient talks to the evaluation backend that produces
// authoritative quality scores for candidate sets. The transport is
// hardened: proactive rate limiting, a local resource-pressure gate,
// bounded retries with exponential backoff and a separate adaptive schedule
// for rate-limited responses.
package evalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/talentsift/talentsift/internal/util"
)

const (
	apiURL = "https://api.talentsift.dev"

	// Backend limit on ids per evaluate call; longer lists are truncated
	// and callers must aggregate across calls.
	maxEvaluateIDs = 5

	defaultMaxRetries = 3
	requestTimeout    = 30 * time.Second

	transientBackoffBase = 1 * time.Second
	transientBackoffMax  = 30 * time.Second
	rateLimitBackoffBase = 5 * time.Second
	rateLimitBackoffMax  = 2 * time.Minute

	// Proactive throttle so a burst of sessions cannot flood the backend
	// even before it starts answering 429.
	requestsPerSecond = 5
)

// swappable for tests
var sleep = util.WaitFor

// BackendError is the typed failure returned after retries are exhausted or
// the backend rejects a request outright. It wraps the last underlying
// error.
type BackendError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("evaluation backend %s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// CandidateBreakdown is the backend's per-candidate sub-score detail.
type CandidateBreakdown struct {
	CandidateID string             `json:"candidate_id"`
	FinalScore  float64            `json:"final_score"`
	SubScores   map[string]float64 `json:"sub_scores"`
}

// EvaluationResult is the backend's verdict for one category. Immutable once
// returned.
type EvaluationResult struct {
	Category          string               `json:"category"`
	CandidateCount    int                  `json:"candidate_count"`
	AverageFinalScore float64              `json:"average_final_score"`
	PerCandidate      []CandidateBreakdown `json:"per_candidate"`
}

type evaluateRequest struct {
	Category     string   `json:"category"`
	CandidateIDs []string `json:"candidate_ids"`
}

// Client is the hardened HTTP client for the evaluation backend.
type Client struct {
	credential string
	logger     *zap.Logger

	HTTPClient *http.Client
	APIURL     string
	MaxRetries int

	limiter          *rate.Limiter
	gate             *resourceGate
	transientBackoff Backoff
	rateLimitBackoff *adaptiveBackoff
}

// New creates a Client authenticated with the given static credential.
func New(logger *zap.Logger, credential string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		credential: credential,
		logger:     logger,
		APIURL:     apiURL,
		MaxRetries: defaultMaxRetries,
		HTTPClient: &http.Client{
			Timeout: requestTimeout,
		},
		limiter:          rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		gate:             &resourceGate{logger: logger},
		transientBackoff: Backoff{Base: transientBackoffBase, Max: transientBackoffMax},
		rateLimitBackoff: newAdaptiveBackoff(rateLimitBackoffBase, rateLimitBackoffMax),
	}
}

// Evaluate asks the backend to score the given candidate ids for a role
// category. Id lists longer than the backend limit are truncated.
func (c *Client) Evaluate(ctx context.Context, category string, candidateIDs []string) (*EvaluationResult, error) {
	if category == "" {
		return nil, fmt.Errorf("role category is required")
	}
	if len(candidateIDs) == 0 {
		return nil, fmt.Errorf("at least one candidate id is required")
	}

	if len(candidateIDs) > maxEvaluateIDs {
		c.logger.Debug("truncating candidate ids to backend limit",
			zap.String("role_category", category),
			zap.Int("requested", len(candidateIDs)),
			zap.Int("limit", maxEvaluateIDs),
		)
		candidateIDs = candidateIDs[:maxEvaluateIDs]
	}

	payload := evaluateRequest{Category: category, CandidateIDs: candidateIDs}

	var result EvaluationResult
	if err := c.postJSON(ctx, "evaluate", "/v1/evaluate", payload, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// postJSON sends the payload with the full retry/throttle discipline and
// decodes a 200 response into target.
func (c *Client) postJSON(ctx context.Context, op, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", op, err)
	}

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		attempts++

		if err := c.gate.wait(ctx); err != nil {
			return err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		done, err := c.attempt(ctx, op, path, body, target, attempt)
		if done {
			return err
		}
		lastErr = err
	}

	return &BackendError{Op: op, Attempts: attempts, Err: lastErr}
}

// attempt performs one request. done=true means the outcome is final:
// either success (err nil) or a non-retryable failure.
func (c *Client) attempt(ctx context.Context, op, path string, body []byte, target any, attempt int) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+path, bytes.NewReader(body))
	if err != nil {
		return true, &BackendError{Op: op, Attempts: attempt + 1, Err: err}
	}

	req.Header.Set("Authorization", c.credential)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("evaluation backend request",
		zap.String("op", op),
		zap.String("url", req.URL.String()),
		zap.Int("attempt", attempt),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		return c.retryTransient(ctx, op, attempt, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return true, &BackendError{Op: op, Attempts: attempt + 1, Err: fmt.Errorf("decode response: %w", err)}
		}
		return true, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		delay := c.rateLimitBackoff.next(attempt, retryAfterHint(resp))
		c.logger.Warn("evaluation backend rate limited",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
		)
		if err := sleep(ctx, delay); err != nil {
			return true, err
		}
		return false, fmt.Errorf("rate limited: %s", resp.Status)

	case resp.StatusCode >= http.StatusInternalServerError:
		return c.retryTransient(ctx, op, attempt, fmt.Errorf("bad status: %s", resp.Status))

	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return true, &BackendError{
			Op:       op,
			Attempts: attempt + 1,
			Err:      fmt.Errorf("bad status: %s: %s", resp.Status, detail),
		}
	}
}

func (c *Client) retryTransient(ctx context.Context, op string, attempt int, cause error) (bool, error) {
	delay := c.transientBackoff.Delay(attempt)
	c.logger.Warn("evaluation backend request failed, backing off",
		zap.String("op", op),
		zap.Int("attempt", attempt),
		zap.Duration("backoff", delay),
		zap.Error(cause),
	)
	if err := sleep(ctx, delay); err != nil {
		return true, err
	}
	return false, cause
}

func retryAfterHint(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
