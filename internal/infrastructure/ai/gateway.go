// Package ai implements the model gateway: chat-completion transport with
// per-request retry and candidate-model failover.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/pkg/textutil"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// ErrGenerationFailed is returned once every candidate model is exhausted.
// It wraps the last error encountered.
var ErrGenerationFailed = errors.New("all candidate models failed")

// Gateway sends generation requests to a chat-completion endpoint, trying
// candidate models in list order. Each model attempt carries its own retry
// loop for transient failures; 401 and other client errors advance to the
// next model immediately.
type Gateway struct {
	endpoint    string
	httpClient  *http.Client
	models      *domain.CandidateModels
	sleeper     Sleeper
	maxAttempts int
	logger      ports.Logger

	mu     sync.RWMutex
	apiKey string
}

// NewGateway builds a gateway around the configured transport settings and
// the session's candidate model list.
func NewGateway(cfg domain.GatewaySettings, apiKey string, models *domain.CandidateModels, log ports.Logger) *Gateway {
	return &Gateway{
		endpoint:    cfg.Endpoint,
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
		models:      models,
		sleeper:     realSleeper{},
		maxAttempts: cfg.MaxAttempts,
		logger:      log,
		apiKey:      apiKey,
	}
}

// SetSleeper replaces the backoff sleeper; tests inject a recording fake.
func (g *Gateway) SetSleeper(s Sleeper) {
	g.sleeper = s
}

// SetAPIKey swaps the bearer credential, used after an account key change.
func (g *Gateway) SetAPIKey(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.apiKey = key
}

func (g *Gateway) key() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.apiKey
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// Generate implements ports.CommandGenerator. Candidate models are tried in
// order; only the last error survives to the final report.
func (g *Gateway) Generate(ctx context.Context, userInput string) (domain.GenerationResult, error) {
	var lastErr error
	for _, model := range g.models.Names() {
		payload := chatRequest{
			Model: model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userInput},
			},
			Temperature: 0.1,
		}

		body, err := g.postWithRetry(ctx, payload)
		if err != nil {
			lastErr = err
			g.logger.Debug("model attempt failed", map[string]interface{}{
				"model": model,
				"error": err.Error(),
			})
			continue
		}

		command, err := extractCommand(body)
		if err != nil {
			lastErr = err
			continue
		}

		return domain.GenerationResult{Command: command, Model: model}, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no candidate models configured")
	}
	return domain.GenerationResult{}, fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}

// ValidateCredential implements ports.CommandGenerator. It issues one
// minimal low-cost request against the first candidate model.
func (g *Gateway) ValidateCredential(ctx context.Context) error {
	names := g.models.Names()
	if len(names) == 0 {
		return errors.New("no candidate models configured")
	}
	payload := chatRequest{
		Model:       names[0],
		Messages:    []chatMessage{{Role: "user", Content: credentialProbePrompt}},
		Temperature: 0,
		MaxTokens:   8,
	}
	_, err := g.postWithRetry(ctx, payload)
	return err
}

// postWithRetry issues the HTTP POST inside the transient-failure retry
// loop. Rate limiting, server errors, timeouts, and generic network
// failures back off and retry; 401 and other 4xx responses do not.
func (g *Gateway) postWithRetry(ctx context.Context, payload chatRequest) ([]byte, error) {
	var body []byte
	err := withRetry(ctx, g.sleeper, g.maxAttempts, func() error {
		var attemptErr error
		body, attemptErr = g.post(ctx, payload)
		return attemptErr
	})
	return body, err
}

func (g *Gateway) post(ctx context.Context, payload chatRequest) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.key())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// transport failure or timeout: retryable
		return nil, fmt.Errorf("network failure: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, permanent(errors.New("invalid API key (401)"))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.New("rate limited (429)")
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("server error (%d)", resp.StatusCode)
	case resp.StatusCode >= 400:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, permanent(fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// extractCommand pulls choices[0].message.content out of the response and
// flattens it to a single trimmed line. Missing, non-text, or empty content
// is a hard failure for the model attempt.
func extractCommand(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("invalid API response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("empty/invalid API response")
	}

	var content string
	if err := json.Unmarshal(response.Choices[0].Message.Content, &content); err != nil {
		return "", errors.New("non-text API output")
	}

	line := textutil.CleanSingleLine(content)
	if line == "" {
		return "", errors.New("model returned empty command")
	}
	return line, nil
}

var _ ports.CommandGenerator = (*Gateway)(nil)
