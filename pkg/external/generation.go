package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bp-trend-server/internal/domain"
)

// GenerationClient calls the natural-language generation API that turns a
// structured reading window into a trend summary.
type GenerationClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	rateLimit  *rate.Limiter
}

// generationRequest is the wire payload. The model name rides alongside the
// structured trend request.
type generationRequest struct {
	Model    string               `json:"model,omitempty"`
	Readings []domain.TrendReading `json:"readings"`
	Profile  *domain.TrendProfile `json:"profile,omitempty"`
}

// NewGenerationClient creates a new generation API client
func NewGenerationClient(config domain.GenerationConfig) *GenerationClient {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}

	return &GenerationClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// GenerateTrendSummary posts the reading window and returns the structured
// summary. The response body must decode into {summary, flags, suggestions}.
func (c *GenerationClient) GenerateTrendSummary(ctx context.Context, request *domain.TrendRequest) (*domain.TrendResponse, error) {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	payload := generationRequest{
		Model:    c.model,
		Readings: request.Readings,
		Profile:  request.Profile,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := c.baseURL + "/v1/trend-summary"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, snippet)
	}

	var response domain.TrendResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	return &response, nil
}
