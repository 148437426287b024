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

// ExtractionClient calls the OCR extraction function that turns a monitor
// photo into a structured best-guess reading with quality signals.
type ExtractionClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rateLimit  *rate.Limiter
}

// NewExtractionClient creates a new extraction API client
func NewExtractionClient(config domain.ExtractionConfig) *ExtractionClient {
	if config.Timeout == 0 {
		// OCR with multiple engines is slow; allow well over a minute.
		config.Timeout = 90 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 1
	}

	return &ExtractionClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// ExtractReading posts the image and returns the extraction result, including
// glare, variance, and per-engine consensus signals.
func (c *ExtractionClient) ExtractReading(ctx context.Context, request *domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	if request.ImageBase64 == "" {
		return nil, fmt.Errorf("image payload cannot be empty")
	}

	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	url := c.baseURL + "/extract"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extraction API returned status %d: %s", resp.StatusCode, snippet)
	}

	var result domain.ExtractionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}

	return &result, nil
}
