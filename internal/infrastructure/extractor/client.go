package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/veganscan/backend/internal/domain"
	"github.com/veganscan/backend/internal/logging"
	"github.com/veganscan/backend/internal/metrics"
)

const (
	extractPath      = "/v1/ingredients/extract"
	maxErrorBodySize = 1024    // bytes of an error body kept for logs
	maxResponseSize  = 1 << 20 // upper bound on a success body
	baseBackoff      = 500 * time.Millisecond
	userAgent        = "VeganScan/1.0"
)

// ClientConfig holds the extractor connection settings. Zero values use defaults.
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	MaxRetries        int
}

// Client calls the external AI classifier that extracts ingredients from free text
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	maxRetries  int
	backoff     func(attempt int) time.Duration
	logger      *log.Logger
	debug       bool
}

// NewClient creates a new extractor client. logger may be nil.
func NewClient(config ClientConfig, logger *log.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	retries := config.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	if logger == nil {
		logger = logging.Discard()
	}

	// rate.Limit is requests per second
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), max(1, rpm/6))

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      config.APIKey,
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		rateLimiter: limiter,
		maxRetries:  retries,
		backoff:     exponentialBackoff,
		logger:      logger.WithPrefix("extractor"),
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return baseBackoff * time.Duration(1<<(attempt-1))
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

type extractRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Extract sends text to the classifier and returns the extracted ingredients with
// validated hints. Transport errors, 5xx and 429 responses are retried with
// exponential backoff; other 4xx responses fail immediately.
func (c *Client) Extract(ctx context.Context, text, language string) (*domain.Extraction, error) {
	payload, err := json.Marshal(extractRequest{Text: text, Language: language})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	if c.debug {
		c.logger.Debug("extract called", "chars", len(text), "language", language)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff(attempt-1)); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrExtractorFailure, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+extractPath, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("request error", "attempt", attempt, "err", err)
			metrics.ObserveExtractorRequest("retry")
			lastErr = fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBodySize)
			resp.Body.Close()

			c.logger.Warn("api error", "attempt", attempt, "status", resp.StatusCode, "body", string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrExtractorFailure, resp.StatusCode)
			if !retryable(resp.StatusCode) {
				metrics.ObserveExtractorRequest("error")
				return nil, lastErr
			}
			metrics.ObserveExtractorRequest("retry")
			continue
		}

		body, err := readLimitedBody(resp.Body, maxResponseSize)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", domain.ErrExtractorFailure, err)
			metrics.ObserveExtractorRequest("retry")
			continue
		}

		var parsed extractResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			metrics.ObserveExtractorRequest("error")
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrExtractorFailure, err)
		}

		extraction := MapToExtraction(&parsed)
		metrics.ObserveExtractorRequest("ok")
		if c.debug {
			c.logger.Debug("extract complete", "ingredients", len(extraction.Ingredients), "hints", len(extraction.Hints))
		}
		return extraction, nil
	}

	c.logger.Error("all retries failed", "attempts", c.maxRetries)
	metrics.ObserveExtractorRequest("error")
	return nil, lastErr
}

// retryable reports whether a status is worth another attempt
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
