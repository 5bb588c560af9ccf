package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
)

// Image is inline image content sent with the user prompt
type Image struct {
	MimeType string
	Data     []byte
}

// DataURL encodes the image as a base64 data URL
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MimeType, base64.StdEncoding.EncodeToString(i.Data))
}

// Request is one chat completion: a system prompt and a single user turn
type Request struct {
	Model     string
	System    string
	User      string
	Images    []Image
	MaxTokens int // zero means the client default
}

// CompletionClient is a remote chat-completion endpoint
type CompletionClient interface {
	Complete(ctx context.Context, req Request) (string, error)
	// Stream calls onDelta for every non-empty content fragment in arrival
	// order and returns the concatenated content.
	Stream(ctx context.Context, req Request, onDelta func(string) error) (string, error)
}

// ClientFactory builds a client for an API key
type ClientFactory func(apiKey string) (CompletionClient, error)

// NewClientFactory returns a factory for the client kind selected in cfg
func NewClientFactory(cfg config.AIConfig, logger *zap.Logger) ClientFactory {
	return func(apiKey string) (CompletionClient, error) {
		switch cfg.Client {
		case "go-openai":
			return NewGoOpenAIClient(cfg, apiKey, logger)
		case "azure":
			return NewAzureOpenAIClient(cfg, apiKey, logger)
		default:
			return NewOpenAIClient(cfg, apiKey, logger)
		}
	}
}

// retryPolicy is shared by both client implementations
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

func newRetryPolicy(maxRetries int, logger *zap.Logger) retryPolicy {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return retryPolicy{maxRetries: maxRetries, baseDelay: time.Second, logger: logger}
}

// do runs call until it succeeds, fails with a non-retryable error or the
// attempts are exhausted. Backoff doubles from baseDelay.
func (p retryPolicy) do(ctx context.Context, call func() (string, error)) (string, error) {
	startTime := time.Now()
	var lastErr error

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			delay := p.baseDelay * time.Duration(1<<uint(attempt-1))
			p.logger.Info("retrying completion request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := call()
		if err == nil {
			p.logger.Info("completion request completed",
				zap.Duration("processing_time", time.Since(startTime)),
				zap.Int("attempts", attempt+1),
			)
			return result, nil
		}

		lastErr = err
		if !isRetryable(ctx, err) {
			p.logger.Error("non-retryable completion error",
				zap.Error(err),
				zap.Int("attempt", attempt+1),
			)
			// A broken stream still hands back what it delivered.
			return result, err
		}

		p.logger.Warn("completion request failed, will retry",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	p.logger.Error("completion request failed after retries",
		zap.Error(lastErr),
		zap.Duration("total_time", time.Since(startTime)),
		zap.Int("max_retries", p.maxRetries),
	)
	return "", fmt.Errorf("completion request failed after %d attempts: %w", p.maxRetries, lastErr)
}

// isRetryable retries network errors, timeouts, rate limits and server
// errors. Authentication and invalid requests fail immediately.
func isRetryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}

	if status := statusCode(err); status != 0 {
		return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "authentication") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "401") {
		return false
	}
	if strings.Contains(errStr, "invalid") || strings.Contains(errStr, "bad request") || strings.Contains(errStr, "400") {
		return false
	}
	return true
}

// permanentError marks a failure that must not be retried, such as a stream
// that broke after content was already delivered
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// statusCode extracts the HTTP status from either SDK's error type
func statusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var goAPIErr *goopenai.APIError
	if errors.As(err, &goAPIErr) {
		return goAPIErr.HTTPStatusCode
	}
	var goReqErr *goopenai.RequestError
	if errors.As(err, &goReqErr) {
		return goReqErr.HTTPStatusCode
	}
	return 0
}
