package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
)

const (
	notConfiguredMessage = "I need an API key to provide personalized recommendations. Please set up OpenRouter integration to continue."
	fallbackMessage      = "I apologize, but I'm having trouble connecting to my knowledge base right now. Please try again in a moment, or check with a healthcare professional for urgent concerns."
)

var (
	// ErrNotConfigured is reported when no API key or client is available
	ErrNotConfigured = errors.New("API key not configured")
	// ErrEmptyResponse is reported when the endpoint returns no content
	ErrEmptyResponse = errors.New("no response content received")
)

// Result is the outcome of a completion. On failure Content holds a
// user-safe message and Err the underlying cause.
type Result struct {
	Content string
	Err     error
}

// Chunk is one streamed fragment. The last chunk on a channel has Done set and
// carries the final Result; Partial is whatever was delivered before a
// mid-stream failure.
type Chunk struct {
	Delta   string
	Done    bool
	Result  Result
	Partial string
}

type validation struct {
	ok  bool
	err error
}

// Gateway wraps the remote chat-completion endpoint
type Gateway struct {
	factory           ClientFactory
	model             string
	visionModel       string
	validationTimeout time.Duration
	logger            *zap.Logger

	mu        sync.RWMutex
	apiKey    string
	client    CompletionClient
	validated map[string]validation

	group singleflight.Group
}

// NewGateway creates a gateway. Without an API key it stays unconfigured
// until SetAPIKey is called.
func NewGateway(cfg config.AIConfig, factory ClientFactory, logger *zap.Logger) *Gateway {
	g := &Gateway{
		factory:           factory,
		model:             cfg.Model,
		visionModel:       cfg.VisionModel,
		validationTimeout: cfg.ValidationTimeout,
		logger:            logger,
		validated:         make(map[string]validation),
	}
	if g.visionModel == "" {
		g.visionModel = g.model
	}
	if g.validationTimeout <= 0 {
		g.validationTimeout = 15 * time.Second
	}
	if err := g.SetAPIKey(cfg.APIKey); err != nil {
		logger.Warn("ai client not created", zap.Error(err))
	}
	return g
}

// SetAPIKey replaces the key and rebuilds the client. An empty key drops the client.
func (g *Gateway) SetAPIKey(apiKey string) error {
	var client CompletionClient
	if apiKey != "" {
		c, err := g.factory(apiKey)
		if err != nil {
			g.mu.Lock()
			g.apiKey, g.client = apiKey, nil
			g.mu.Unlock()
			return fmt.Errorf("failed to create completion client: %w", err)
		}
		client = c
	}

	g.mu.Lock()
	g.apiKey, g.client = apiKey, client
	g.mu.Unlock()
	return nil
}

// IsConfigured reports whether a key and client are present and validation of
// that key has succeeded. It never blocks; an unvalidated key starts a
// background validation and reports false until it succeeds.
func (g *Gateway) IsConfigured() bool {
	g.mu.RLock()
	apiKey, client := g.apiKey, g.client
	v, done := g.validated[apiKey]
	g.mu.RUnlock()

	if apiKey == "" || client == nil {
		return false
	}
	if !done {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), g.validationTimeout)
			defer cancel()
			_ = g.Validate(ctx)
		}()
		return false
	}
	return v.ok
}

// Validate issues a minimal 1-token completion with the current key. It runs
// at most once per key; concurrent callers share the in-flight call.
func (g *Gateway) Validate(ctx context.Context) error {
	g.mu.RLock()
	apiKey, client := g.apiKey, g.client
	v, done := g.validated[apiKey]
	g.mu.RUnlock()

	if apiKey == "" || client == nil {
		return ErrNotConfigured
	}
	if done {
		return v.err
	}

	_, err, _ := g.group.Do(apiKey, func() (interface{}, error) {
		g.mu.RLock()
		v, done := g.validated[apiKey]
		g.mu.RUnlock()
		if done {
			return nil, v.err
		}

		_, err := client.Complete(ctx, Request{
			Model:     g.model,
			System:    "Reply with OK.",
			User:      "ping",
			MaxTokens: 1,
		})

		// A cancelled or timed-out check says nothing about the key.
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			g.logger.Info("ai key validation interrupted", zap.Error(err))
			return nil, fmt.Errorf("key validation interrupted: %w", err)
		}

		g.mu.Lock()
		g.validated[apiKey] = validation{ok: err == nil, err: err}
		g.mu.Unlock()

		if err != nil {
			g.logger.Warn("ai key validation failed", zap.Error(err))
			return nil, fmt.Errorf("key validation failed: %w", err)
		}
		g.logger.Info("ai key validated", zap.String("model", g.model))
		return nil, nil
	})
	return err
}

// ModelName returns the user-facing model name, the part after the vendor prefix
func (g *Gateway) ModelName() string {
	if _, name, ok := strings.Cut(g.model, "/"); ok {
		return name
	}
	return g.model
}

// Complete runs a non-streaming completion. Failures are never returned as
// errors; the Result carries the fallback message and the cause.
func (g *Gateway) Complete(ctx context.Context, pc PromptContext) Result {
	client := g.currentClient()
	if client == nil {
		return Result{Content: notConfiguredMessage, Err: ErrNotConfigured}
	}

	content, err := client.Complete(ctx, g.request(pc))
	if err == nil && strings.TrimSpace(content) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		g.logger.Error("ai completion failed", zap.Error(err))
		return Result{Content: fallbackMessage, Err: err}
	}
	return Result{Content: strings.TrimSpace(content)}
}

// CompleteStreaming runs a streaming completion. Deltas arrive in order and
// the channel closes after a final Done chunk whose content equals their
// concatenation on success. Cancelling ctx stops the stream and closes the
// channel without a final chunk.
func (g *Gateway) CompleteStreaming(ctx context.Context, pc PromptContext) <-chan Chunk {
	out := make(chan Chunk)
	client := g.currentClient()

	go func() {
		defer close(out)

		if client == nil {
			send(ctx, out, Chunk{Done: true, Result: Result{Content: notConfiguredMessage, Err: ErrNotConfigured}})
			return
		}

		content, err := client.Stream(ctx, g.request(pc), func(delta string) error {
			if !send(ctx, out, Chunk{Delta: delta}) {
				return ctx.Err()
			}
			return nil
		})
		if ctx.Err() != nil {
			g.logger.Info("ai stream cancelled", zap.Int("delivered", len(content)))
			return
		}
		if err == nil && content == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			g.logger.Error("ai streaming failed", zap.Error(err))
			send(ctx, out, Chunk{Done: true, Partial: content, Result: Result{Content: fallbackMessage, Err: err}})
			return
		}
		send(ctx, out, Chunk{Done: true, Result: Result{Content: content}})
	}()

	return out
}

func (g *Gateway) currentClient() CompletionClient {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.apiKey == "" {
		return nil
	}
	return g.client
}

func (g *Gateway) request(pc PromptContext) Request {
	req := Request{
		Model:  g.model,
		System: systemPrompt,
		User:   buildUserPrompt(pc),
	}
	if pc.Attachment != nil {
		req.Model = g.visionModel
		if pc.Attachment.IsImage() && len(pc.Attachment.Data) > 0 {
			req.Images = []Image{{MimeType: pc.Attachment.MimeType, Data: pc.Attachment.Data}}
		}
	}
	return req
}

func send(ctx context.Context, out chan<- Chunk, c Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
