package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
)

// OpenAIClient talks to an OpenAI-compatible endpoint (OpenRouter by default,
// or Azure OpenAI) through the openai-go SDK, with retry logic and logging
type OpenAIClient struct {
	client      *openai.Client
	temperature float64
	topP        float64
	maxTokens   int
	logger      *zap.Logger
	retry       retryPolicy
}

// NewOpenAIClient creates a client for cfg.BaseURL, sending the OpenRouter
// attribution headers when they are configured
func NewOpenAIClient(cfg config.AIConfig, apiKey string, logger *zap.Logger) (*OpenAIClient, error) {
	if apiKey == "" || cfg.BaseURL == "" {
		return nil, fmt.Errorf("apiKey and baseURL are required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.AppTitle != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppTitle))
	}

	client := openai.NewClient(opts...)
	return newOpenAIClient(&client, cfg, logger), nil
}

// NewAzureOpenAIClient creates a client for an Azure OpenAI deployment. The
// configured model is used as the deployment name.
func NewAzureOpenAIClient(cfg config.AIConfig, apiKey string, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.AzureEndpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("endpoint and apiKey are required")
	}

	client := openai.NewClient(
		azure.WithEndpoint(cfg.AzureEndpoint, cfg.AzureAPIVersion),
		azure.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return newOpenAIClient(&client, cfg, logger), nil
}

func newOpenAIClient(client *openai.Client, cfg config.AIConfig, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:      client,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
		retry:       newRetryPolicy(cfg.MaxRetries, logger),
	}
}

// Complete sends a chat completion request with retry logic
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	return c.retry.do(ctx, func() (string, error) {
		return c.complete(ctx, req)
	})
}

// complete performs a single chat completion request
func (c *OpenAIClient) complete(ctx context.Context, req Request) (string, error) {
	requestStart := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from completion endpoint")
	}

	c.logger.Info("completion token usage",
		zap.String("model", req.Model),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", time.Since(requestStart)),
	)

	return resp.Choices[0].Message.Content, nil
}

// Stream sends a streaming chat completion request. A failed stream is only
// retried while nothing has been delivered to onDelta.
func (c *OpenAIClient) Stream(ctx context.Context, req Request, onDelta func(string) error) (string, error) {
	return c.retry.do(ctx, func() (string, error) {
		return c.stream(ctx, req, onDelta)
	})
}

func (c *OpenAIClient) stream(ctx context.Context, req Request, onDelta func(string) error) (string, error) {
	requestStart := time.Now()

	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(req))
	defer stream.Close()

	var content strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		content.WriteString(delta)
		if err := onDelta(delta); err != nil {
			return content.String(), &permanentError{err: err}
		}
	}

	if err := stream.Err(); err != nil {
		err = fmt.Errorf("streaming completion request failed: %w", err)
		if content.Len() > 0 {
			return content.String(), &permanentError{err: err}
		}
		return "", err
	}

	c.logger.Info("streaming completion finished",
		zap.String("model", req.Model),
		zap.Int("content_length", content.Len()),
		zap.Duration("request_time", time.Since(requestStart)),
	)
	return content.String(), nil
}

func (c *OpenAIClient) params(req Request) openai.ChatCompletionNewParams {
	user := openai.UserMessage(req.User)
	if len(req.Images) > 0 {
		parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(req.User)}
		for _, img := range req.Images {
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: img.DataURL(),
			}))
		}
		user = openai.UserMessage(parts)
	}

	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			user,
		},
		Temperature: openai.Float(c.temperature),
		TopP:        openai.Float(c.topP),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}
}
