package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
)

// GoOpenAIClient is the go-openai implementation of CompletionClient
type GoOpenAIClient struct {
	client      *goopenai.Client
	temperature float32
	topP        float32
	maxTokens   int
	logger      *zap.Logger
	retry       retryPolicy
}

// NewGoOpenAIClient creates a go-openai client for cfg.BaseURL
func NewGoOpenAIClient(cfg config.AIConfig, apiKey string, logger *zap.Logger) (*GoOpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	clientConfig := goopenai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &GoOpenAIClient{
		client:      goopenai.NewClientWithConfig(clientConfig),
		temperature: float32(cfg.Temperature),
		topP:        float32(cfg.TopP),
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
		retry:       newRetryPolicy(cfg.MaxRetries, logger),
	}, nil
}

// Complete implements non-streaming chat
func (c *GoOpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	return c.retry.do(ctx, func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, c.request(req, false))
		if err != nil {
			return "", fmt.Errorf("failed to create chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no choices returned from completion endpoint")
		}

		c.logger.Info("completion token usage",
			zap.String("model", req.Model),
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			zap.Int("total_tokens", resp.Usage.TotalTokens),
		)
		return resp.Choices[0].Message.Content, nil
	})
}

// Stream implements streaming chat
func (c *GoOpenAIClient) Stream(ctx context.Context, req Request, onDelta func(string) error) (string, error) {
	return c.retry.do(ctx, func() (string, error) {
		stream, err := c.client.CreateChatCompletionStream(ctx, c.request(req, true))
		if err != nil {
			return "", fmt.Errorf("failed to create stream: %w", err)
		}
		defer stream.Close()

		var content strings.Builder
		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return content.String(), nil
			}
			if err != nil {
				err = fmt.Errorf("stream error: %w", err)
				if content.Len() > 0 {
					return content.String(), &permanentError{err: err}
				}
				return "", err
			}

			if len(response.Choices) == 0 {
				continue
			}
			delta := response.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			content.WriteString(delta)
			if err := onDelta(delta); err != nil {
				return content.String(), &permanentError{err: err}
			}
		}
	})
}

// request converts a Request to go-openai format, attaching images as
// multi-part content
func (c *GoOpenAIClient) request(req Request, stream bool) goopenai.ChatCompletionRequest {
	user := goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.User,
	}
	if len(req.Images) > 0 {
		parts := []goopenai.ChatMessagePart{{
			Type: goopenai.ChatMessagePartTypeText,
			Text: req.User,
		}}
		for _, img := range req.Images {
			parts = append(parts, goopenai.ChatMessagePart{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    img.DataURL(),
					Detail: goopenai.ImageURLDetailAuto,
				},
			})
		}
		user = goopenai.ChatCompletionMessage{
			Role:         goopenai.ChatMessageRoleUser,
			MultiContent: parts,
		}
	}

	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	return goopenai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			user,
		},
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		Stream:      stream,
	}
}
