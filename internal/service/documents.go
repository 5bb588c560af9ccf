package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
	"go.uber.org/zap"
)

// Storage keys of the persisted collections
const (
	symptomsKey       = "health-assistant-symptoms"
	chatsKey          = "health-assistant-chats"
	currentSessionKey = "health-assistant-current-session"
)

// loadDocument decodes the document under key. A missing or malformed
// document yields the zero value; only backend failures are returned.
func loadDocument[T any](ctx context.Context, store repository.DocumentStore, key string, logger *zap.Logger) (T, error) {
	var out T

	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, nil
		}
		return out, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("discarding malformed stored document",
			zap.String("key", key),
			zap.Error(err),
		)
		var zero T
		return zero, nil
	}
	return out, nil
}

func encodeDocument(key string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return raw, nil
}

func saveDocument(ctx context.Context, store repository.DocumentStore, key string, v any, logger *zap.Logger) error {
	raw, err := encodeDocument(key, v)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, raw); err != nil {
		logger.Error("failed to persist document", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
