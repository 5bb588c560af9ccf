package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
)

// OperationType represents the type of data-management operation performed
type OperationType string

const (
	OperationExport  OperationType = "EXPORT"
	OperationImport  OperationType = "IMPORT"
	OperationBackup  OperationType = "BACKUP"
	OperationRestore OperationType = "RESTORE"
	OperationClear   OperationType = "CLEAR"
)

// ResourceType represents the collection an operation touched
type ResourceType string

const (
	ResourceSymptoms     ResourceType = "symptoms"
	ResourceChatSessions ResourceType = "chat_sessions"
	ResourceAll          ResourceType = "all"
)

const (
	auditKey   = "health-assistant-audit"
	maxEntries = 500
)

// AuditLog represents an audit log entry
type AuditLog struct {
	OperationType  OperationType  `json:"operationType"`
	ResourceType   ResourceType   `json:"resourceType"`
	ResourceID     string         `json:"resourceId,omitempty"`
	Success        bool           `json:"success"`
	Timestamp      time.Time      `json:"timestamp"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
}

// Logger writes audit entries to the structured log and keeps the most recent
// ones in the document store
type Logger struct {
	store  repository.DocumentStore
	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger
}

// NewLogger creates a new audit logger. A nil store only logs.
func NewLogger(store repository.DocumentStore, logger *zap.Logger) *Logger {
	return &Logger{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// Log records an audit entry
func (l *Logger) Log(ctx context.Context, entry AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	l.logger.Info("audit log entry",
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Bool("success", entry.Success),
		zap.Time("timestamp", entry.Timestamp),
	)

	if l.store == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return err
	}
	entries = append([]AuditLog{entry}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode audit log: %w", err)
	}
	if err := l.store.Put(ctx, auditKey, raw); err != nil {
		l.logger.Error("failed to write audit log",
			zap.Error(err),
			zap.String("operation", string(entry.OperationType)),
		)
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// LogExport logs an EXPORT operation
func (l *Logger) LogExport(ctx context.Context, symptoms, sessions int) error {
	return l.Log(ctx, AuditLog{
		OperationType:  OperationExport,
		ResourceType:   ResourceAll,
		Success:        true,
		AdditionalData: map[string]any{"symptoms": symptoms, "sessions": sessions},
	})
}

// LogImport logs an IMPORT operation
func (l *Logger) LogImport(ctx context.Context, success bool, symptoms, sessions int) error {
	return l.Log(ctx, AuditLog{
		OperationType:  OperationImport,
		ResourceType:   ResourceAll,
		Success:        success,
		AdditionalData: map[string]any{"symptoms": symptoms, "sessions": sessions},
	})
}

// LogBackup logs a BACKUP operation against blobName
func (l *Logger) LogBackup(ctx context.Context, blobName string, success bool) error {
	return l.Log(ctx, AuditLog{
		OperationType: OperationBackup,
		ResourceType:  ResourceAll,
		ResourceID:    blobName,
		Success:       success,
	})
}

// LogRestore logs a RESTORE of the backup blobName
func (l *Logger) LogRestore(ctx context.Context, blobName string, success bool) error {
	return l.Log(ctx, AuditLog{
		OperationType: OperationRestore,
		ResourceType:  ResourceAll,
		ResourceID:    blobName,
		Success:       success,
	})
}

// LogClear logs a CLEAR operation
func (l *Logger) LogClear(ctx context.Context, resource ResourceType) error {
	return l.Log(ctx, AuditLog{
		OperationType: OperationClear,
		ResourceType:  resource,
		Success:       true,
	})
}

// GetAuditLogs returns up to limit entries, newest first
func (l *Logger) GetAuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	if l.store == nil {
		return []AuditLog{}, nil
	}
	entries, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (l *Logger) load(ctx context.Context) ([]AuditLog, error) {
	raw, err := l.store.Get(ctx, auditKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []AuditLog{}, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []AuditLog
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.logger.Warn("discarding malformed audit log", zap.Error(err))
		return []AuditLog{}, nil
	}
	return entries, nil
}
