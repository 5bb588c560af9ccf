package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/audit"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

const (
	exportVersion = "1.0.0"

	importSuccessMessage     = "Data imported successfully!"
	importInvalidMessage     = "Invalid file format. Please select a valid HealthWise backup file."
	importUnsupportedMessage = "Unsupported backup version. This file was created by an incompatible version of HealthWise."
	importFailedMessage      = "Failed to import data. Please check the file format and try again."
)

// exportDateLayout matches a millisecond UTC ISO-8601 timestamp
const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

// BackupStorage persists export documents off-device
type BackupStorage interface {
	UploadBackup(ctx context.Context, filename string, data []byte) (string, error)
	DownloadBackup(ctx context.Context, blobName string) ([]byte, error)
}

// ExportService snapshots and restores both stores
type ExportService struct {
	store    repository.DocumentStore
	symptoms *SymptomStore
	chats    *ChatStore
	backup   BackupStorage
	audit    *audit.Logger
	now      func() time.Time
	logger   *zap.Logger
}

// NewExportService creates a new ExportService. backup may be nil.
func NewExportService(store repository.DocumentStore, symptoms *SymptomStore, chats *ChatStore, backup BackupStorage, auditLogger *audit.Logger, logger *zap.Logger) *ExportService {
	return &ExportService{
		store:    store,
		symptoms: symptoms,
		chats:    chats,
		backup:   backup,
		audit:    auditLogger,
		now:      time.Now,
		logger:   logger,
	}
}

// Export snapshots every symptom entry and chat session
func (s *ExportService) Export(ctx context.Context) (model.ExportDocument, error) {
	symptoms, err := s.symptoms.load(ctx)
	if err != nil {
		return model.ExportDocument{}, fmt.Errorf("failed to export symptoms: %w", err)
	}
	sessions, err := s.chats.AllSessions(ctx)
	if err != nil {
		return model.ExportDocument{}, fmt.Errorf("failed to export chat sessions: %w", err)
	}

	doc := model.ExportDocument{
		Version:      exportVersion,
		ExportDate:   s.now().UTC().Format(exportDateLayout),
		Symptoms:     symptoms,
		ChatSessions: sessions,
	}

	s.logger.Info("data exported",
		zap.Int("symptoms", len(symptoms)),
		zap.Int("sessions", len(sessions)),
	)
	s.record(func(ctx context.Context) error { return s.audit.LogExport(ctx, len(symptoms), len(sessions)) })
	return doc, nil
}

// ExportJSON renders Export as indented JSON
func (s *ExportService) ExportJSON(ctx context.Context) ([]byte, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return raw, nil
}

// Filename names an export taken at now
func (s *ExportService) Filename(now time.Time) string {
	return fmt.Sprintf("healthwise-backup-%s.json", now.UTC().Format("2006-01-02"))
}

// Stats counts what an export would contain
func (s *ExportService) Stats(ctx context.Context) (model.ExportStats, error) {
	symptoms, err := s.symptoms.load(ctx)
	if err != nil {
		return model.ExportStats{}, err
	}
	sessions, err := s.chats.loadSessions(ctx)
	if err != nil {
		return model.ExportStats{}, err
	}

	stats := model.ExportStats{Symptoms: len(symptoms), Sessions: len(sessions)}
	for _, session := range sessions {
		stats.TotalMessages += len(session.Messages)
	}
	return stats, nil
}

// Import validates raw and replaces all data with its contents. It never
// returns an error; the outcome is described by the result.
func (s *ExportService) Import(ctx context.Context, raw []byte) model.ImportResult {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		s.logger.Warn("import rejected: not a json object", zap.Error(err))
		return s.importFailed(ctx, importFailedMessage)
	}

	if err := validateImportShape(fields); err != nil {
		s.logger.Warn("import rejected", zap.Error(err))
		if errors.Is(err, ErrUnsupportedExportVersion) {
			return s.importFailed(ctx, importUnsupportedMessage)
		}
		return s.importFailed(ctx, importInvalidMessage)
	}

	var doc model.ExportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("import rejected: malformed records", zap.Error(err))
		return s.importFailed(ctx, importFailedMessage)
	}

	if err := s.ImportDocument(ctx, doc); err != nil {
		return s.importFailed(ctx, importFailedMessage)
	}

	stats := &model.ImportStats{Symptoms: len(doc.Symptoms), Sessions: len(doc.ChatSessions)}
	return model.ImportResult{Success: true, Message: importSuccessMessage, Stats: stats}
}

// ImportDocument replaces both collections with doc in one storage
// transaction and clears the current-session pointer
func (s *ExportService) ImportDocument(ctx context.Context, doc model.ExportDocument) error {
	if err := checkExportVersion(doc.Version); err != nil {
		return err
	}

	if err := s.replaceAll(ctx, doc.Symptoms, doc.ChatSessions); err != nil {
		s.logger.Error("failed to import data", zap.Error(err))
		return fmt.Errorf("failed to import data: %w", err)
	}

	s.logger.Info("data imported",
		zap.Int("symptoms", len(doc.Symptoms)),
		zap.Int("sessions", len(doc.ChatSessions)),
	)
	s.record(func(ctx context.Context) error {
		return s.audit.LogImport(ctx, true, len(doc.Symptoms), len(doc.ChatSessions))
	})
	return nil
}

// ClearAll removes every symptom entry, chat session and the pointer at once
func (s *ExportService) ClearAll(ctx context.Context) error {
	if err := s.replaceAll(ctx, nil, nil); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	s.logger.Info("all data cleared")
	s.record(func(ctx context.Context) error { return s.audit.LogClear(ctx, audit.ResourceAll) })
	return nil
}

// Backup uploads the current export to backup storage and returns the blob name
func (s *ExportService) Backup(ctx context.Context) (string, error) {
	if s.backup == nil {
		return "", ErrBackupNotConfigured
	}

	raw, err := s.ExportJSON(ctx)
	if err != nil {
		return "", err
	}

	blobName, err := s.backup.UploadBackup(ctx, s.Filename(s.now()), raw)
	s.record(func(ctx context.Context) error { return s.audit.LogBackup(ctx, blobName, err == nil) })
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}
	return blobName, nil
}

// Restore downloads a backup and imports it
func (s *ExportService) Restore(ctx context.Context, blobName string) (model.ImportResult, error) {
	if s.backup == nil {
		return model.ImportResult{}, ErrBackupNotConfigured
	}
	raw, err := s.backup.DownloadBackup(ctx, blobName)
	if err != nil {
		s.record(func(ctx context.Context) error { return s.audit.LogRestore(ctx, blobName, false) })
		return model.ImportResult{}, fmt.Errorf("failed to download backup: %w", err)
	}
	result := s.Import(ctx, raw)
	s.record(func(ctx context.Context) error { return s.audit.LogRestore(ctx, blobName, result.Success) })
	return result, nil
}

// replaceAll writes both collections and drops the pointer in one transaction.
// Both store locks are held so no append interleaves with the replace.
func (s *ExportService) replaceAll(ctx context.Context, symptoms []model.SymptomEntry, sessions []model.ChatSession) error {
	s.symptoms.mu.Lock()
	defer s.symptoms.mu.Unlock()
	s.chats.mu.Lock()
	defer s.chats.mu.Unlock()

	staged := &repository.Batch{}
	if err := s.symptoms.stageReplace(staged, symptoms); err != nil {
		return err
	}
	if err := s.chats.stageReplace(staged, sessions); err != nil {
		return err
	}
	return s.store.Update(ctx, func(b *repository.Batch) error {
		*b = *staged
		return nil
	})
}

func (s *ExportService) importFailed(ctx context.Context, message string) model.ImportResult {
	s.record(func(ctx context.Context) error { return s.audit.LogImport(ctx, false, 0, 0) })
	return model.ImportResult{Success: false, Message: message}
}

// record writes an audit entry; a failing audit write never fails the operation
func (s *ExportService) record(write func(ctx context.Context) error) {
	if s.audit == nil {
		return
	}
	if err := write(context.Background()); err != nil {
		s.logger.Warn("failed to record audit entry", zap.Error(err))
	}
}

// validateImportShape checks the four top-level fields of a backup document
func validateImportShape(fields map[string]json.RawMessage) error {
	checks := []struct {
		field string
		kind  byte
	}{
		{"version", '"'},
		{"exportDate", '"'},
		{"symptoms", '['},
		{"chatSessions", '['},
	}
	for _, c := range checks {
		raw, ok := fields[c.field]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidImportDocument, c.field)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != c.kind {
			return fmt.Errorf("%w: %s has the wrong type", ErrInvalidImportDocument, c.field)
		}
	}

	var version string
	if err := json.Unmarshal(fields["version"], &version); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImportDocument, err)
	}
	return checkExportVersion(version)
}

// checkExportVersion rejects documents from an incompatible major version.
// Versions that are not semver are accepted.
func checkExportVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	if v.Major() != 1 {
		return fmt.Errorf("%w: %w %s", ErrInvalidImportDocument, ErrUnsupportedExportVersion, version)
	}
	return nil
}
