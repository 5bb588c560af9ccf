// Package app wires configuration into the services shared by the HTTP
// server and the command line tool.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/ai"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/audit"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/azure"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/pdf"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
)

// App holds every long-lived component
type App struct {
	Store        repository.DocumentStore
	Gateway      *ai.Gateway
	Analyzer     *service.Analyzer
	Remedies     *service.RemedyService
	Responses    *service.ResponseService
	Symptoms     *service.SymptomStore
	Chats        *service.ChatStore
	Conversation *service.ConversationService
	Insights     *service.InsightsService
	Exports      *service.ExportService
	Reports      *service.ReportService
	Audit        *audit.Logger
	Blobs        azure.BlobStorage

	logger *zap.Logger
}

// New opens storage and builds the services. Blob storage is optional; a
// missing AI key leaves the assistant in mock mode.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := repository.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	var blobs azure.BlobStorage
	if cfg.Backup.Enabled() {
		client, err := azure.NewBlobStorageClient(cfg.Backup.AccountName, cfg.Backup.AccountKey, cfg.Backup.Container, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
		}
		blobs = client
	} else {
		logger.Info("blob storage not configured, backups and stored reports disabled")
	}

	return NewWithStore(store, blobs, cfg, logger), nil
}

// NewWithStore builds the services over an already opened store. blobs may be nil.
func NewWithStore(store repository.DocumentStore, blobs azure.BlobStorage, cfg *config.Config, logger *zap.Logger) *App {
	gateway := ai.NewGateway(cfg.AI, ai.NewClientFactory(cfg.AI, logger), logger)
	analyzer := service.NewAnalyzer()
	remedies := service.NewRemedyService()
	responses := service.NewResponseService(gateway, remedies, cfg.AI.OnlyMode, cfg.Streaming.WordDelay, logger)
	symptoms := service.NewSymptomStore(store, logger)
	chats := service.NewChatStore(store, logger)
	insights := service.NewInsightsService(symptoms, logger)
	auditLogger := audit.NewLogger(store, logger)

	// typed nils must not reach the service interfaces
	var (
		backup  service.BackupStorage
		reports service.ReportStorage
	)
	if blobs != nil {
		backup, reports = blobs, blobs
	}

	conversation := service.NewConversationService(
		analyzer, responses, symptoms, chats, service.NewEmergencyScreener(), cfg.Streaming.FollowUpDelay, logger,
	)

	return &App{
		Store:        store,
		Gateway:      gateway,
		Analyzer:     analyzer,
		Remedies:     remedies,
		Responses:    responses,
		Symptoms:     symptoms,
		Chats:        chats,
		Conversation: conversation,
		Insights:     insights,
		Exports:      service.NewExportService(store, symptoms, chats, backup, auditLogger, logger),
		Reports:      service.NewReportService(symptoms, insights, pdf.NewPDFGenerator(logger), reports, logger),
		Audit:        auditLogger,
		Blobs:        blobs,
		logger:       logger,
	}
}

// ValidateAI checks the configured key in the background so the first chat
// request does not pay for it
func (a *App) ValidateAI(timeout time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.Gateway.Validate(ctx); err != nil {
			a.logger.Warn("ai gateway not available, using fallback responses", zap.Error(err))
			return
		}
		a.logger.Info("ai gateway ready", zap.String("model", a.Gateway.ModelName()))
	}()
}

// Close releases storage
func (a *App) Close() error {
	return a.Store.Close()
}
