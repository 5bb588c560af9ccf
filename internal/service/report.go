package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/pdf"
)

// ReportStorage keeps generated reports
type ReportStorage interface {
	UploadReport(ctx context.Context, filename string, data []byte) (string, error)
}

// ReportService renders the symptom log as a PDF report
type ReportService struct {
	symptoms *SymptomStore
	insights *InsightsService
	pdfGen   *pdf.PDFGenerator
	storage  ReportStorage
	logger   *zap.Logger
}

// NewReportService creates a new ReportService. storage may be nil.
func NewReportService(symptoms *SymptomStore, insights *InsightsService, pdfGen *pdf.PDFGenerator, storage ReportStorage, logger *zap.Logger) *ReportService {
	return &ReportService{
		symptoms: symptoms,
		insights: insights,
		pdfGen:   pdfGen,
		storage:  storage,
		logger:   logger,
	}
}

// GenerateSymptomReport renders entries of the last days days together with
// the current patterns, metrics and insights
func (s *ReportService) GenerateSymptomReport(ctx context.Context, days int) ([]byte, error) {
	days = s.insights.normalizeDays(days)
	insights, err := s.insights.GetInsights(ctx, days)
	if err != nil {
		return nil, err
	}

	entries, err := s.symptoms.Recent(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load symptoms for report: %w", err)
	}

	metrics := make([]pdf.Metric, 0, len(insights.Metrics))
	for _, m := range insights.Metrics {
		metrics = append(metrics, pdf.Metric{
			Label:  m.Label,
			Value:  m.Value,
			Trend:  string(m.Trend),
			Status: string(m.Status),
		})
	}

	data, err := s.pdfGen.Generate(&pdf.ReportData{
		Period:      insights.Period,
		GeneratedAt: s.symptoms.now(),
		Location:    s.symptoms.location,
		Entries:     entries,
		Patterns:    insights.Patterns,
		Metrics:     metrics,
		Insights:    insights.Insights,
	})
	if err != nil {
		s.logger.Error("failed to render symptom report", zap.Error(err))
		return nil, err
	}
	return data, nil
}

// ReportFilename names a report generated at now
func (s *ReportService) ReportFilename(now time.Time) string {
	return fmt.Sprintf("healthwise-symptom-report-%s.pdf", now.UTC().Format("2006-01-02"))
}

// StoreSymptomReport generates a report and uploads it, returning the blob name
func (s *ReportService) StoreSymptomReport(ctx context.Context, days int) (string, error) {
	if s.storage == nil {
		return "", ErrBackupNotConfigured
	}
	data, err := s.GenerateSymptomReport(ctx, days)
	if err != nil {
		return "", err
	}
	name, err := s.storage.UploadReport(ctx, s.ReportFilename(s.symptoms.now()), data)
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	s.logger.Info("symptom report stored", zap.String("blob_name", name))
	return name, nil
}
