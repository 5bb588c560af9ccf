package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

const disclaimer = "This report summarizes self-reported symptoms for informational purposes only. It is not a diagnosis and should not replace professional medical advice."

// Metric is one headline value printed in the overview table
type Metric struct {
	Label  string
	Value  int
	Trend  string
	Status string
}

// ReportData contains all data needed for a symptom report
type ReportData struct {
	Period      string
	GeneratedAt time.Time
	Location    *time.Location
	Entries     []model.SymptomEntry
	Patterns    model.SymptomPatterns
	Metrics     []Metric
	Insights    []string
}

// PDFGenerator renders symptom reports
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// Generate creates a PDF report from the provided data
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating PDF report",
		zap.String("period", data.Period),
		zap.Int("entries", len(data.Entries)),
	)

	loc := data.Location
	if loc == nil {
		loc = time.Local
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	g.addTitle(pdf, data.Period, data.GeneratedAt.In(loc))
	g.addOverview(pdf, data.Metrics)
	g.addPatterns(pdf, tr, data.Patterns)
	g.addInsights(pdf, tr, data.Insights)
	g.addSymptomLog(pdf, tr, data.Entries, loc)
	g.addDisclaimer(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("PDF report generated", zap.Int("size_bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, period string, generatedAt time.Time) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "HealthWise Symptom Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Period: last %s", period), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

func (g *PDFGenerator) addOverview(pdf *gofpdf.Fpdf, metrics []Metric) {
	g.addSectionHeader(pdf, "Overview")
	if len(metrics) == 0 {
		pdf.CellFormat(0, 8, "No metrics available.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFont("Arial", "B", 10)
	for _, h := range []struct {
		label string
		w     float64
	}{{"Metric", 70}, {"Value", 30}, {"Trend", 35}, {"Status", 35}} {
		pdf.CellFormat(h.w, 7, h.label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, m := range metrics {
		pdf.CellFormat(70, 6, m.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", m.Value), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, m.Trend, "1", 0, "C", false, 0, "")
		g.setStatusColor(pdf, m.Status)
		pdf.CellFormat(35, 6, m.Status, "1", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) setStatusColor(pdf *gofpdf.Fpdf, status string) {
	switch status {
	case "good":
		pdf.SetTextColor(0, 128, 0)
	case "warning":
		pdf.SetTextColor(200, 120, 0)
	case "concerning":
		pdf.SetTextColor(200, 0, 0)
	default:
		pdf.SetTextColor(0, 0, 0)
	}
}

func (g *PDFGenerator) addPatterns(pdf *gofpdf.Fpdf, tr func(string) string, patterns model.SymptomPatterns) {
	g.addSectionHeader(pdf, "Patterns")

	rows := []struct {
		label  string
		values []string
	}{
		{"Most common symptoms", patterns.CommonSymptoms},
		{"Frequent triggers", patterns.FrequentTriggers},
		{"Time patterns", patterns.TimePatterns},
	}
	for _, row := range rows {
		value := "none"
		if len(row.values) > 0 {
			value = strings.Join(row.values, ", ")
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 6, row.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(value), "", "L", false)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(55, 6, "Average severity:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d/10", patterns.AverageSeverity), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

func (g *PDFGenerator) addInsights(pdf *gofpdf.Fpdf, tr func(string) string, insights []string) {
	if len(insights) == 0 {
		return
	}
	g.addSectionHeader(pdf, "Insights")
	for _, insight := range insights {
		pdf.MultiCell(0, 6, tr("- "+insight), "", "L", false)
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addSymptomLog(pdf *gofpdf.Fpdf, tr func(string) string, entries []model.SymptomEntry, loc *time.Location) {
	g.addSectionHeader(pdf, "Symptom Log")

	if len(entries) == 0 {
		pdf.CellFormat(0, 8, "No symptoms recorded during this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	widths := []float64{32, 45, 20, 73}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range []string{"Date", "Symptom", "Severity", "Triggers"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, e := range entries {
		pdf.CellFormat(widths[0], 6, e.Timestamp.In(loc).Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(truncate(e.Symptom, 28)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%d/10", e.Severity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(truncate(strings.Join(e.Triggers, ", "), 45)), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addDisclaimer(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 4, disclaimer, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
