package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
	"go.uber.org/zap"
)

// ReportGenerator renders the physician copy of a risk assessment
type ReportGenerator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewReportGenerator creates a new ReportGenerator
func NewReportGenerator(logger *zap.Logger) *ReportGenerator {
	return &ReportGenerator{
		logger: logger,
		now:    time.Now,
	}
}

// ReportData contains everything printed on the physician report
type ReportData struct {
	Profile    model.Profile
	Assessment model.AssessmentResult
	HealthLog  *model.HealthLog
}

// Generate creates a PDF report from the provided data
func (g *ReportGenerator) Generate(data ReportData) ([]byte, error) {
	g.logger.Info("generating physician report",
		zap.String("risk_level", string(data.Assessment.RiskLevel)),
		zap.Int("risk_score", data.Assessment.RiskScore),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	g.addTitle(pdf, tr, data.Profile)
	g.addPatientDetails(pdf, tr, data.Profile)
	g.addRisk(pdf, data.Assessment)
	g.addClinicalSummary(pdf, tr, data.Assessment.DoctorReportSummary)
	g.addRecommendations(pdf, tr, data.Assessment.Recommendations)
	if data.HealthLog != nil {
		g.addWeeklyAverages(pdf, *data.HealthLog)
	}
	g.addDisclaimer(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("physician report generated",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

func (g *ReportGenerator) addTitle(pdf *gofpdf.Fpdf, tr func(string) string, p model.Profile) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "PCOS Screening Summary", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Patient: %s %s", p.FirstName, p.LastName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", g.now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

// addSectionHeader adds a section header
func (g *ReportGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

func (g *ReportGenerator) addPatientDetails(pdf *gofpdf.Fpdf, tr func(string) string, p model.Profile) {
	g.addSectionHeader(pdf, "Patient Details")

	rows := [][2]string{
		{"Age", fmt.Sprintf("%d", p.Age)},
		{"Height / Weight", fmt.Sprintf("%.0f cm / %.1f kg", p.Height, p.Weight)},
		{"BMI", fmt.Sprintf("%.1f", p.BMI())},
		{"Blood type", p.BloodType},
		{"Cycle", fmt.Sprintf("%d days, %s", p.CycleLength, p.CycleRegularity)},
		{"Activity level", string(p.ActivityLevel)},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (g *ReportGenerator) addRisk(pdf *gofpdf.Fpdf, a model.AssessmentResult) {
	g.addSectionHeader(pdf, "Risk Assessment")

	r, gr, b := riskColor(a.RiskLevel)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s risk (score %d/100)", a.RiskLevel, a.RiskScore), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(5)
}

func (g *ReportGenerator) addClinicalSummary(pdf *gofpdf.Fpdf, tr func(string) string, summary string) {
	g.addSectionHeader(pdf, "Clinical Summary")

	if summary == "" {
		pdf.CellFormat(0, 8, "No clinical summary provided.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}
	pdf.MultiCell(0, 5, tr(summary), "", "L", false)
	pdf.Ln(5)
}

func (g *ReportGenerator) addRecommendations(pdf *gofpdf.Fpdf, tr func(string) string, recs []string) {
	g.addSectionHeader(pdf, "Recommendations")

	if len(recs) == 0 {
		pdf.CellFormat(0, 8, "No recommendations provided.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}
	for i, rec := range recs {
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, rec)), "", "L", false)
	}
	pdf.Ln(5)
}

// addWeeklyAverages summarizes the rolling health log
func (g *ReportGenerator) addWeeklyAverages(pdf *gofpdf.Fpdf, log model.HealthLog) {
	g.addSectionHeader(pdf, "Last 7 Days")

	pdf.CellFormat(0, 6, fmt.Sprintf("Average sleep: %.1f h", average(log.Sleep)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Average stress: %.1f / 10", average(log.Stress)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Average active calories: %.0f kcal", average(log.Calories)), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

func (g *ReportGenerator) addDisclaimer(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.MultiCell(0, 4, "This summary was produced by an AI screening tool and is not a diagnosis. "+
		"Clinical evaluation against the Rotterdam criteria is required.", "", "L", false)
	pdf.SetTextColor(0, 0, 0)
}

func riskColor(level model.RiskLevel) (int, int, int) {
	switch level {
	case model.RiskHigh:
		return 190, 30, 45
	case model.RiskModerate:
		return 200, 120, 0
	default:
		return 20, 130, 60
	}
}

func average(entries []model.HealthLogEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Value
	}
	return sum / float64(len(entries))
}
