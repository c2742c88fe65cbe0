package report

import (
	"time"

	"secscan-go/internal/database"
	"secscan-go/internal/helper"
	"secscan-go/internal/models"
	"secscan-go/internal/severity"
)

// Build assembles the persisted summary of one assessment: totals, severity
// distribution and the per-scan-type breakdown, with every failed scan type
// named explicitly.
func Build(assessmentID string, results []models.ScanResult, failed []models.FailedScan, riskScore float64, trend string) *models.Report {
	summary := models.ReportSummary{
		SeverityCounts: map[severity.Severity]int{
			severity.Critical: 0,
			severity.High:     0,
			severity.Medium:   0,
			severity.Low:      0,
		},
		ByScanType:  make(map[string]models.ScanBreakdown, len(results)),
		RiskScore:   riskScore,
		Trend:       trend,
		FailedScans: failed,
	}

	for _, result := range results {
		summary.TotalFindings += len(result.Findings)
		for sev, count := range result.SeverityCounts {
			summary.SeverityCounts[sev] += count
		}
		summary.ByScanType[result.ScanType] = models.ScanBreakdown{
			ScanID:         result.ScanID,
			Findings:       len(result.Findings),
			SeverityCounts: result.SeverityCounts,
			Status:         result.Status,
		}
	}

	return &models.Report{
		ReportID:     "report-" + helper.GenerateRandomID(),
		AssessmentID: assessmentID,
		GeneratedAt:  time.Now().UTC(),
		Summary:      summary,
	}
}

// Storage persists and retrieves reports.
type Storage struct {
	db *database.Database
}

func NewStorage(db *database.Database) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Store(r *models.Report) error {
	return s.db.SaveReport(r)
}

func (s *Storage) Recent(limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.db.GetReports(limit)
}
