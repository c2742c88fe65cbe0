package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"secscan-go/internal/database"
	"secscan-go/internal/models"
	"secscan-go/internal/severity"
	"secscan-go/internal/telemetry"

	"github.com/stretchr/testify/assert"
)

type faultyScanner struct {
	scanType    ScanType
	validateErr error
	scanErr     error
	findings    []models.Finding
	delay       time.Duration
}

func (s *faultyScanner) Type() ScanType { return s.scanType }

func (s *faultyScanner) Validate(ctx context.Context) error { return s.validateErr }

func (s *faultyScanner) Scan(ctx context.Context, target Target) (*models.ScanResult, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.scanErr != nil {
		return nil, s.scanErr
	}

	result := &models.ScanResult{ScanID: target.ScanID, ScanType: string(s.scanType), ProjectID: target.ProjectID}
	result.Complete(s.findings)
	return result, nil
}

func (s *faultyScanner) Summarize(result *models.ScanResult) Summary { return summarize(result) }

func newTestService(t *testing.T, scanners ...Scanner) (*Service, *database.Database) {
	db, err := database.InitializeTestDatabase()
	assert.NoError(t, err)

	registry, err := NewRegistry(scanners...)
	assert.NoError(t, err)

	return NewService(registry, db, telemetry.NewTracker(nil)), db
}

func TestExecuteScanPersistsResult(t *testing.T) {
	findings := []models.Finding{{ID: "f-1", Severity: severity.High}}
	service, db := newTestService(t, &faultyScanner{scanType: TypeDependency, findings: findings})

	result, err := service.ExecuteScan(context.Background(), TypeDependency, Target{ProjectID: "project"})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, models.ScanCompleted, result.Status)

	stored, err := db.GetScanResult(result.ScanID)
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Len(t, stored.Findings, 1)
	assert.Equal(t, "f-1", stored.Findings[0].ID)
}

func TestExecuteScanValidationFailure(t *testing.T) {
	service, db := newTestService(t, &faultyScanner{
		scanType:    TypeDependency,
		validateErr: errors.New("no source reachable"),
	})

	result, err := service.ExecuteScan(context.Background(), TypeDependency, Target{ScanID: "scan-1"})

	assert.NoError(t, err)
	assert.Equal(t, models.ScanFailed, result.Status)
	assert.Contains(t, result.Error, "no source reachable")

	stored, err := db.GetScanResult("scan-1")
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, models.ScanFailed, stored.Status)
}

func TestExecuteScanScannerFailure(t *testing.T) {
	service, _ := newTestService(t, &faultyScanner{
		scanType: TypeCompliance,
		scanErr:  errors.New("boom"),
	})

	result, err := service.ExecuteScan(context.Background(), TypeCompliance, Target{})

	assert.NoError(t, err)
	assert.Equal(t, models.ScanFailed, result.Status)
	assert.Equal(t, "boom", result.Error)
}

func TestExecuteScanExpiredContext(t *testing.T) {
	findings := []models.Finding{{ID: "f-1", Severity: severity.High}}
	service, db := newTestService(t, &faultyScanner{
		scanType: TypeDependency,
		findings: findings,
		delay:    50 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	// The scanner ignores the deadline and eventually completes; the late
	// success must still be recorded as a timeout, not a completed scan.
	result, err := service.ExecuteScan(ctx, TypeDependency, Target{ScanID: "scan-late"})

	assert.NoError(t, err)
	assert.Equal(t, models.ScanFailed, result.Status)
	assert.Equal(t, "timeout", result.Error)

	stored, err := db.GetScanResult("scan-late")
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, models.ScanFailed, stored.Status)
	assert.Empty(t, stored.Findings)
}

func TestExecuteScanUnknownType(t *testing.T) {
	service, _ := newTestService(t, &faultyScanner{scanType: TypeDependency})

	_, err := service.ExecuteScan(context.Background(), TypeSAST, Target{})

	assert.ErrorIs(t, err, ErrUnknownScanType)
}

func TestServiceSummarize(t *testing.T) {
	service, _ := newTestService(t, &faultyScanner{scanType: TypeDependency})

	result := &models.ScanResult{ScanID: "scan-1", ScanType: "dependency"}
	result.Complete([]models.Finding{{ID: "a", Severity: severity.Critical}})

	summary, err := service.Summarize(result)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.TotalFindings)

	result.ScanType = "network"
	_, err = service.Summarize(result)
	assert.Error(t, err)
}

func TestRecentScans(t *testing.T) {
	service, _ := newTestService(t, &faultyScanner{scanType: TypeDependency})

	for i := 0; i < 3; i++ {
		_, err := service.ExecuteScan(context.Background(), TypeDependency, Target{})
		assert.NoError(t, err)
	}

	scans, err := service.RecentScans(2)
	assert.NoError(t, err)
	assert.Len(t, scans, 2)
}
