package scanner

import (
	"context"
	"testing"

	"secscan-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseScanType(t *testing.T) {
	testCases := []struct {
		input       string
		expectError bool
	}{
		{input: "dependency"},
		{input: "compliance"},
		{input: "container"},
		{input: "sast"},
		{input: "Dependency", expectError: true},
		{input: "network", expectError: true},
		{input: "", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result, err := ParseScanType(tc.input)

			if tc.expectError {
				assert.ErrorIs(t, err, ErrUnknownScanType)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, ScanType(tc.input), result)
		})
	}
}

type stubScanner struct {
	scanType ScanType
}

func (s *stubScanner) Type() ScanType                     { return s.scanType }
func (s *stubScanner) Validate(ctx context.Context) error { return nil }
func (s *stubScanner) Scan(ctx context.Context, target Target) (*models.ScanResult, error) {
	result := &models.ScanResult{ScanID: target.ScanID, ScanType: string(s.scanType)}
	result.Complete(nil)
	return result, nil
}
func (s *stubScanner) Summarize(result *models.ScanResult) Summary { return summarize(result) }

func TestRegistry(t *testing.T) {
	registry, err := NewRegistry(
		&stubScanner{scanType: TypeDependency},
		&stubScanner{scanType: TypeCompliance},
	)
	assert.NoError(t, err)

	sc, err := registry.Get(TypeDependency)
	assert.NoError(t, err)
	assert.Equal(t, TypeDependency, sc.Type())

	_, err = registry.Get(TypeContainer)
	assert.ErrorIs(t, err, ErrUnknownScanType)

	assert.Len(t, registry.Types(), 2)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		&stubScanner{scanType: TypeDependency},
		&stubScanner{scanType: TypeDependency},
	)

	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	result := &models.ScanResult{ScanID: "scan-1", ScanType: "dependency"}
	result.Complete([]models.Finding{
		{ID: "a", Severity: "CRITICAL"},
		{ID: "b", Severity: "LOW"},
	})

	summary := summarize(result)

	assert.Equal(t, "scan-1", summary.ScanID)
	assert.Equal(t, models.ScanCompleted, summary.Status)
	assert.Equal(t, 2, summary.TotalFindings)
	assert.Equal(t, 1, summary.SeverityCounts["CRITICAL"])
	assert.Equal(t, 1, summary.SeverityCounts["LOW"])
}
