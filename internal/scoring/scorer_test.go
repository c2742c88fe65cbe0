package scoring

import (
	"testing"

	"secscan-go/internal/models"
	"secscan-go/internal/severity"

	"github.com/stretchr/testify/assert"
)

func findingsWith(sevs ...severity.Severity) []models.Finding {
	findings := make([]models.Finding, len(sevs))
	for i, sev := range sevs {
		findings[i] = models.Finding{ID: "f", Severity: sev}
	}
	return findings
}

func TestScore(t *testing.T) {
	testCases := []struct {
		name     string
		findings []models.Finding
		expected float64
	}{
		{name: "no findings is perfect", findings: nil, expected: 100},
		{name: "single critical", findings: findingsWith(severity.Critical), expected: 80},
		{name: "single high", findings: findingsWith(severity.High), expected: 90},
		{name: "single medium", findings: findingsWith(severity.Medium), expected: 95},
		{name: "single low", findings: findingsWith(severity.Low), expected: 98},
		{
			name:     "mixed severities",
			findings: findingsWith(severity.Critical, severity.High, severity.Medium, severity.Low),
			expected: 63,
		},
		{
			name: "clamped at zero",
			findings: findingsWith(
				severity.Critical, severity.Critical, severity.Critical,
				severity.Critical, severity.Critical, severity.Critical,
			),
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Score(tc.findings))
		})
	}
}

func TestScoreNeverIncreasesWithMoreFindings(t *testing.T) {
	findings := findingsWith(severity.Low)
	previous := Score(nil)

	for i := 0; i < 60; i++ {
		findings = append(findings, models.Finding{ID: "f", Severity: severity.Low})
		current := Score(findings)
		assert.LessOrEqual(t, current, previous)
		assert.GreaterOrEqual(t, current, 0.0)
		previous = current
	}
}

func TestScoreCountsMatchesScore(t *testing.T) {
	findings := findingsWith(severity.Critical, severity.High, severity.High, severity.Low)
	counts := map[severity.Severity]int{
		severity.Critical: 1,
		severity.High:     2,
		severity.Low:      1,
	}

	assert.Equal(t, Score(findings), scoreCounts(counts))
}

func TestRecordTrend(t *testing.T) {
	testCases := []struct {
		name     string
		scores   []float64
		expected Trend
	}{
		{name: "first score is stable", scores: []float64{80}, expected: Stable},
		{name: "improving", scores: []float64{60, 75}, expected: Improving},
		{name: "degrading", scores: []float64{75, 60}, expected: Degrading},
		{name: "within dead band up", scores: []float64{80, 80.5}, expected: Stable},
		{name: "within dead band down", scores: []float64{80, 79.5}, expected: Stable},
		{name: "exactly on dead band", scores: []float64{80, 81}, expected: Stable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scorer := NewScorer()

			var trend Trend
			for _, score := range tc.scores {
				trend = scorer.Record("project", score)
			}

			assert.Equal(t, tc.expected, trend)
		})
	}
}

func TestHistoryBounded(t *testing.T) {
	scorer := NewScorer()

	for i := 0; i < 25; i++ {
		scorer.Record("project", float64(i))
	}

	history := scorer.History("project")
	assert.Len(t, history, 10)
	// Oldest entries evicted first.
	assert.Equal(t, 15.0, history[0])
	assert.Equal(t, 24.0, history[9])
}

func TestScorersAreIndependent(t *testing.T) {
	first := NewScorer()
	second := NewScorer()

	first.Record("project", 50)
	trend := second.Record("project", 90)

	assert.Equal(t, Stable, trend)
	assert.Empty(t, second.History("other"))
	assert.Len(t, first.History("project"), 1)
}
