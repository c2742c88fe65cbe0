package scoring

import (
	"sync"

	"secscan-go/internal/models"
	"secscan-go/internal/severity"
)

// Trend describes how the score moved relative to the previous run.
type Trend string

const (
	Improving Trend = "improving"
	Degrading Trend = "degrading"
	Stable    Trend = "stable"
)

// Score changes within this band are classified as stable.
const trendDeadBand = 1.0

// historySize bounds the per-target score history, FIFO eviction.
const historySize = 10

var weights = map[severity.Severity]float64{
	severity.Critical: 20,
	severity.High:     10,
	severity.Medium:   5,
	severity.Low:      2,
}

// Scorer computes risk scores and keeps a bounded score history per target
// for trend derivation. Each Scorer owns its own history, so independent
// instances do not share state.
type Scorer struct {
	mu      sync.Mutex
	history map[string][]float64
}

func NewScorer() *Scorer {
	return &Scorer{
		history: make(map[string][]float64),
	}
}

// Score is the canonical risk formula: start at 100, subtract a
// severity-weighted penalty per finding, clamp at 0. No normalization by
// finding count.
func Score(findings []models.Finding) float64 {
	counts := make(map[severity.Severity]int, len(weights))
	for _, f := range findings {
		counts[f.Severity]++
	}

	return scoreCounts(counts)
}

// scoreCounts applies the penalty formula to pre-aggregated severity counts.
func scoreCounts(counts map[severity.Severity]int) float64 {
	score := 100.0
	for sev, count := range counts {
		score -= weights[sev] * float64(count)
	}

	if score < 0 {
		return 0
	}

	return score
}

// Record appends a score to the target's history and returns the trend
// relative to the immediately preceding score. The first score for a target
// is stable by definition.
func (s *Scorer) Record(target string, score float64) Trend {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.history[target]
	trend := Stable
	if len(history) > 0 {
		previous := history[len(history)-1]
		switch delta := score - previous; {
		case delta > trendDeadBand:
			trend = Improving
		case delta < -trendDeadBand:
			trend = Degrading
		}
	}

	history = append(history, score)
	if len(history) > historySize {
		history = history[len(history)-historySize:]
	}
	s.history[target] = history

	return trend
}

// History returns a copy of the recorded scores for a target, oldest first.
func (s *Scorer) History(target string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.history[target]
	out := make([]float64, len(history))
	copy(out, history)
	return out
}
