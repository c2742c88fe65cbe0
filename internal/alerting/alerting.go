package alerting

import (
	"fmt"
	"time"

	"secscan-go/internal/severity"
)

// Alert is a notification triggered by crossing a severity or score
// threshold. Immutable once raised.
type Alert struct {
	AlertID     string            `json:"alert_id"`
	Severity    severity.Severity `json:"severity"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Source      string            `json:"source"`
	RaisedAt    time.Time         `json:"raised_at"`
}

// Thresholds are the recognized, overridable alert limits.
type Thresholds struct {
	CriticalIssues int     `mapstructure:"critical_issues" yaml:"critical_issues"`
	HighIssues     int     `mapstructure:"high_issues" yaml:"high_issues"`
	RiskScore      float64 `mapstructure:"risk_score" yaml:"risk_score"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalIssues: 1,
		HighIssues:     3,
		RiskScore:      70.0,
	}
}

// Evaluator turns scan summaries and metrics into alerts.
type Evaluator struct {
	thresholds Thresholds
}

func NewEvaluator(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate yields exactly one alert per crossed threshold. Repeated
// evaluation over the same inputs at the same instant is idempotent in
// content; ids are time-based.
func (e *Evaluator) Evaluate(counts map[severity.Severity]int, riskScore *float64) []Alert {
	now := time.Now().UTC()
	stamp := now.Format("20060102150405")

	var alerts []Alert

	if counts[severity.Critical] >= e.thresholds.CriticalIssues {
		alerts = append(alerts, Alert{
			AlertID:     "CRIT_" + stamp,
			Severity:    severity.Critical,
			Title:       "Critical Security Issues Detected",
			Description: fmt.Sprintf("Found %d critical security issues", counts[severity.Critical]),
			Source:      "security_scan",
			RaisedAt:    now,
		})
	}

	if counts[severity.High] >= e.thresholds.HighIssues {
		alerts = append(alerts, Alert{
			AlertID:     "HIGH_" + stamp,
			Severity:    severity.High,
			Title:       "High Risk Issues Detected",
			Description: fmt.Sprintf("Found %d high severity issues", counts[severity.High]),
			Source:      "security_scan",
			RaisedAt:    now,
		})
	}

	if riskScore != nil && *riskScore < e.thresholds.RiskScore {
		alerts = append(alerts, Alert{
			AlertID:     "RISK_" + stamp,
			Severity:    severity.High,
			Title:       "Security Risk Score Alert",
			Description: fmt.Sprintf("Security risk score has dropped below threshold: %.1f", *riskScore),
			Source:      "metrics",
			RaisedAt:    now,
		})
	}

	return alerts
}
