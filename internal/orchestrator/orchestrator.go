package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"secscan-go/internal/alerting"
	"secscan-go/internal/database"
	"secscan-go/internal/helper"
	"secscan-go/internal/models"
	"secscan-go/internal/notify"
	"secscan-go/internal/report"
	"secscan-go/internal/scanner"
	"secscan-go/internal/scoring"
	"secscan-go/internal/severity"
	"secscan-go/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// ScanPlan is one scan type to run, with its own timeout.
type ScanPlan struct {
	Type    scanner.ScanType
	Timeout time.Duration
}

type Config struct {
	Plans []ScanPlan
	// Serialize makes overlapping RunAssessment calls take turns instead
	// of running concurrently.
	Serialize bool
}

// Orchestrator coordinates one assessment run: concurrent scan fan-out with
// per-scan isolation, scoring, alert evaluation, incident creation, report
// persistence and listener notification.
type Orchestrator struct {
	cfg       Config
	service   *scanner.Service
	scorer    *scoring.Scorer
	evaluator *alerting.Evaluator
	incidents incidentCreator
	reports   *report.Storage
	db        *database.Database
	channel   notify.Channel
	tracker   *telemetry.Tracker

	runMu sync.Mutex

	// onScanDone, when set, is called as each scan finishes. Used by the
	// CLI for progress reporting.
	onScanDone func(scanner.ScanType)
}

type incidentCreator interface {
	Create(sev severity.Severity, title, description string) (*models.Incident, error)
}

func New(
	cfg Config,
	service *scanner.Service,
	scorer *scoring.Scorer,
	evaluator *alerting.Evaluator,
	incidents incidentCreator,
	reports *report.Storage,
	db *database.Database,
	channel notify.Channel,
	tracker *telemetry.Tracker,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		service:   service,
		scorer:    scorer,
		evaluator: evaluator,
		incidents: incidents,
		reports:   reports,
		db:        db,
		channel:   channel,
		tracker:   tracker,
	}
}

func (o *Orchestrator) SetProgressFunc(fn func(scanner.ScanType)) {
	o.onScanDone = fn
}

func (o *Orchestrator) Plans() []ScanPlan {
	return o.cfg.Plans
}

type scanOutcome struct {
	plan   ScanPlan
	result *models.ScanResult
	err    error
}

// RunAssessment executes every configured scan type concurrently, isolating
// per-scan failures, then scores, alerts, reports and notifies. Only a
// failure of the orchestrator itself (report or assessment persistence)
// surfaces as an error.
func (o *Orchestrator) RunAssessment(ctx context.Context, target scanner.Target) (*models.Assessment, error) {
	if o.cfg.Serialize {
		o.runMu.Lock()
		defer o.runMu.Unlock()
	}

	assessmentID := "assessment-" + helper.GenerateRandomID()
	startedAt := time.Now().UTC()

	log.Info().Str("assessment_id", assessmentID).Int("scans", len(o.cfg.Plans)).Msg("starting assessment")
	o.sendEvent("assessmentStarted", map[string]any{
		"assessment_id": assessmentID,
		"timestamp":     startedAt,
	})

	outcomes := make(chan scanOutcome, len(o.cfg.Plans))
	for _, plan := range o.cfg.Plans {
		go o.executePlan(ctx, plan, target, outcomes)
	}

	var successful []models.ScanResult
	var failed []models.FailedScan
	for range o.cfg.Plans {
		outcome := <-outcomes

		if o.onScanDone != nil {
			o.onScanDone(outcome.plan.Type)
		}

		if outcome.err != nil {
			log.Error().Str("scan_type", string(outcome.plan.Type)).Err(outcome.err).Msg("scan failed")
			failed = append(failed, models.FailedScan{
				ScanType: string(outcome.plan.Type),
				Error:    outcome.err.Error(),
			})
			continue
		}

		if outcome.result.Status == models.ScanFailed {
			failed = append(failed, models.FailedScan{
				ScanType: string(outcome.plan.Type),
				Error:    outcome.result.Error,
			})
			continue
		}

		successful = append(successful, *outcome.result)

		// Critical findings are alerted immediately, before the rest of
		// the assessment completes.
		if outcome.result.HasSeverity(severity.Critical) {
			o.sendEvent("securityAlert", alerting.Alert{
				AlertID:     "CRIT_" + time.Now().UTC().Format("20060102150405"),
				Severity:    severity.Critical,
				Title:       fmt.Sprintf("Critical findings in %s scan", outcome.plan.Type),
				Description: "Scheduled scan detected critical security issues",
				Source:      "scheduled_scan",
				RaisedAt:    time.Now().UTC(),
			})
		}
	}

	var allFindings []models.Finding
	counts := map[severity.Severity]int{}
	for _, result := range successful {
		allFindings = append(allFindings, result.Findings...)
		for sev, count := range result.SeverityCounts {
			counts[sev] += count
		}
	}

	riskScore := scoring.Score(allFindings)
	trend := o.scorer.Record(target.ProjectID, riskScore)
	o.tracker.TrackMetric("SecurityRiskScore", riskScore)

	for _, alert := range o.evaluator.Evaluate(counts, &riskScore) {
		o.sendEvent("securityAlert", alert)
		if alert.Severity == severity.Critical || alert.Severity == severity.High {
			if _, err := o.incidents.Create(alert.Severity, alert.Title, alert.Description); err != nil {
				log.Error().Str("alert_id", alert.AlertID).Err(err).Msg("failed to create incident from alert")
			}
		}
	}

	rep := report.Build(assessmentID, successful, failed, riskScore, string(trend))
	if err := o.reports.Store(rep); err != nil {
		return nil, o.failAssessment(assessmentID, err)
	}

	assessment := &models.Assessment{
		AssessmentID: assessmentID,
		ProjectID:    target.ProjectID,
		StartedAt:    startedAt,
		CompletedAt:  time.Now().UTC(),
		RiskScore:    riskScore,
		Trend:        string(trend),
		ReportID:     rep.ReportID,
		Scans:        successful,
		FailedScans:  failed,
	}
	if err := o.db.SaveAssessment(assessment); err != nil {
		return nil, o.failAssessment(assessmentID, err)
	}

	o.tracker.TrackEvent("AssessmentCompleted", map[string]any{
		"assessment_id": assessmentID,
		"risk_score":    riskScore,
		"failed_scans":  len(failed),
	})

	// Listeners hear about completion even when some scan types failed.
	o.sendEvent("assessmentCompleted", map[string]any{
		"assessment_id": assessmentID,
		"report_id":     rep.ReportID,
		"risk_score":    riskScore,
		"trend":         string(trend),
		"failed_scans":  len(failed),
		"summary":       rep.Summary,
	})

	log.Info().
		Str("assessment_id", assessmentID).
		Float64("risk_score", riskScore).
		Int("successful", len(successful)).
		Int("failed", len(failed)).
		Msg("assessment completed")

	return assessment, nil
}

// executePlan runs one scan under its own timeout. A panic, error or
// timeout in one scan never cancels or corrupts the others.
func (o *Orchestrator) executePlan(ctx context.Context, plan ScanPlan, target scanner.Target, outcomes chan<- scanOutcome) {
	scanCtx, cancel := context.WithTimeout(ctx, plan.Timeout)
	defer cancel()

	done := make(chan scanOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- scanOutcome{plan: plan, err: fmt.Errorf("scan panicked: %v", r)}
			}
		}()

		scanTarget := target
		scanTarget.ScanID = "" // each scan gets its own id
		result, err := o.service.ExecuteScan(scanCtx, plan.Type, scanTarget)
		done <- scanOutcome{plan: plan, result: result, err: err}
	}()

	select {
	case outcome := <-done:
		outcomes <- outcome
	case <-scanCtx.Done():
		outcomes <- scanOutcome{plan: plan, err: scanner.ErrScanTimeout}
	}
}

func (o *Orchestrator) failAssessment(assessmentID string, err error) error {
	log.Error().Str("assessment_id", assessmentID).Err(err).Msg("assessment failed")
	o.sendEvent("assessmentFailed", map[string]any{
		"assessment_id": assessmentID,
		"error":         err.Error(),
		"timestamp":     time.Now().UTC(),
	})

	return fmt.Errorf("assessment %s failed: %w", assessmentID, err)
}

// sendEvent is fire-and-forget: a notification failure is logged, never
// propagated.
func (o *Orchestrator) sendEvent(event string, payload any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.channel.Send(ctx, event, payload); err != nil {
		log.Error().Str("event", event).Err(err).Msg("notification delivery failed")
	}
}
