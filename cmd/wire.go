package cmd

import (
	"fmt"

	"secscan-go/internal/alerting"
	"secscan-go/internal/configuration"
	"secscan-go/internal/database"
	"secscan-go/internal/notify"
	"secscan-go/internal/orchestrator"
	"secscan-go/internal/report"
	"secscan-go/internal/response"
	"secscan-go/internal/scanner"
	"secscan-go/internal/scoring"
	"secscan-go/internal/telemetry"
	"secscan-go/internal/vulndb"
)

// pipeline holds the wired assessment components shared by the run and
// scan commands.
type pipeline struct {
	db         *database.Database
	service    *scanner.Service
	orch       *orchestrator.Orchestrator
	incidents  *response.Manager
	reports    *report.Storage
	dispatcher *notify.Dispatcher
	target     scanner.Target
}

func buildPipeline() (*pipeline, error) {
	cfg := &configuration.Config.Scan

	db, err := database.InitializeDatabase(configuration.Config.DBFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var channel notify.Channel = notify.LogChannel{}
	if cfg.Webhook.URL != "" {
		channel = notify.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Token)
	}

	dispatcher := notify.NewDispatcher(channel, notify.DefaultQueueSize)
	dispatcher.Start()

	tracker := telemetry.NewTracker(channel)

	sources := []vulndb.Source{vulndb.NewOSVClient(cfg.Sources.OSVURL)}
	if cfg.Sources.MirrorURL != "" {
		sources = append(sources, vulndb.NewMirrorClient(cfg.Sources.MirrorURL, cfg.Sources.MirrorToken))
	}
	multi := vulndb.NewMultiSource(sources...)

	registry, err := scanner.NewRegistry(
		scanner.NewDependencyScanner(multi, cfg.Ecosystem),
		scanner.NewComplianceScanner(cfg.Policy),
	)
	if err != nil {
		dispatcher.Stop()
		return nil, err
	}

	service := scanner.NewService(registry, db, tracker)
	incidents := response.NewManager(db, dispatcher, tracker)
	reports := report.NewStorage(db)

	var plans []orchestrator.ScanPlan
	for _, plan := range cfg.Scans {
		scanType, err := scanner.ParseScanType(plan.Type)
		if err != nil {
			dispatcher.Stop()
			return nil, err
		}
		plans = append(plans, orchestrator.ScanPlan{
			Type:    scanType,
			Timeout: plan.PlanTimeout(),
		})
	}

	orch := orchestrator.New(
		orchestrator.Config{
			Plans:     plans,
			Serialize: cfg.Assessment.Serialize,
		},
		service,
		scoring.NewScorer(),
		alerting.NewEvaluator(cfg.Thresholds),
		incidents,
		reports,
		db,
		channel,
		tracker,
	)

	return &pipeline{
		db:         db,
		service:    service,
		orch:       orch,
		incidents:  incidents,
		reports:    reports,
		dispatcher: dispatcher,
		target: scanner.Target{
			ProjectID:    cfg.ProjectID,
			Dependencies: cfg.Dependencies,
			Policy:       cfg.Policy,
		},
	}, nil
}

func (p *pipeline) Close() {
	p.dispatcher.Stop()
}
