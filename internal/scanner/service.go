package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"secscan-go/internal/database"
	"secscan-go/internal/helper"
	"secscan-go/internal/models"
	"secscan-go/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// Service executes scans through the registry and owns their results until
// they are persisted.
type Service struct {
	registry *Registry
	db       *database.Database
	tracker  *telemetry.Tracker
}

func NewService(registry *Registry, db *database.Database, tracker *telemetry.Tracker) *Service {
	return &Service{
		registry: registry,
		db:       db,
		tracker:  tracker,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// ExecuteScan runs one scan to completion and persists the result. Scanner
// failures degrade to a failed result; only persistence failures and unknown
// scan types surface as errors.
func (s *Service) ExecuteScan(ctx context.Context, scanType ScanType, target Target) (*models.ScanResult, error) {
	sc, err := s.registry.Get(scanType)
	if err != nil {
		return nil, err
	}

	if target.ScanID == "" {
		target.ScanID = fmt.Sprintf("%s-%s", scanType, helper.GenerateRandomID())
	}

	log.Info().Str("scan_id", target.ScanID).Str("scan_type", string(scanType)).Msg("starting scan")

	result := s.runScan(ctx, sc, target)

	// A scan that outlived its context is recorded as failed even when the
	// scanner eventually returned findings, so storage matches what the
	// assessment reported for it.
	if ctxErr := ctx.Err(); ctxErr != nil && result.Status == models.ScanCompleted {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			ctxErr = ErrScanTimeout
		}
		result.Fail(ctxErr)
	}

	if err := s.db.SaveScanResult(result); err != nil {
		return nil, err
	}

	s.tracker.TrackEvent("ScanCompleted", map[string]any{
		"scan_id":   result.ScanID,
		"scan_type": result.ScanType,
		"status":    string(result.Status),
		"findings":  len(result.Findings),
	})

	log.Info().
		Str("scan_id", result.ScanID).
		Str("status", string(result.Status)).
		Int("findings", len(result.Findings)).
		Msg("scan finished")

	return result, nil
}

func (s *Service) runScan(ctx context.Context, sc Scanner, target Target) *models.ScanResult {
	result := &models.ScanResult{
		ScanID:    target.ScanID,
		ScanType:  string(sc.Type()),
		ProjectID: target.ProjectID,
		StartedAt: time.Now().UTC(),
	}

	if err := sc.Validate(ctx); err != nil {
		log.Error().Str("scan_type", string(sc.Type())).Err(err).Msg("scanner validation failed")
		result.Fail(err)
		return result
	}

	scanned, err := sc.Scan(ctx, target)
	if err != nil {
		log.Error().Str("scan_type", string(sc.Type())).Err(err).Msg("scan failed")
		result.Fail(err)
		return result
	}

	return scanned
}

// Summarize produces the summary for a persisted or in-flight result.
func (s *Service) Summarize(result *models.ScanResult) (Summary, error) {
	scanType, err := ParseScanType(result.ScanType)
	if err != nil {
		return Summary{}, err
	}

	sc, err := s.registry.Get(scanType)
	if err != nil {
		return Summary{}, err
	}

	return sc.Summarize(result), nil
}

func (s *Service) GetScan(scanID string) (*models.ScanResult, error) {
	return s.db.GetScanResult(scanID)
}

func (s *Service) RecentScans(limit int) ([]models.ScanResult, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.db.GetRecentScans(limit)
}
