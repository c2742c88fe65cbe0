package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"secscan-go/internal/helper"
	"secscan-go/internal/models"
	"secscan-go/internal/severity"
	"secscan-go/internal/vulndb"

	"github.com/rs/zerolog/log"
)

// DependencyScanner checks declared dependencies against the configured
// vulnerability sources.
type DependencyScanner struct {
	sources   *vulndb.MultiSource
	ecosystem string
}

func NewDependencyScanner(sources *vulndb.MultiSource, ecosystem string) *DependencyScanner {
	return &DependencyScanner{
		sources:   sources,
		ecosystem: ecosystem,
	}
}

func (s *DependencyScanner) Type() ScanType {
	return TypeDependency
}

// Validate fails when no vulnerability source is reachable. That is the one
// condition under which a dependency scan cannot start.
func (s *DependencyScanner) Validate(ctx context.Context) error {
	if err := s.sources.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return nil
}

func (s *DependencyScanner) Scan(ctx context.Context, target Target) (*models.ScanResult, error) {
	result := &models.ScanResult{
		ScanID:    target.ScanID,
		ScanType:  string(TypeDependency),
		ProjectID: target.ProjectID,
		StartedAt: time.Now().UTC(),
	}

	// Findings are collected per dependency so the final order follows the
	// input order even though lookups complete in any order.
	perDep := make([][]models.Finding, len(target.Dependencies))

	var wg sync.WaitGroup
	for i, dep := range target.Dependencies {
		if dep.Name == "" || dep.Version == "" {
			log.Warn().Str("name", dep.Name).Str("version", dep.Version).Msg("skipping dependency with missing name or version")
			continue
		}

		wg.Add(1)
		go func(i int, dep Dependency) {
			defer wg.Done()
			findings, err := s.checkDependency(ctx, dep)
			if err != nil {
				// A single lookup failure must not abort the scan.
				log.Error().Str("package", dep.Name).Err(err).Msg("dependency check failed")
				return
			}
			perDep[i] = findings
		}(i, dep)
	}
	wg.Wait()

	var findings []models.Finding
	for _, fs := range perDep {
		findings = append(findings, fs...)
	}

	result.Complete(findings)
	return result, nil
}

func (s *DependencyScanner) Summarize(result *models.ScanResult) Summary {
	return summarize(result)
}

func (s *DependencyScanner) checkDependency(ctx context.Context, dep Dependency) ([]models.Finding, error) {
	vulns, err := s.sources.Lookup(ctx, dep.Name, s.ecosystem, dep.Version)
	if err != nil {
		return nil, err
	}

	resource := fmt.Sprintf("%s@%s", dep.Name, dep.Version)

	var findings []models.Finding
	for _, vuln := range vulns {
		finding, err := s.mapVulnerability(vuln, dep, resource)
		if err != nil {
			log.Error().Str("vulnerability", vuln.ID).Err(err).Msg("dropping unmappable vulnerability record")
			continue
		}
		findings = append(findings, finding)
	}

	return findings, nil
}

func (s *DependencyScanner) mapVulnerability(vuln vulndb.Vulnerability, dep Dependency, resource string) (models.Finding, error) {
	// Severity is copied verbatim when recognized; anything else from a
	// vulnerability feed is downgraded to MEDIUM rather than dropped.
	sev, err := severity.Parse(vuln.Severity)
	if err != nil {
		sev = severity.Medium
	}

	recommendation := "Update to latest version"
	if vuln.FixedVersion != "" {
		recommendation = fmt.Sprintf("Update to %s", vuln.FixedVersion)
	}

	finding, err := models.NewFinding(
		helper.ContentID("DEP", vuln.ID, resource),
		sev,
		"dependency_vulnerability",
		fmt.Sprintf("Vulnerable Dependency: %s", dep.Name),
		vuln.Summary,
		resource,
		recommendation,
	)
	if err != nil {
		return models.Finding{}, err
	}

	finding.Metadata = map[string]string{
		"vulnerability_id": vuln.ID,
		"package_name":     dep.Name,
		"current_version":  dep.Version,
	}
	if vuln.FixedVersion != "" {
		finding.Metadata["fixed_version"] = vuln.FixedVersion
	}
	for i, ref := range vuln.References {
		finding.Metadata[fmt.Sprintf("reference_%d", i)] = ref
	}

	return finding, nil
}
