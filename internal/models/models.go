package models

import (
	"encoding/json"
	"fmt"
	"time"

	"secscan-go/internal/helper"
	"secscan-go/internal/incident"
	"secscan-go/internal/severity"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ScanStatus string

const (
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// Finding is a single security observation. Immutable once created;
// identity is ID, uniqueness is enforced by the producing scanner.
type Finding struct {
	ID             string            `json:"id" gorm:"primaryKey"`
	ScanResultID   string            `json:"-" gorm:"index"`
	Severity       severity.Severity `json:"severity" gorm:"index"`
	Category       string            `json:"category"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Resource       string            `json:"resource_id"`
	Recommendation string            `json:"recommendation"`
	DetectedAt     time.Time         `json:"detected_at"`
	Metadata       map[string]string `json:"metadata,omitempty" gorm:"serializer:json"`
}

// NewFinding constructs a finding, rejecting any severity outside the four
// recognized levels instead of falling back to a default.
func NewFinding(id string, sev severity.Severity, category, title, description, resource, recommendation string) (Finding, error) {
	if !sev.Valid() {
		return Finding{}, fmt.Errorf("finding %s: unrecognized severity %q", id, sev)
	}

	return Finding{
		ID:             id,
		Severity:       sev,
		Category:       category,
		Title:          title,
		Description:    description,
		Resource:       resource,
		Recommendation: recommendation,
		DetectedAt:     time.Now().UTC(),
	}, nil
}

// Flatten serializes the finding to a flat key-value representation.
// Metadata entries are prefixed with "meta.".
func (f Finding) Flatten() map[string]string {
	flat := map[string]string{
		"id":             f.ID,
		"severity":       string(f.Severity),
		"category":       f.Category,
		"title":          f.Title,
		"description":    f.Description,
		"resource_id":    f.Resource,
		"recommendation": f.Recommendation,
		"detected_at":    f.DetectedAt.Format(time.RFC3339Nano),
	}

	for k, v := range f.Metadata {
		flat["meta."+k] = v
	}

	return flat
}

// FindingFromMap rebuilds a finding from its flat representation.
func FindingFromMap(flat map[string]string) (Finding, error) {
	sev, err := severity.Parse(flat["severity"])
	if err != nil {
		return Finding{}, fmt.Errorf("finding %s: %w", flat["id"], err)
	}

	f := Finding{
		ID:             flat["id"],
		Severity:       sev,
		Category:       flat["category"],
		Title:          flat["title"],
		Description:    flat["description"],
		Resource:       flat["resource_id"],
		Recommendation: flat["recommendation"],
	}

	if raw, ok := flat["detected_at"]; ok && raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Finding{}, fmt.Errorf("finding %s: invalid detected_at: %w", f.ID, err)
		}
		f.DetectedAt = t
	}

	for k, v := range flat {
		if len(k) > 5 && k[:5] == "meta." {
			if f.Metadata == nil {
				f.Metadata = map[string]string{}
			}
			f.Metadata[k[5:]] = v
		}
	}

	return f, nil
}

// ScanResult is the output of one scanner execution. Never mutated after
// completion.
type ScanResult struct {
	ScanID         string                    `json:"scan_id" gorm:"primaryKey"`
	AssessmentID   string                    `json:"-" gorm:"index"`
	ScanType       string                    `json:"scan_type" gorm:"index"`
	ProjectID      string                    `json:"project_id"`
	Status         ScanStatus                `json:"status"`
	Error          string                    `json:"error,omitempty"`
	StartedAt      time.Time                 `json:"started_at"`
	CompletedAt    time.Time                 `json:"completed_at"`
	Findings       []Finding                 `json:"findings" gorm:"foreignKey:ScanResultID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	SeverityCounts map[severity.Severity]int `json:"severity_counts" gorm:"serializer:json"`
}

// Complete finalizes the result: findings are attached, severity counts
// derived and the status set to completed.
func (r *ScanResult) Complete(findings []Finding) {
	counts := map[severity.Severity]int{
		severity.Critical: 0,
		severity.High:     0,
		severity.Medium:   0,
		severity.Low:      0,
	}
	for i := range findings {
		findings[i].ScanResultID = r.ScanID
		counts[findings[i].Severity]++
	}

	r.Findings = findings
	r.SeverityCounts = counts
	r.Status = ScanCompleted
	r.CompletedAt = time.Now().UTC()
}

// Fail finalizes the result as failed without findings.
func (r *ScanResult) Fail(err error) {
	r.Status = ScanFailed
	r.Error = err.Error()
	r.Findings = nil
	r.CompletedAt = time.Now().UTC()
	r.SeverityCounts = map[severity.Severity]int{}
}

func (r *ScanResult) HasSeverity(sev severity.Severity) bool {
	return r.SeverityCounts[sev] > 0
}

// Incident is a tracked remediation record. Never deleted, only closed;
// its timeline is append-only.
type Incident struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	Status      incident.Status   `json:"status" gorm:"index"`
	Priority    incident.Priority `json:"priority"`
	Severity    severity.Severity `json:"severity"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	AssignedTo  string            `json:"assigned_to,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Timeline    []IncidentEvent   `json:"timeline,omitempty" gorm:"foreignKey:IncidentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

type IncidentEvent struct {
	ID         string          `json:"-" gorm:"primaryKey"`
	IncidentID string          `json:"-" gorm:"index"`
	Status     incident.Status `json:"status"`
	Message    string          `json:"message"`
	CreatedAt  time.Time       `json:"timestamp" gorm:"index"`
}

func (e *IncidentEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = helper.GenerateRandomID()
	}

	return nil
}

// FailedScan records one isolated scan failure inside an assessment.
type FailedScan struct {
	ScanType string `json:"scan_type"`
	Error    string `json:"error"`
}

// Assessment is one orchestrator run across multiple scan types.
// Immutable after completion.
type Assessment struct {
	AssessmentID string       `json:"assessment_id" gorm:"primaryKey"`
	ProjectID    string       `json:"project_id"`
	StartedAt    time.Time    `json:"started_at"`
	CompletedAt  time.Time    `json:"completed_at"`
	RiskScore    float64      `json:"risk_score"`
	Trend        string       `json:"trend,omitempty"`
	ReportID     string       `json:"report_id"`
	Scans        []ScanResult `json:"successful_scans" gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	FailedScans  []FailedScan `json:"failed_scans" gorm:"serializer:json"`
}

// Report is the persisted summary of one assessment.
type Report struct {
	ReportID     string        `json:"report_id" gorm:"primaryKey"`
	AssessmentID string        `json:"assessment_id" gorm:"index"`
	GeneratedAt  time.Time     `json:"generated_at" gorm:"index"`
	Summary      ReportSummary `json:"summary" gorm:"serializer:json"`
}

type ReportSummary struct {
	TotalFindings  int                       `json:"total_findings"`
	SeverityCounts map[severity.Severity]int `json:"severity_counts"`
	ByScanType     map[string]ScanBreakdown  `json:"by_scan_type"`
	RiskScore      float64                   `json:"risk_score"`
	Trend          string                    `json:"trend,omitempty"`
	FailedScans    []FailedScan              `json:"failed_scans,omitempty"`
}

type ScanBreakdown struct {
	ScanID         string                    `json:"scan_id"`
	Findings       int                       `json:"findings"`
	SeverityCounts map[severity.Severity]int `json:"severity_counts"`
	Status         ScanStatus                `json:"status"`
}

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (r Response) Print() {
	data, err := json.Marshal(r)

	if err != nil {
		log.Error().Err(err).Msg("error serializing response")
		return
	}

	fmt.Println(string(data))
}
