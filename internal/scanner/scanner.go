package scanner

import (
	"context"
	"errors"
	"fmt"

	"secscan-go/internal/models"
	"secscan-go/internal/severity"
)

type ScanType string

const (
	TypeDependency ScanType = "dependency"
	TypeCompliance ScanType = "compliance"
	TypeContainer  ScanType = "container"
	TypeSAST       ScanType = "sast"
)

var (
	// ErrInvalidConfiguration marks failures that prevent a scan from
	// starting at all, as opposed to partial lookup failures.
	ErrInvalidConfiguration = errors.New("invalid scanner configuration")

	// ErrScanTimeout marks a scan that exceeded its configured deadline.
	// The message is what ends up in the assessment's failed-scan record.
	ErrScanTimeout = errors.New("timeout")

	// ErrUnknownScanType is returned by the registry for unregistered types.
	ErrUnknownScanType = errors.New("unknown scan type")
)

func ParseScanType(s string) (ScanType, error) {
	switch ScanType(s) {
	case TypeDependency, TypeCompliance, TypeContainer, TypeSAST:
		return ScanType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScanType, s)
}

// Dependency is one package under scan.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Target carries the input for one scan execution. Each scanner reads the
// fields relevant to it.
type Target struct {
	ScanID       string
	ProjectID    string
	Dependencies []Dependency
	Policy       *PolicyInput
}

// Summary condenses a scan result for alert evaluation and reporting.
type Summary struct {
	ScanID         string                    `json:"scan_id"`
	ScanType       string                    `json:"scan_type"`
	Status         models.ScanStatus         `json:"status"`
	TotalFindings  int                       `json:"total_findings"`
	SeverityCounts map[severity.Severity]int `json:"severity_counts"`
}

// Scanner is the contract every scan variant implements. Validate is called
// before Scan; a validation error means the scan cannot start and the result
// is recorded as failed.
type Scanner interface {
	Type() ScanType
	Validate(ctx context.Context) error
	Scan(ctx context.Context, target Target) (*models.ScanResult, error)
	Summarize(result *models.ScanResult) Summary
}

// summarize is the shared Summarize implementation.
func summarize(result *models.ScanResult) Summary {
	return Summary{
		ScanID:         result.ScanID,
		ScanType:       result.ScanType,
		Status:         result.Status,
		TotalFindings:  len(result.Findings),
		SeverityCounts: result.SeverityCounts,
	}
}

// Registry maps scan types to scanners. It is resolved once at startup so
// an unregistered type is caught before any assessment runs.
type Registry struct {
	scanners map[ScanType]Scanner
}

func NewRegistry(scanners ...Scanner) (*Registry, error) {
	r := &Registry{scanners: make(map[ScanType]Scanner, len(scanners))}
	for _, s := range scanners {
		if _, dup := r.scanners[s.Type()]; dup {
			return nil, fmt.Errorf("duplicate scanner registered for type %q", s.Type())
		}
		r.scanners[s.Type()] = s
	}

	return r, nil
}

func (r *Registry) Get(t ScanType) (Scanner, error) {
	s, ok := r.scanners[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScanType, t)
	}
	return s, nil
}

func (r *Registry) Types() []ScanType {
	types := make([]ScanType, 0, len(r.scanners))
	for t := range r.scanners {
		types = append(types, t)
	}
	return types
}
