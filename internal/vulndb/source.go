package vulndb

import (
	"context"
	"errors"
)

// ErrNoSource is returned when no configured vulnerability source is
// reachable. A scan cannot start without one.
var ErrNoSource = errors.New("no vulnerability source reachable")

// Vulnerability is one advisory record as reported by a source. Severity is
// kept verbatim; callers decide how to treat values outside the recognized
// levels.
type Vulnerability struct {
	ID           string   `json:"id"`
	Summary      string   `json:"summary"`
	Details      string   `json:"details,omitempty"`
	Severity     string   `json:"severity"`
	FixedVersion string   `json:"fixed_version,omitempty"`
	References   []string `json:"references,omitempty"`
}

// Source is one vulnerability database backend.
type Source interface {
	Name() string
	Ping(ctx context.Context) error
	Lookup(ctx context.Context, name, ecosystem, version string) ([]Vulnerability, error)
}
