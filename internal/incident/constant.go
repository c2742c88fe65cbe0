package incident

import (
	"errors"

	"secscan-go/internal/severity"
)

type Status string
type Priority string

const (
	Open          Status = "OPEN"
	Investigating Status = "INVESTIGATING"
	Mitigating    Status = "MITIGATING"
	Resolved      Status = "RESOLVED"
	Closed        Status = "CLOSED"
)

const (
	P1 Priority = "P1" // Critical
	P2 Priority = "P2" // High
	P3 Priority = "P3" // Medium
	P4 Priority = "P4" // Low
)

// ErrInvalidTransition is returned when an incident update targets a status
// that is not reachable from the current one.
var ErrInvalidTransition = errors.New("invalid incident status transition")

// transitions is the full lifecycle graph. The flow is linear
// OPEN -> INVESTIGATING -> MITIGATING -> RESOLVED -> CLOSED, with
// RESOLVED -> INVESTIGATING permitted to model reopening.
var transitions = map[Status][]Status{
	Open:          {Investigating},
	Investigating: {Mitigating},
	Mitigating:    {Resolved},
	Resolved:      {Closed, Investigating},
	Closed:        {},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) IsActive() bool {
	return s == Open || s == Investigating || s == Mitigating
}

func (s Status) Valid() bool {
	switch s {
	case Open, Investigating, Mitigating, Resolved, Closed:
		return true
	}
	return false
}

// PriorityFor maps a triggering severity to an incident priority. The
// mapping is fixed; priorities are never edited independently of it.
func PriorityFor(sev severity.Severity) Priority {
	switch sev {
	case severity.Critical:
		return P1
	case severity.High:
		return P2
	case severity.Medium:
		return P3
	default:
		return P4
	}
}
