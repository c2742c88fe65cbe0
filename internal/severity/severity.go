package severity

import "fmt"

type Severity string

const (
	Critical Severity = "CRITICAL"
	High     Severity = "HIGH"
	Medium   Severity = "MEDIUM"
	Low      Severity = "LOW"
)

// Levels lists all recognized severities, most severe first.
var Levels = []Severity{Critical, High, Medium, Low}

// Parse returns the severity matching s. Anything outside the four
// recognized levels is a configuration error, never silently normalized.
func Parse(s string) (Severity, error) {
	switch Severity(s) {
	case Critical, High, Medium, Low:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unrecognized severity %q", s)
}

func (s Severity) Valid() bool {
	_, err := Parse(string(s))
	return err == nil
}

// Rank orders severities for comparison; lower is more severe.
func (s Severity) Rank() int {
	switch s {
	case Critical:
		return 0
	case High:
		return 1
	case Medium:
		return 2
	case Low:
		return 3
	}
	return 4
}
