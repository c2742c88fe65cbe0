package vulndb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	name    string
	vulns   []Vulnerability
	pingErr error
	err     error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeSource) Lookup(ctx context.Context, name, ecosystem, version string) ([]Vulnerability, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vulns, nil
}

func TestMultiSourceLookupMergesAndDeduplicates(t *testing.T) {
	primary := &fakeSource{
		name: "primary",
		vulns: []Vulnerability{
			{ID: "VULN-1", Severity: "HIGH"},
			{ID: "VULN-2", Severity: "LOW"},
		},
	}
	secondary := &fakeSource{
		name: "secondary",
		vulns: []Vulnerability{
			{ID: "VULN-2", Severity: "CRITICAL"},
			{ID: "VULN-3", Severity: "MEDIUM"},
		},
	}

	multi := NewMultiSource(primary, secondary)
	vulns, err := multi.Lookup(context.Background(), "requests", "PyPI", "2.0.0")

	assert.NoError(t, err)
	assert.Len(t, vulns, 3)

	byID := map[string]Vulnerability{}
	for _, v := range vulns {
		byID[v.ID] = v
	}

	// The earlier source wins on conflicting records.
	assert.Equal(t, "LOW", byID["VULN-2"].Severity)
	assert.Equal(t, "MEDIUM", byID["VULN-3"].Severity)
}

func TestMultiSourceLookupToleratesPartialFailure(t *testing.T) {
	broken := &fakeSource{name: "broken", err: errors.New("connection refused")}
	working := &fakeSource{name: "working", vulns: []Vulnerability{{ID: "VULN-1"}}}

	multi := NewMultiSource(broken, working)
	vulns, err := multi.Lookup(context.Background(), "requests", "PyPI", "2.0.0")

	assert.NoError(t, err)
	assert.Len(t, vulns, 1)
}

func TestMultiSourceLookupFailsWhenAllSourcesFail(t *testing.T) {
	first := &fakeSource{name: "first", err: errors.New("connection refused")}
	second := &fakeSource{name: "second", err: errors.New("500 internal server error")}

	multi := NewMultiSource(first, second)
	_, err := multi.Lookup(context.Background(), "requests", "PyPI", "2.0.0")

	assert.Error(t, err)
}

func TestMultiSourcePing(t *testing.T) {
	testCases := []struct {
		name        string
		sources     []Source
		expectError bool
	}{
		{
			name:        "no sources configured",
			sources:     nil,
			expectError: true,
		},
		{
			name: "one source reachable",
			sources: []Source{
				&fakeSource{name: "down", pingErr: errors.New("unreachable")},
				&fakeSource{name: "up"},
			},
		},
		{
			name: "all sources unreachable",
			sources: []Source{
				&fakeSource{name: "down", pingErr: errors.New("unreachable")},
				&fakeSource{name: "also-down", pingErr: errors.New("unreachable")},
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			multi := NewMultiSource(tc.sources...)

			err := multi.Ping(context.Background())

			if tc.expectError {
				assert.ErrorIs(t, err, ErrNoSource)
				return
			}
			assert.NoError(t, err)
		})
	}
}
