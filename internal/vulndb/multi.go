package vulndb

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// MultiSource fans a lookup out to every configured backend and merges the
// results. Source order is priority order: when two backends report the same
// vulnerability id, the record from the earlier source wins, severity
// included.
type MultiSource struct {
	sources []Source
}

func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{sources: sources}
}

func (m *MultiSource) Name() string {
	return "multi"
}

// Ping succeeds when at least one backend is reachable.
func (m *MultiSource) Ping(ctx context.Context) error {
	if len(m.sources) == 0 {
		return ErrNoSource
	}

	var lastErr error
	for _, src := range m.sources {
		if err := src.Ping(ctx); err != nil {
			log.Warn().Str("source", src.Name()).Err(err).Msg("vulnerability source unreachable")
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("%w: %v", ErrNoSource, lastErr)
}

// Lookup queries all backends concurrently. A single backend failure is
// non-fatal as long as another one answered; only total failure is an error.
func (m *MultiSource) Lookup(ctx context.Context, name, ecosystem, version string) ([]Vulnerability, error) {
	results := make([][]Vulnerability, len(m.sources))
	errs := make([]error, len(m.sources))

	var wg sync.WaitGroup
	for i, src := range m.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			vulns, err := src.Lookup(ctx, name, ecosystem, version)
			if err != nil {
				log.Warn().Str("source", src.Name()).Str("package", name).Err(err).Msg("vulnerability lookup failed")
				errs[i] = err
				return
			}
			results[i] = vulns
		}(i, src)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(m.sources) && len(m.sources) > 0 {
		return nil, fmt.Errorf("all vulnerability sources failed for %s@%s: %v", name, version, errs[0])
	}

	// Merge in source-priority order, keeping the first-seen record per id.
	seen := make(map[string]bool)
	var merged []Vulnerability
	for _, vulns := range results {
		for _, v := range vulns {
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			merged = append(merged, v)
		}
	}

	return merged, nil
}
