package scheduler

import (
	"context"
	"sync"
	"time"

	"secscan-go/internal/orchestrator"
	"secscan-go/internal/scanner"

	"github.com/rs/zerolog/log"
)

// Scheduler triggers a full assessment on a fixed interval. The first run
// happens immediately on start.
type Scheduler struct {
	orch     *orchestrator.Orchestrator
	target   scanner.Target
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(orch *orchestrator.Orchestrator, target scanner.Target, interval time.Duration) *Scheduler {
	return &Scheduler{
		orch:     orch,
		target:   target,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	log.Info().Dur("interval", s.interval).Msg("starting assessment scheduler")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	log.Info().Msg("assessment scheduler stopped")
}

func (s *Scheduler) runOnce() {
	if _, err := s.orch.RunAssessment(context.Background(), s.target); err != nil {
		log.Error().Err(err).Msg("scheduled assessment failed")
	}
}
