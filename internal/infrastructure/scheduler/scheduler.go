// Package scheduler drives the daily reconciliation jobs. The core services
// know nothing about cron; they expose plain entry points and this package
// decides when to call them.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

// Config carries the cron expressions for the two jobs (standard five-field
// syntax).
type Config struct {
	AvailabilitySync string
	OverdueSweep     string
}

// Scheduler runs the availability sync and the overdue sweep on their own
// cadences. Each job carries an overlap guard: a tick that fires while the
// previous run is still going is skipped and logged, never stacked.
type Scheduler struct {
	cron         *cron.Cron
	availability ports.AvailabilityService
	overdue      ports.OverdueService
	log          zerolog.Logger

	syncMu  sync.Mutex
	sweepMu sync.Mutex
}

// New creates a Scheduler; Start registers the jobs and begins ticking.
func New(availability ports.AvailabilityService, overdue ports.OverdueService, log zerolog.Logger) *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		cron:         cron.New(cron.WithParser(parser)),
		availability: availability,
		overdue:      overdue,
		log:          log,
	}
}

// Start registers both jobs and starts the cron loop.
func (s *Scheduler) Start(cfg Config) error {
	if _, err := s.cron.AddFunc(cfg.AvailabilitySync, s.runAvailabilitySync); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cfg.OverdueSweep, s.runOverdueSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().
		Str("availability_sync", cfg.AvailabilitySync).
		Str("overdue_sweep", cfg.OverdueSweep).
		Msg("scheduler started")
	return nil
}

// Stop halts ticking and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runAvailabilitySync() {
	if !s.syncMu.TryLock() {
		s.log.Warn().Msg("availability sync still running, tick skipped")
		return
	}
	defer s.syncMu.Unlock()

	if _, err := s.availability.RunAvailabilitySync(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("scheduled availability sync failed")
	}
}

func (s *Scheduler) runOverdueSweep() {
	if !s.sweepMu.TryLock() {
		s.log.Warn().Msg("overdue sweep still running, tick skipped")
		return
	}
	defer s.sweepMu.Unlock()

	if _, err := s.overdue.RunOverdueSweep(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("scheduled overdue sweep failed")
	}
}
