// Package scheduler runs periodic snapshot refreshes for tracked races.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tote-value/internal/datasource"
	"github.com/yourusername/tote-value/internal/metrics"
	"github.com/yourusername/tote-value/internal/service"
)

// Scheduler manages scheduled snapshot refresh jobs
type Scheduler struct {
	cron            *cron.Cron
	snapshots       *service.SnapshotService
	source          datasource.SnapshotSource
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	refreshTimeout  time.Duration
	gracefulTimeout time.Duration

	// Explicit race list; when empty, the day's races are listed from
	// the source on each run.
	races []string
}

// NewScheduler creates a new scheduler
func NewScheduler(
	snapshots *service.SnapshotService,
	source datasource.SnapshotSource,
	races []string,
	refreshTimeout time.Duration,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		snapshots:       snapshots,
		source:          source,
		races:           races,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		refreshTimeout:  refreshTimeout,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRefresh schedules the periodic snapshot refresh
func (s *Scheduler) ScheduleRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobID, err := s.cron.AddFunc(cronExpression, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.jobIDs = append(s.jobIDs, jobID)

	s.logger.WithField("schedule", cronExpression).Info("Snapshot refresh scheduled")
	return nil
}

// Start begins executing scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.Info("Scheduler started")
}

// Stop halts the scheduler, waiting up to the graceful timeout for
// running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()

	races := s.races
	if len(races) == 0 {
		listed, err := s.source.ListRaceNames(ctx, time.Now().UTC())
		if err != nil {
			s.logger.WithError(err).Warn("Failed to list races for refresh")
			return
		}
		races = listed
	}

	metrics.TrackedRaces.Set(float64(len(races)))
	s.logger.WithField("races", len(races)).Debug("Starting scheduled snapshot refresh")

	if err := s.snapshots.RefreshAll(ctx, races); err != nil {
		s.logger.WithError(err).Warn("Scheduled snapshot refresh finished with errors")
		return
	}
	s.logger.WithField("races", len(races)).Info("Scheduled snapshot refresh completed")
}
