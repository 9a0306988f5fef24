// Package service coordinates snapshot acquisition, caching and analysis
// for the tote value service.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tote-value/internal/datasource"
	"github.com/yourusername/tote-value/internal/metrics"
	"github.com/yourusername/tote-value/internal/models"
	"github.com/yourusername/tote-value/internal/repository"
)

// SnapshotService is the data-acquisition collaborator for the analysis
// engine. It returns a cached snapshot when present and otherwise fetches
// once per race key under mutual exclusion, so concurrent callers never
// trigger duplicate fetches. Entries expire after the configured TTL and
// can be invalidated explicitly on user-initiated refresh.
type SnapshotService struct {
	source     datasource.SnapshotSource
	repository repository.SnapshotRepository
	cache      *cache.Cache
	logger     *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSnapshotService creates a snapshot service. The repository may be nil
// when raw snapshot persistence is disabled.
func NewSnapshotService(
	source datasource.SnapshotSource,
	repo repository.SnapshotRepository,
	ttl time.Duration,
	logger *logrus.Logger,
) *SnapshotService {
	return &SnapshotService{
		source:     source,
		repository: repo,
		cache:      cache.New(ttl, ttl*2),
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// GetSnapshot returns the snapshot for a race, fetching it from the
// upstream source when not cached.
func (s *SnapshotService) GetSnapshot(ctx context.Context, raceName string) (*models.RaceSnapshot, error) {
	if snapshot, found := s.cached(raceName); found {
		metrics.SnapshotCacheHitsTotal.Inc()
		return snapshot, nil
	}
	metrics.SnapshotCacheMissesTotal.Inc()

	// Serialize fetches per race so concurrent callers share one fetch.
	lock := s.keyLock(raceName)
	lock.Lock()
	defer lock.Unlock()

	// A concurrent caller may have fetched while we waited on the lock.
	if snapshot, found := s.cached(raceName); found {
		metrics.SnapshotCacheHitsTotal.Inc()
		return snapshot, nil
	}

	return s.fetchAndStore(ctx, raceName)
}

// Refresh discards any cached snapshot for a race and fetches a new one.
func (s *SnapshotService) Refresh(ctx context.Context, raceName string) (*models.RaceSnapshot, error) {
	lock := s.keyLock(raceName)
	lock.Lock()
	defer lock.Unlock()

	s.cache.Delete(raceName)
	return s.fetchAndStore(ctx, raceName)
}

// Invalidate removes the cached snapshot for a race without fetching.
func (s *SnapshotService) Invalidate(raceName string) {
	s.cache.Delete(raceName)
}

// InvalidateAll removes every cached snapshot.
func (s *SnapshotService) InvalidateAll() {
	s.cache.Flush()
}

// RefreshAll refreshes the snapshots for the given races, continuing past
// per-race failures. It returns the first error encountered, if any.
func (s *SnapshotService) RefreshAll(ctx context.Context, raceNames []string) error {
	var firstErr error
	for _, raceName := range raceNames {
		if _, err := s.Refresh(ctx, raceName); err != nil {
			s.logger.WithError(err).WithField("race", raceName).Warn("Failed to refresh snapshot")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	metrics.LastRefreshUnixTime.Set(float64(time.Now().Unix()))
	return firstErr
}

func (s *SnapshotService) cached(raceName string) (*models.RaceSnapshot, bool) {
	if value, found := s.cache.Get(raceName); found {
		if snapshot, ok := value.(*models.RaceSnapshot); ok {
			return snapshot, true
		}
	}
	return nil, false
}

func (s *SnapshotService) fetchAndStore(ctx context.Context, raceName string) (*models.RaceSnapshot, error) {
	start := time.Now()
	snapshot, err := s.source.FetchSnapshot(ctx, raceName)
	metrics.RecordSnapshotFetch(time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot for %q: %w", raceName, err)
	}

	s.cache.SetDefault(raceName, snapshot)

	// Persistence failures must not break analysis; log and continue.
	if s.repository != nil {
		if err := s.repository.Insert(ctx, snapshot); err != nil {
			s.logger.WithError(err).WithField("race", raceName).Warn("Failed to persist snapshot")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"race":    raceName,
		"runners": snapshot.RunnerCount(),
	}).Debug("Snapshot fetched")
	return snapshot, nil
}

func (s *SnapshotService) keyLock(raceName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[raceName]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[raceName] = lock
	}
	return lock
}
