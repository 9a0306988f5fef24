// Package repository provides persistence for raw race snapshots.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/tote-value/internal/models"
)

// SnapshotRepository stores and retrieves raw race snapshots for later
// analysis. Analysis results themselves are never persisted.
type SnapshotRepository interface {
	// Insert stores one snapshot.
	Insert(ctx context.Context, snapshot *models.RaceSnapshot) error

	// GetLatestByRaceName retrieves the most recent snapshot for a race,
	// or models.ErrSnapshotNotFound when none exists.
	GetLatestByRaceName(ctx context.Context, raceName string) (*models.RaceSnapshot, error)

	// GetByRaceNameSince retrieves snapshots for a race fetched at or
	// after the given time, oldest first.
	GetByRaceNameSince(ctx context.Context, raceName string, since time.Time) ([]*models.RaceSnapshot, error)

	// DeleteOlderThan removes snapshots fetched before the cutoff and
	// returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
