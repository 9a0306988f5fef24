// Package datasource fetches tote market data from the upstream API and
// normalizes it into race snapshots.
package datasource

import (
	"context"
	"time"

	"github.com/yourusername/tote-value/internal/models"
)

// SnapshotSource defines the interface for fetching race snapshots from an
// external tote data provider.
type SnapshotSource interface {
	// FetchSnapshot retrieves the current odds and pool snapshot for a
	// race, keyed by its upstream name ("<VENUE> RACE <N>", case-sensitive).
	FetchSnapshot(ctx context.Context, raceName string) (*models.RaceSnapshot, error)

	// ListRaceNames retrieves the names of races scheduled on a date.
	ListRaceNames(ctx context.Context, date time.Time) ([]string, error)

	// Name returns the name of the data source
	Name() string
}
