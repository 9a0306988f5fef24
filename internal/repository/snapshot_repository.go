package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/tote-value/internal/database"
	"github.com/yourusername/tote-value/internal/models"
)

// PostgresSnapshotRepository implements SnapshotRepository for PostgreSQL
type PostgresSnapshotRepository struct {
	db *database.DB
}

// NewPostgresSnapshotRepository creates a new snapshot repository
func NewPostgresSnapshotRepository(db *database.DB) SnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// Insert stores one snapshot. The odds and pool maps are stored as one
// JSONB payload; the schema stays stable while markets come and go per race.
func (r *PostgresSnapshotRepository) Insert(ctx context.Context, snapshot *models.RaceSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO race_snapshots (id, race_name, event_id, payload, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		snapshot.ID, snapshot.RaceName, snapshot.EventID, payload, snapshot.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert race snapshot: %w", err)
	}

	return nil
}

// GetLatestByRaceName retrieves the most recent snapshot for a race
func (r *PostgresSnapshotRepository) GetLatestByRaceName(ctx context.Context, raceName string) (*models.RaceSnapshot, error) {
	query := `
		SELECT payload
		FROM race_snapshots
		WHERE race_name = $1
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	var payload []byte
	err := r.db.GetPool().QueryRow(ctx, query, raceName).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to query race snapshot: %w", err)
	}

	return unmarshalSnapshot(payload)
}

// GetByRaceNameSince retrieves snapshots for a race fetched at or after
// the given time, oldest first
func (r *PostgresSnapshotRepository) GetByRaceNameSince(ctx context.Context, raceName string, since time.Time) ([]*models.RaceSnapshot, error) {
	query := `
		SELECT payload
		FROM race_snapshots
		WHERE race_name = $1 AND fetched_at >= $2
		ORDER BY fetched_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceName, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query race snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.RaceSnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan race snapshot: %w", err)
		}
		snapshot, err := unmarshalSnapshot(payload)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate race snapshots: %w", err)
	}

	return snapshots, nil
}

// DeleteOlderThan removes snapshots fetched before the cutoff
func (r *PostgresSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM race_snapshots WHERE fetched_at < $1`

	tag, err := r.db.GetPool().Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete race snapshots: %w", err)
	}

	return tag.RowsAffected(), nil
}

func unmarshalSnapshot(payload []byte) (*models.RaceSnapshot, error) {
	var snapshot models.RaceSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
