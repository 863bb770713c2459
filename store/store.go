// Package store persists season snapshots in PostgreSQL as JSONB rows.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"league-engine/season"
)

// SnapshotMeta describes one stored snapshot without its payload.
type SnapshotMeta struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Year      int       `json:"year"`
	Phase     string    `json:"phase"`
	Day       int       `json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotStore saves and loads season state. The state blob is opaque to the
// database; only the metadata columns are queryable.
type SnapshotStore struct {
	db *pgxpool.Pool
}

func NewSnapshotStore(db *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Init creates the snapshot table if it does not exist yet.
func (s *SnapshotStore) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS season_snapshots (
			id UUID PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			year INT NOT NULL,
			phase TEXT NOT NULL,
			day INT NOT NULL,
			state JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}
	return nil
}

// Save stores one snapshot and returns its id.
func (s *SnapshotStore) Save(ctx context.Context, state season.SeasonState, label string) (string, error) {
	blob, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to marshal season state: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(ctx, `
		INSERT INTO season_snapshots (id, label, year, phase, day, state)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, label, state.Year, string(state.Phase), state.Day, blob)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return id, nil
}

// List returns metadata for the most recent snapshots, newest first.
func (s *SnapshotStore) List(ctx context.Context, limit int) ([]SnapshotMeta, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, label, year, phase, day, created_at
		FROM season_snapshots
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotMeta
	for rows.Next() {
		var m SnapshotMeta
		if err := rows.Scan(&m.ID, &m.Label, &m.Year, &m.Phase, &m.Day, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Load fetches one snapshot's state by id.
func (s *SnapshotStore) Load(ctx context.Context, id string) (season.SeasonState, error) {
	var state season.SeasonState
	var blob []byte
	err := s.db.QueryRow(ctx,
		"SELECT state FROM season_snapshots WHERE id = $1", id).Scan(&blob)
	if err != nil {
		return state, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	if err := json.Unmarshal(blob, &state); err != nil {
		return state, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	return state, nil
}
