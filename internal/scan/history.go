package scan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlight/oidsweep/internal/report"
	"github.com/lumenlight/oidsweep/internal/store"
)

// ErrNotFound is returned when a sweep record does not exist.
var ErrNotFound = errors.New("not found")

// SweepRecord is one sweep run as persisted in the history store.
type SweepRecord struct {
	ID        string
	Network   string
	StartedAt string
	EndedAt   string
	Status    string
	Total     int
	Found     int
}

// Migrations define the sweep history schema.
var Migrations = []store.Migration{
	{
		Version:     1,
		Description: "create sweep history tables",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE sweeps (
					id         TEXT PRIMARY KEY,
					network    TEXT NOT NULL,
					started_at TEXT NOT NULL,
					ended_at   TEXT,
					status     TEXT NOT NULL,
					total      INTEGER NOT NULL DEFAULT 0,
					found      INTEGER NOT NULL DEFAULT 0
				)
			`); err != nil {
				return err
			}
			_, err := tx.Exec(`
				CREATE TABLE sweep_results (
					sweep_id TEXT NOT NULL REFERENCES sweeps(id) ON DELETE CASCADE,
					addr     TEXT NOT NULL,
					value    TEXT NOT NULL,
					PRIMARY KEY (sweep_id, addr)
				)
			`)
			return err
		},
	},
}

// HistoryRepository persists sweep runs and their results.
type HistoryRepository struct {
	store *store.SQLiteStore
}

// NewHistoryRepository applies the history migrations and returns a repository.
func NewHistoryRepository(ctx context.Context, st *store.SQLiteStore) (*HistoryRepository, error) {
	if err := st.Migrate(ctx, Migrations); err != nil {
		return nil, fmt.Errorf("migrate sweep history: %w", err)
	}
	return &HistoryRepository{store: st}, nil
}

// Begin inserts a running sweep record and returns it.
func (r *HistoryRepository) Begin(ctx context.Context, network string, total int) (*SweepRecord, error) {
	rec := &SweepRecord{
		ID:        uuid.New().String(),
		Network:   network,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    "running",
		Total:     total,
	}
	_, err := r.store.DB().ExecContext(ctx, `
		INSERT INTO sweeps (id, network, started_at, status, total)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Network, rec.StartedAt, rec.Status, rec.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("create sweep record: %w", err)
	}
	return rec, nil
}

// Finish marks the sweep complete and stores every responding host.
func (r *HistoryRepository) Finish(ctx context.Context, id string, rep report.Report) error {
	endedAt := time.Now().UTC().Format(time.RFC3339)
	return r.store.Tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE sweeps SET status = 'done', ended_at = ?, found = ? WHERE id = ?`,
			endedAt, len(rep.Records), id)
		if err != nil {
			return fmt.Errorf("finish sweep %q: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("finish sweep %q: %w", id, ErrNotFound)
		}

		for _, rec := range rep.Records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sweep_results (sweep_id, addr, value) VALUES (?, ?, ?)`,
				id, rec.Addr, rec.Value); err != nil {
				return fmt.Errorf("store result %s: %w", rec.Addr, err)
			}
		}
		return nil
	})
}

// Get returns a single sweep record by ID.
func (r *HistoryRepository) Get(ctx context.Context, id string) (*SweepRecord, error) {
	var rec SweepRecord
	var endedAt sql.NullString
	err := r.store.DB().QueryRowContext(ctx, `
		SELECT id, network, started_at, ended_at, status, total, found
		FROM sweeps WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Network, &rec.StartedAt, &endedAt, &rec.Status, &rec.Total, &rec.Found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sweep %q: %w", id, err)
	}
	if endedAt.Valid {
		rec.EndedAt = endedAt.String
	}
	return &rec, nil
}

// Results returns the stored records for a sweep, ordered as persisted.
func (r *HistoryRepository) Results(ctx context.Context, id string) ([]report.Record, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		`SELECT addr, value FROM sweep_results WHERE sweep_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("list results for %q: %w", id, err)
	}
	defer rows.Close()

	var records []report.Record
	for rows.Next() {
		var rec report.Record
		if err := rows.Scan(&rec.Addr, &rec.Value); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return records, nil
}

// List returns the most recent sweeps, newest first.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]SweepRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT id, network, started_at, ended_at, status, total, found
		FROM sweeps ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sweeps: %w", err)
	}
	defer rows.Close()

	var records []SweepRecord
	for rows.Next() {
		var rec SweepRecord
		var endedAt sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Network, &rec.StartedAt, &endedAt,
			&rec.Status, &rec.Total, &rec.Found); err != nil {
			return nil, fmt.Errorf("scan sweep row: %w", err)
		}
		if endedAt.Valid {
			rec.EndedAt = endedAt.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sweeps: %w", err)
	}
	return records, nil
}
