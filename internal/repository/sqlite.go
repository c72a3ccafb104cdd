package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

var ErrBatchNotFound = errors.New("batch not found")

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	// A second connection to ":memory:" would be a different database.
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS batches (
			name TEXT PRIMARY KEY,
			imported_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS events (
			batch TEXT NOT NULL,
			seq INTEGER NOT NULL,
			epoch REAL,
			date TEXT,
			longitude REAL,
			latitude REAL,
			depth REAL,
			magnitudes TEXT,
			PRIMARY KEY (batch, seq),
			FOREIGN KEY (batch) REFERENCES batches(name)
		);

		CREATE INDEX IF NOT EXISTS idx_events_epoch ON events(epoch);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ImportBatch replaces the named batch with events, keeping their order.
func (s *SQLiteDB) ImportBatch(ctx context.Context, name string, events []*models.SeismicEvent) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE batch = ?`, name); err != nil {
		return 0, fmt.Errorf("error clearing batch: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (name, imported_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET imported_at = excluded.imported_at`,
		name, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("error recording batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (batch, seq, epoch, date, longitude, latitude, depth, magnitudes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, ev := range events {
		row, err := toRow(ev)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, name, i,
			row.epoch, row.date, row.longitude, row.latitude, row.depth, row.magnitudes); err != nil {
			return 0, fmt.Errorf("error inserting event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing batch: %w", err)
	}
	return len(events), nil
}

func (s *SQLiteDB) LoadBatch(ctx context.Context, name string) ([]*models.SeismicEvent, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM batches WHERE name = ?)`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("error checking batch: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", name, ErrBatchNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT epoch, date, longitude, latitude, depth, magnitudes
		FROM events WHERE batch = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.SeismicEvent, 0)
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.epoch, &r.date, &r.longitude, &r.latitude, &r.depth, &r.magnitudes); err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}
		ev, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func (s *SQLiteDB) Batches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM batches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying batches: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("error scanning batch: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

type row struct {
	epoch      sql.NullFloat64
	date       sql.NullString
	longitude  sql.NullFloat64
	latitude   sql.NullFloat64
	depth      sql.NullFloat64
	magnitudes sql.NullString
}

func toRow(ev *models.SeismicEvent) (row, error) {
	var r row
	if ev.Epoch != nil {
		r.epoch = sql.NullFloat64{Float64: *ev.Epoch, Valid: true}
	}
	if ev.Date != nil {
		r.date = sql.NullString{String: *ev.Date, Valid: true}
	}
	if ev.Location != nil {
		r.longitude = sql.NullFloat64{Float64: ev.Location.Longitude, Valid: true}
		r.latitude = sql.NullFloat64{Float64: ev.Location.Latitude, Valid: true}
		r.depth = sql.NullFloat64{Float64: ev.Location.Depth, Valid: true}
	}
	if ev.Magnitudes != nil {
		b, err := json.Marshal(ev.Magnitudes)
		if err != nil {
			return row{}, fmt.Errorf("error encoding magnitudes: %w", err)
		}
		r.magnitudes = sql.NullString{String: string(b), Valid: true}
	}
	return r, nil
}

func (r row) toEvent() (*models.SeismicEvent, error) {
	ev := &models.SeismicEvent{}
	if r.epoch.Valid {
		v := r.epoch.Float64
		ev.Epoch = &v
	}
	if r.date.Valid {
		v := r.date.String
		ev.Date = &v
	}
	if r.longitude.Valid && r.latitude.Valid && r.depth.Valid {
		ev.Location = &models.Location{
			Longitude: r.longitude.Float64,
			Latitude:  r.latitude.Float64,
			Depth:     r.depth.Float64,
		}
	}
	if r.magnitudes.Valid {
		if err := json.Unmarshal([]byte(r.magnitudes.String), &ev.Magnitudes); err != nil {
			return nil, fmt.Errorf("error decoding magnitudes: %w", err)
		}
	}
	return ev, nil
}
