package trip

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteStore keeps route state in a local SQLite file. The demo CLI uses it
// so trips survive between runs without a Postgres server.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteStore opens (creating if needed) the database at path and
// applies the schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, tripID string) (RouteState, error) {
	var raw, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT route_state, updated_at FROM trips WHERE id = ?`, tripID,
	).Scan(&raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return RouteState{}, ErrNotFound
	}
	if err != nil {
		return RouteState{}, fmt.Errorf("failed to get route state: %w", err)
	}

	var st RouteState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return RouteState{}, fmt.Errorf("decode route state %s: %w", tripID, err)
	}
	st.TripID = tripID
	if st.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return RouteState{}, fmt.Errorf("decode route state %s: %w", tripID, err)
	}
	return st, nil
}

func (s *SQLiteStore) Save(ctx context.Context, st RouteState) error {
	if !ValidID(st.TripID) {
		return ErrInvalidTripID
	}
	st.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode route state %s: %w", st.TripID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trips (id, route_state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET route_state = excluded.route_state,
		    updated_at = excluded.updated_at`,
		st.TripID, string(raw), st.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save route state: %w", err)
	}
	return nil
}
