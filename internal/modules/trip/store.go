// README: Route state store backed by PostgreSQL (one jsonb document per trip).
package trip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StateStore loads and saves route state. Saves overwrite: the last writer
// wins.
type StateStore interface {
	Get(ctx context.Context, tripID string) (RouteState, error)
	Save(ctx context.Context, st RouteState) error
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, tripID string) (RouteState, error) {
	row := s.db.QueryRow(ctx, `
		SELECT route_state, updated_at
		FROM trips
		WHERE id = $1`, tripID,
	)

	var raw []byte
	var st RouteState
	err := row.Scan(&raw, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RouteState{}, ErrNotFound
	}
	if err != nil {
		return RouteState{}, err
	}

	updated := st.UpdatedAt
	if err := json.Unmarshal(raw, &st); err != nil {
		return RouteState{}, fmt.Errorf("decode route state %s: %w", tripID, err)
	}
	st.TripID = tripID
	st.UpdatedAt = updated
	return st, nil
}

func (s *Store) Save(ctx context.Context, st RouteState) error {
	if !ValidID(st.TripID) {
		return ErrInvalidTripID
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode route state %s: %w", st.TripID, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO trips (id, route_state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET route_state = EXCLUDED.route_state,
		    updated_at = EXCLUDED.updated_at`,
		st.TripID, raw,
	)
	return err
}
