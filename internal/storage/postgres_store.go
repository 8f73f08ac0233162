package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hanish-rishen/RideShare/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// ListOpenRequests orders by (created_at, id); that order is what the
// engine's tie-break keys on, so it must not change casually.
func (p *PostgresStore) ListOpenRequests(ctx context.Context) ([]models.RideRequest, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, rider_id, origin, destination, lat, lon, contact, created_at FROM ride_requests ORDER BY created_at, id`)
	if err != nil {
		return nil, readErr(err)
	}
	defer rows.Close()
	var out []models.RideRequest
	for rows.Next() {
		var r models.RideRequest
		if err := rows.Scan(&r.ID, &r.RiderID, &r.Origin, &r.Destination, &r.Loc.Lat, &r.Loc.Lon, &r.Contact, &r.CreatedAt); err != nil {
			return nil, readErr(err)
		}
		out = append(out, r)
	}
	return out, readErrNil(rows.Err())
}

func (p *PostgresStore) ListUserProfiles(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, display_name FROM user_profiles`)
	if err != nil {
		return nil, readErr(err)
	}
	defer rows.Close()
	var out []models.UserProfile
	for rows.Next() {
		var u models.UserProfile
		if err := rows.Scan(&u.ID, &u.DisplayName); err != nil {
			return nil, readErr(err)
		}
		out = append(out, u)
	}
	return out, readErrNil(rows.Err())
}

func (p *PostgresStore) GetRequest(ctx context.Context, id string) (models.RideRequest, bool, error) {
	var r models.RideRequest
	err := p.db.QueryRowContext(ctx, `SELECT id, rider_id, origin, destination, lat, lon, contact, created_at FROM ride_requests WHERE id=$1`, id).
		Scan(&r.ID, &r.RiderID, &r.Origin, &r.Destination, &r.Loc.Lat, &r.Loc.Lon, &r.Contact, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return models.RideRequest{}, false, nil
	}
	if err != nil {
		return models.RideRequest{}, false, readErr(err)
	}
	return r, true, nil
}

func (p *PostgresStore) InsertRequest(ctx context.Context, r *models.RideRequest) error {
	stampRequest(r)
	_, err := p.db.ExecContext(ctx, `INSERT INTO ride_requests(id, rider_id, origin, destination, lat, lon, contact, created_at) VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.RiderID, r.Origin, r.Destination, r.Loc.Lat, r.Loc.Lon, r.Contact, r.CreatedAt)
	return writeErrNil(err)
}

// DeleteRequests removes both halves of a pair in one statement. A statement
// touching zero rows is still success: the pair may already be gone if a
// concurrent pass won the race.
func (p *PostgresStore) DeleteRequests(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.db.ExecContext(ctx, `DELETE FROM ride_requests WHERE id = ANY($1)`, pq.Array(ids))
	return writeErrNil(err)
}

func (p *PostgresStore) DeleteByRider(ctx context.Context, riderIDs []string) error {
	if len(riderIDs) == 0 {
		return nil
	}
	_, err := p.db.ExecContext(ctx, `DELETE FROM ride_requests WHERE rider_id = ANY($1)`, pq.Array(riderIDs))
	return writeErrNil(err)
}

func readErr(err error) error { return fmt.Errorf("%w: %v", ErrStoreRead, err) }

func readErrNil(err error) error {
	if err == nil {
		return nil
	}
	return readErr(err)
}

func writeErrNil(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStoreWrite, err)
}
