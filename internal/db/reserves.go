package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// GetReservation returns the url reserved for keyword. A miss is not an
// error: found is false and err is nil. A stored empty url counts as a miss.
func (d *DB) GetReservation(ctx context.Context, keyword string) (string, bool, error) {
	var url string
	err := d.Pool.QueryRow(ctx, `SELECT url FROM reserves WHERE keyword = $1`, keyword).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageError("get reservation", err)
	}
	return url, url != "", nil
}

// UpsertReservation pins keyword to url, replacing any previous reservation
// for the keyword.
func (d *DB) UpsertReservation(ctx context.Context, keyword, url string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO reserves (keyword, url)
		VALUES ($1, $2)
		ON CONFLICT (keyword) DO UPDATE SET url = EXCLUDED.url
	`, keyword, url)
	return storageError("upsert reservation", err)
}

// RemoveReservationsForURL deletes every reservation pointing at url.
func (d *DB) RemoveReservationsForURL(ctx context.Context, url string) error {
	_, err := d.Pool.Exec(ctx, `DELETE FROM reserves WHERE url = $1`, url)
	return storageError("remove reservations", err)
}

// CountReservations returns the number of reserved keywords.
func (d *DB) CountReservations(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM reserves`).Scan(&n)
	return n, storageError("count reservations", err)
}
