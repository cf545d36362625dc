package db

import "context"

// IsBanned reports whether url is in the ban set.
func (d *DB) IsBanned(ctx context.Context, url string) (bool, error) {
	var banned bool
	err := d.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bans WHERE url = $1)`, url).Scan(&banned)
	if err != nil {
		return false, storageError("check ban", err)
	}
	return banned, nil
}

// AddBan adds url to the ban set. Banning an already banned url is a no-op.
func (d *DB) AddBan(ctx context.Context, url string) error {
	_, err := d.Pool.Exec(ctx, `INSERT INTO bans (url) VALUES ($1) ON CONFLICT (url) DO NOTHING`, url)
	return storageError("add ban", err)
}

// CountBans returns the number of banned urls.
func (d *DB) CountBans(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM bans`).Scan(&n)
	return n, storageError("count bans", err)
}
