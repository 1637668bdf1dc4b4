package collections

import "database/sql"

var postgresQueries = queries{
	get: `SELECT value FROM collections WHERE key = $1`,
	set: `
		INSERT INTO collections (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
	delete: `DELETE FROM collections WHERE key = $1`,
	list:   `SELECT key, value FROM collections`,
	clear:  `DELETE FROM collections`,
}

// NewPostgresRepository returns a Repository over a Postgres database opened
// with the pgx stdlib driver.
func NewPostgresRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}
