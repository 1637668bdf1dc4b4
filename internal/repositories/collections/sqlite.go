package collections

import "database/sql"

var sqliteQueries = queries{
	get: `SELECT value FROM collections WHERE key = ?`,
	set: `
		INSERT INTO collections (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
	delete: `DELETE FROM collections WHERE key = ?`,
	list:   `SELECT key, value FROM collections`,
	clear:  `DELETE FROM collections`,
}

// NewSQLiteRepository returns a Repository over a SQLite database that has
// the collections table migrated.
func NewSQLiteRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}
