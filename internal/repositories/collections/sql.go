package collections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/vinony/internal/dbx"
)

// queries holds the dialect-specific SQL of a SQLRepository.
type queries struct {
	get    string
	set    string
	delete string
	list   string
	clear  string
}

// SQLRepository implements Repository over a database/sql handle.
type SQLRepository struct {
	db *sql.DB
	q  queries
}

func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return get(ctx, r.db, r.q, key)
}

func (r *SQLRepository) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, r.db, r.q, key, value)
}

func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.q.delete, key); err != nil {
		return fmt.Errorf("failed to delete collection[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.q.clear); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection rows: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Apply(ctx context.Context, changes map[string][]byte) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return apply(ctx, tx, r.q, changes)
	})
}

func (r *SQLRepository) Replace(ctx context.Context, values map[string][]byte) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, r.q.clear); err != nil {
			return fmt.Errorf("failed to clear collections: %w", err)
		}
		return apply(ctx, tx, r.q, values)
	})
}

func get(ctx context.Context, db dbx.DBTX, q queries, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, db dbx.DBTX, q queries, key string, value []byte) error {
	if _, err := db.ExecContext(ctx, q.set, key, value); err != nil {
		return fmt.Errorf("failed to set collection[%s]: %w", key, err)
	}
	return nil
}

// apply writes changes in key order so that statements are deterministic.
func apply(ctx context.Context, db dbx.DBTX, q queries, changes map[string][]byte) error {
	for _, key := range sortedKeys(changes) {
		value := changes[key]
		if value == nil {
			if _, err := db.ExecContext(ctx, q.delete, key); err != nil {
				return fmt.Errorf("failed to delete collection[%s]: %w", key, err)
			}
			continue
		}
		if err := set(ctx, db, q, key, value); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
