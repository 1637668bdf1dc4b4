package collections

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "collections.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE collections (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM collections`).Scan(&n))
	return n
}

func TestSQLite_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Repository {
		return NewSQLiteRepository(setupDB(t))
	})
}

func TestMemory_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Repository {
		return NewMemoryRepository()
	})
}

func TestSQLite_ApplyRollsBackOnFailure(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "credentials", []byte(`[]`)))

	// The trigger lets the first statement through and aborts the second
	// one inside the same transaction.
	_, err := db.Exec(`CREATE TRIGGER reject_threads BEFORE INSERT ON collections
		WHEN NEW.key = 'session.user' BEGIN SELECT RAISE(ABORT, 'rejected'); END;`)
	require.NoError(t, err)

	err = r.Apply(ctx, map[string][]byte{
		"credentials":  []byte(`[{"id":"u1"}]`),
		"session.user": []byte(`{"id":"u1"}`),
	})
	require.Error(t, err)

	v, err := r.Get(ctx, "credentials")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v, "first change must be rolled back")
	assert.Equal(t, 1, countRows(t, db))
}

func TestSQLite_Get_ClosedDBWrapsError(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.Get(context.Background(), "credentials")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get collection[credentials]")
}

// runContract exercises behavior every Repository must share.
func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("get absent returns nil nil", func(t *testing.T) {
		r := newRepo(t)
		v, err := r.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("set then get, set overwrites", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "k", []byte("old")))
		require.NoError(t, r.Set(ctx, "k", []byte("new")))

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), v)
	})

	t.Run("delete removes and is idempotent", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "k", []byte("v")))
		require.NoError(t, r.Delete(ctx, "k"))
		require.NoError(t, r.Delete(ctx, "k"))

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("list and clear", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "a", []byte("1")))
		require.NoError(t, r.Set(ctx, "b", []byte("2")))

		all, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, all)

		require.NoError(t, r.Clear(ctx))
		all, err = r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("apply sets and deletes", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "gone", []byte("x")))
		require.NoError(t, r.Set(ctx, "kept", []byte("y")))

		require.NoError(t, r.Apply(ctx, map[string][]byte{
			"gone": nil,
			"new":  []byte("z"),
		}))

		all, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"kept": []byte("y"), "new": []byte("z")}, all)
	})

	t.Run("replace drops keys not in values", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "old", []byte("x")))

		require.NoError(t, r.Replace(ctx, map[string][]byte{"a": []byte("1")}))
		all, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"a": []byte("1")}, all)

		require.NoError(t, r.Replace(ctx, nil))
		all, err = r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("returned values are not aliased", func(t *testing.T) {
		r := newRepo(t)
		in := []byte("abc")
		require.NoError(t, r.Set(ctx, "k", in))
		in[0] = 'X'

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), v)
	})
}
