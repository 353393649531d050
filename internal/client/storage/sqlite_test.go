package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE kv (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSQLiteKV_SetAndGet(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k1", []byte(`{"a":1}`)))

	v, err := kv.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), v)
}

func TestSQLiteKV_GetAbsentReturnsNilNil(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))

	v, err := kv.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLiteKV_SetUpserts(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("old")))
	require.NoError(t, kv.Set(ctx, "k", []byte("new")))

	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSQLiteKV_KeysPrefixScan(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "planner-u1-2025-01-02", []byte("{}")))
	require.NoError(t, kv.Set(ctx, "planner-u1-2025-01-01", []byte("{}")))
	require.NoError(t, kv.Set(ctx, "planner-u2-2025-01-01", []byte("{}")))
	require.NoError(t, kv.Set(ctx, "planner-users", []byte("[]")))

	keys, err := kv.Keys(ctx, "planner-u1-")
	require.NoError(t, err)
	assert.Equal(t, []string{"planner-u1-2025-01-01", "planner-u1-2025-01-02"}, keys)
}

func TestSQLiteKV_KeysEscapesLikeMetachars(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "a%b-x", []byte("1")))
	require.NoError(t, kv.Set(ctx, "aXb-x", []byte("2")))

	keys, err := kv.Keys(ctx, "a%b-")
	require.NoError(t, err)
	assert.Equal(t, []string{"a%b-x"}, keys)
}

func TestSQLiteKV_DeleteIsIdempotent(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "x", []byte("1")))
	require.NoError(t, kv.Delete(ctx, "x"))

	v, err := kv.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, kv.Delete(ctx, "x"))
}

func TestSQLiteKV_Clear(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "a", []byte("1")))
	require.NoError(t, kv.Set(ctx, "b", []byte("2")))
	require.NoError(t, kv.Clear(ctx))

	keys, err := kv.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSQLiteKV_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	kv := NewSQLiteKV(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := kv.Get(ctx, "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to get kv[k]")

	err = kv.Set(ctx, "k", []byte("v"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to set kv[k]")
}
