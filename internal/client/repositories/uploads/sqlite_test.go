package uploads

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
	"github.com/dmitrijs2005/traveldiary/internal/dbx"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := dbx.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE uploads (
  local_ref   TEXT PRIMARY KEY,
  remote_url  TEXT NOT NULL,
  object_key  TEXT NOT NULL,
  uploaded_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSaveAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Save(ctx, &models.Upload{
		LocalRef:   "file:///tmp/a.jpg",
		RemoteURL:  "https://cdn.example.org/entries/a.jpg",
		ObjectKey:  "entries/a.jpg",
		UploadedAt: at,
	}))

	got, err := r.Get(ctx, "file:///tmp/a.jpg")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://cdn.example.org/entries/a.jpg", got.RemoteURL)
	assert.Equal(t, "entries/a.jpg", got.ObjectKey)
	assert.True(t, got.UploadedAt.Equal(at))
}

func TestGet_Unknown_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.Get(context.Background(), "file:///nope.jpg")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSave_ReplacesExisting(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Upload{LocalRef: "a", RemoteURL: "u1", ObjectKey: "k1"}))
	require.NoError(t, r.Save(ctx, &models.Upload{LocalRef: "a", RemoteURL: "u2", ObjectKey: "k2"}))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.RemoteURL)
	assert.False(t, got.UploadedAt.IsZero(), "zero time is replaced with now")
}

func TestSave_ClosedDB(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	err := r.Save(context.Background(), &models.Upload{LocalRef: "a"})
	require.ErrorContains(t, err, "failed to save upload")
}
