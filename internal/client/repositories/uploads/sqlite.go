package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
	"github.com/dmitrijs2005/traveldiary/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, localRef string) (*models.Upload, error) {
	query := `select local_ref, remote_url, object_key, uploaded_at from uploads where local_ref=?`

	var (
		u          models.Upload
		uploadedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, localRef).Scan(&u.LocalRef, &u.RemoteURL, &u.ObjectKey, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	u.UploadedAt = time.Unix(uploadedAt, 0).UTC()
	return &u, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, u *models.Upload) error {
	query := `insert into uploads (local_ref, remote_url, object_key, uploaded_at)
			values (?, ?, ?, ?)
			on conflict(local_ref) do update set remote_url = excluded.remote_url,
				object_key = excluded.object_key,
				uploaded_at = excluded.uploaded_at
	`
	at := u.UploadedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx, query, u.LocalRef, u.RemoteURL, u.ObjectKey, at.Unix())
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}
