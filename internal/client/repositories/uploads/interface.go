package uploads

import (
	"context"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

// Repository stores Upload records by local reference.
type Repository interface {
	// Get returns (nil, nil) when the reference has not been uploaded.
	Get(ctx context.Context, localRef string) (*models.Upload, error)

	// Save inserts or replaces the record for u.LocalRef.
	Save(ctx context.Context, u *models.Upload) error
}
