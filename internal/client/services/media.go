package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/models"
	"github.com/dmitrijs2005/traveldiary/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/traveldiary/internal/client/storage"
	"github.com/dmitrijs2005/traveldiary/internal/logging"
)

// ImageUploader copies one device-local image to durable storage.
type ImageUploader interface {
	Upload(ctx context.Context, localRef string) (remoteURL string, objectKey string, err error)
}

// ImageSync replaces local image references with uploaded URLs. Every
// upload is recorded in the ledger first, so when the document write that
// follows fails, a retry reuses the stored URL instead of uploading again.
type ImageSync struct {
	ledger   uploads.Repository
	uploader ImageUploader
	log      logging.Logger
	now      func() time.Time
}

var _ ImageResolver = (*ImageSync)(nil)

func NewImageSync(ledger uploads.Repository, uploader ImageUploader, log logging.Logger) *ImageSync {
	if log == nil {
		log = logging.Nop()
	}
	return &ImageSync{ledger: ledger, uploader: uploader, log: log, now: time.Now}
}

// Resolve returns refs with every local reference swapped for its remote
// URL. Remote references pass through; order is kept.
func (m *ImageSync) Resolve(ctx context.Context, refs []string) ([]string, error) {

	out := make([]string, len(refs))
	for i, ref := range refs {
		if !models.IsLocalRef(ref) {
			out[i] = ref
			continue
		}

		known, err := m.ledger.Get(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("look up upload of %s: %w", ref, err)
		}
		if known != nil {
			out[i] = known.RemoteURL
			continue
		}

		url, key, err := m.uploader.Upload(ctx, ref)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrUnsupportedRef) {
				return nil, &client.ValidationError{Fields: []client.FieldError{{Field: fmt.Sprintf("images[%d]", i), Rule: "readable"}}}
			}
			return nil, fmt.Errorf("upload image %s: %w: %w", ref, client.ErrNetwork, err)
		}

		rec := &models.Upload{LocalRef: ref, RemoteURL: url, ObjectKey: key, UploadedAt: m.now()}
		if err := m.ledger.Save(ctx, rec); err != nil {
			m.log.Warn(ctx, "failed to record upload", "ref", ref, "key", key, "error", err)
		}

		m.log.Info(ctx, "image uploaded", "ref", ref, "key", key)
		out[i] = url
	}
	return out, nil
}
