// Package uploads is the local ledger of device images already copied to
// durable storage.
//
// # Why a ledger
//
// Saving an entry with device-local images is two remote steps: upload
// the files, then write the document. When the second step fails the
// uploads have already happened. The ledger remembers them, keyed by the
// local reference, so a retried save reuses the stored URL instead of
// uploading the same picture again.
//
// Typical Usage
//
//	repo := uploads.NewSQLiteRepository(db)
//	if u, _ := repo.Get(ctx, "file:///tmp/a.jpg"); u != nil {
//	    return u.RemoteURL, nil
//	}
//	_ = repo.Save(ctx, &models.Upload{LocalRef: ref, RemoteURL: url, ObjectKey: key})
package uploads
