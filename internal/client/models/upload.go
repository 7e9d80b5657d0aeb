package models

import "time"

// Upload records that a device-local image has been copied to durable
// storage. The ledger lets a retried create/update reuse earlier uploads.
type Upload struct {
	LocalRef   string
	RemoteURL  string
	ObjectKey  string
	UploadedAt time.Time
}
