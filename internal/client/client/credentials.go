package client

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/traveldiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/traveldiary/internal/dbx"
)

// Credentials is what the client needs to act on behalf of a logged-in user.
//
// Session is the long-lived session secret; JWT is a short-lived token
// minted from it for document calls.
type Credentials struct {
	Session string
	JWT     string
}

// CredentialStore persists Credentials between process runs.
type CredentialStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

// MemoryCredentialStore keeps credentials for the life of the process only.
type MemoryCredentialStore struct {
	mu sync.Mutex
	c  Credentials
}

func (m *MemoryCredentialStore) Load(context.Context) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c, nil
}

func (m *MemoryCredentialStore) Save(_ context.Context, c Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c = c
	return nil
}

func (m *MemoryCredentialStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c = Credentials{}
	return nil
}

const (
	metaSessionKey = "session_secret"
	metaJWTKey     = "session_jwt"
)

// MetadataCredentialStore keeps credentials in the local metadata table.
type MetadataCredentialStore struct {
	db *sql.DB
}

func NewMetadataCredentialStore(db *sql.DB) *MetadataCredentialStore {
	return &MetadataCredentialStore{db: db}
}

func (s *MetadataCredentialStore) Load(ctx context.Context) (Credentials, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	session, err := repo.Get(ctx, metaSessionKey)
	if err != nil {
		return Credentials{}, err
	}
	token, err := repo.Get(ctx, metaJWTKey)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Session: string(session), JWT: string(token)}, nil
}

// Save replaces both values in one transaction.
func (s *MetadataCredentialStore) Save(ctx context.Context, c Credentials) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := putOrDelete(ctx, repo, metaSessionKey, c.Session); err != nil {
			return err
		}
		return putOrDelete(ctx, repo, metaJWTKey, c.JWT)
	})
}

func (s *MetadataCredentialStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, metaSessionKey); err != nil {
			return err
		}
		return repo.Delete(ctx, metaJWTKey)
	})
}

func putOrDelete(ctx context.Context, repo metadata.Repository, key, value string) error {
	if value == "" {
		return repo.Delete(ctx, key)
	}
	return repo.Set(ctx, key, []byte(value))
}
