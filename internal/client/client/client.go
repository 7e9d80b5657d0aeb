package client

import (
	"context"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

// Operation names used in GatewayError.Op and as the "op" metric label.
const (
	OpRegister      = "register"
	OpLogin         = "login"
	OpCurrentUser   = "current_user"
	OpLogout        = "logout"
	OpCreateEntry   = "create_entry"
	OpListEntries   = "list_entries"
	OpGetEntry      = "get_entry"
	OpUpdateEntry   = "update_entry"
	OpDeleteEntry   = "delete_entry"
	OpListTips      = "list_tips"
	opMintJWT       = "mint_jwt"
	opCreateProfile = "create_profile"
)

// Gateway is the remote backend as seen by the services. Every method is a
// single request/response exchange with no caching and no retry on failure.
// The one exception is a rejected access token: it is re-minted from the
// session and the call is sent once more.
type Gateway interface {
	Register(ctx context.Context, email, password, username string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	// Logout succeeds when there is no active session.
	Logout(ctx context.Context) error

	// CreateEntry stores draft as owned by ownerID. Drafts are not validated here.
	CreateEntry(ctx context.Context, ownerID string, draft models.DraftEntry) (*models.TravelEntry, error)
	// ListEntriesForOwner returns entries in the order the backend sent them.
	ListEntriesForOwner(ctx context.Context, ownerID string) ([]models.TravelEntry, error)
	GetEntry(ctx context.Context, id string) (*models.TravelEntry, error)
	UpdateEntry(ctx context.Context, id string, fields models.EntryFields) (*models.TravelEntry, error)
	DeleteEntry(ctx context.Context, id string) error

	ListTips(ctx context.Context) ([]models.TravelTip, error)

	Close() error
}
