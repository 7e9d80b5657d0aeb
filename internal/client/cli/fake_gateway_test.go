package cli

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

// memGateway is an in-memory backend with one account.
type memGateway struct {
	mu sync.Mutex

	user     *models.User
	loggedIn bool
	password string
	entries  []models.TravelEntry
	tips     []models.TravelTip
	errs     map[string]error
	calls    map[string]int
	seq      int

	lastUpdate models.EntryFields
}

func newMemGateway() *memGateway {
	return &memGateway{
		user:     &models.User{ID: "user-1", AccountID: "acct-1", Email: "ann@example.org", Username: "ann"},
		password: "password123",
		errs:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (g *memGateway) call(op string) error {
	g.calls[op]++
	return g.errs[op]
}

func (g *memGateway) seed(entries ...models.TravelEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range entries {
		if e.Owner == "" {
			e.Owner = g.user.ID
		}
		g.entries = append(g.entries, e)
	}
}

func (g *memGateway) Register(_ context.Context, email, password, username string) (*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpRegister); err != nil {
		return nil, err
	}
	g.user = &models.User{ID: "user-" + username, AccountID: "acct-" + username, Email: email, Username: username}
	g.password = password
	g.loggedIn = true
	u := *g.user
	return &u, nil
}

func (g *memGateway) Login(_ context.Context, email, password string) (*models.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpLogin); err != nil {
		return nil, err
	}
	if email != g.user.Email || password != g.password {
		return nil, &client.GatewayError{Op: client.OpLogin, Kind: client.ErrAuthFailure}
	}
	g.loggedIn = true
	return &models.Session{ID: "s1", AccountID: g.user.AccountID}, nil
}

func (g *memGateway) CurrentUser(context.Context) (*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpCurrentUser); err != nil {
		return nil, err
	}
	if !g.loggedIn {
		return nil, &client.GatewayError{Op: client.OpCurrentUser, Kind: client.ErrNotAuthenticated}
	}
	u := *g.user
	return &u, nil
}

func (g *memGateway) Logout(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loggedIn = false
	return g.call(client.OpLogout)
}

func (g *memGateway) CreateEntry(_ context.Context, ownerID string, d models.DraftEntry) (*models.TravelEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpCreateEntry); err != nil {
		return nil, err
	}
	g.seq++
	e := models.TravelEntry{
		ID: fmt.Sprintf("new-%d", g.seq), Title: d.Title, Content: d.Content, Location: d.Location,
		Images: slices.Clone(d.Images), CreatedAt: d.CreatedAt, Owner: ownerID,
	}
	g.entries = append(g.entries, e)
	out := e.Clone()
	return &out, nil
}

func (g *memGateway) ListEntriesForOwner(_ context.Context, ownerID string) ([]models.TravelEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpListEntries); err != nil {
		return nil, err
	}
	out := []models.TravelEntry{}
	for _, e := range g.entries {
		if e.Owner == ownerID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (g *memGateway) find(id string) int {
	return slices.IndexFunc(g.entries, func(e models.TravelEntry) bool { return e.ID == id })
}

func (g *memGateway) GetEntry(_ context.Context, id string) (*models.TravelEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpGetEntry); err != nil {
		return nil, err
	}
	i := g.find(id)
	if i < 0 {
		return nil, &client.GatewayError{Op: client.OpGetEntry, Kind: client.ErrNotFound}
	}
	out := g.entries[i].Clone()
	return &out, nil
}

func (g *memGateway) UpdateEntry(_ context.Context, id string, f models.EntryFields) (*models.TravelEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpUpdateEntry); err != nil {
		return nil, err
	}
	i := g.find(id)
	if i < 0 {
		return nil, &client.GatewayError{Op: client.OpUpdateEntry, Kind: client.ErrNotFound}
	}
	g.lastUpdate = f
	e := &g.entries[i]
	e.Title, e.Content, e.Location, e.Images = f.Title, f.Content, f.Location, slices.Clone(f.Images)
	out := e.Clone()
	return &out, nil
}

func (g *memGateway) DeleteEntry(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpDeleteEntry); err != nil {
		return err
	}
	i := g.find(id)
	if i < 0 {
		return &client.GatewayError{Op: client.OpDeleteEntry, Kind: client.ErrNotFound}
	}
	g.entries = slices.Delete(g.entries, i, i+1)
	return nil
}

func (g *memGateway) ListTips(context.Context) ([]models.TravelTip, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(client.OpListTips); err != nil {
		return nil, err
	}
	return slices.Clone(g.tips), nil
}

func (g *memGateway) Close() error { return nil }

func (g *memGateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}
