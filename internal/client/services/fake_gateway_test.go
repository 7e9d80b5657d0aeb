package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

// fakeGateway keeps entries in memory and records how often each operation
// was called. Errors set in errs are returned until cleared.
type fakeGateway struct {
	mu sync.Mutex

	user     *models.User
	password string
	entries  []models.TravelEntry
	tips     []models.TravelTip
	errs     map[string]error
	calls    map[string]int
	seq      int

	// hold, when set, blocks DeleteEntry until it is closed.
	hold    chan struct{}
	entered chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		password: "password123",
		errs:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeGateway) call(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.errs[op]
}

func (f *fakeGateway) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

func (f *fakeGateway) SetUser(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = u
}

func gwErr(op string, kind error) error {
	return &client.GatewayError{Op: op, Kind: kind}
}

func (f *fakeGateway) Register(_ context.Context, email, password, username string) (*models.User, error) {
	if err := f.call(client.OpRegister); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &models.User{ID: "user-" + username, AccountID: "acct-" + username, Email: email, Username: username}
	f.password = password
	u := *f.user
	return &u, nil
}

func (f *fakeGateway) Login(_ context.Context, email, password string) (*models.Session, error) {
	if err := f.call(client.OpLogin); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != f.password {
		return nil, gwErr(client.OpLogin, client.ErrAuthFailure)
	}
	if f.user == nil {
		f.user = &models.User{ID: "user-1", AccountID: "acct-1", Email: email, Username: "traveler"}
	}
	return &models.Session{ID: "s1", AccountID: f.user.AccountID}, nil
}

func (f *fakeGateway) CurrentUser(context.Context) (*models.User, error) {
	if err := f.call(client.OpCurrentUser); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, gwErr(client.OpCurrentUser, client.ErrNotAuthenticated)
	}
	u := *f.user
	return &u, nil
}

func (f *fakeGateway) Logout(context.Context) error {
	err := f.call(client.OpLogout)
	f.mu.Lock()
	f.user = nil
	f.mu.Unlock()
	return err
}

func (f *fakeGateway) CreateEntry(_ context.Context, ownerID string, draft models.DraftEntry) (*models.TravelEntry, error) {
	if err := f.call(client.OpCreateEntry); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	e := models.TravelEntry{
		ID:        fmt.Sprintf("e%d", f.seq),
		Title:     draft.Title,
		Content:   draft.Content,
		Location:  draft.Location,
		Images:    slices.Clone(draft.Images),
		CreatedAt: draft.CreatedAt,
		Owner:     ownerID,
	}
	f.entries = append(f.entries, e)
	out := e.Clone()
	return &out, nil
}

func (f *fakeGateway) ListEntriesForOwner(_ context.Context, ownerID string) ([]models.TravelEntry, error) {
	if err := f.call(client.OpListEntries); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.TravelEntry{}
	for _, e := range f.entries {
		if e.Owner == ownerID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (f *fakeGateway) find(id string) int {
	return slices.IndexFunc(f.entries, func(e models.TravelEntry) bool { return e.ID == id })
}

func (f *fakeGateway) GetEntry(_ context.Context, id string) (*models.TravelEntry, error) {
	if err := f.call(client.OpGetEntry); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return nil, gwErr(client.OpGetEntry, client.ErrNotFound)
	}
	out := f.entries[i].Clone()
	return &out, nil
}

func (f *fakeGateway) UpdateEntry(_ context.Context, id string, fields models.EntryFields) (*models.TravelEntry, error) {
	if err := f.call(client.OpUpdateEntry); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return nil, gwErr(client.OpUpdateEntry, client.ErrNotFound)
	}
	e := &f.entries[i]
	e.Title, e.Content, e.Location = fields.Title, fields.Content, fields.Location
	e.Images = slices.Clone(fields.Images)
	out := e.Clone()
	return &out, nil
}

func (f *fakeGateway) DeleteEntry(_ context.Context, id string) error {
	f.mu.Lock()
	hold, entered := f.hold, f.entered
	f.mu.Unlock()
	if hold != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		<-hold
	}

	if err := f.call(client.OpDeleteEntry); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return gwErr(client.OpDeleteEntry, client.ErrNotFound)
	}
	f.entries = slices.Delete(f.entries, i, i+1)
	return nil
}

func (f *fakeGateway) ListTips(context.Context) ([]models.TravelTip, error) {
	if err := f.call(client.OpListTips); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tips), nil
}

func (f *fakeGateway) Close() error { return nil }

var testUser = &models.User{ID: "user-1", AccountID: "acct-1", Email: "ann@example.org", Username: "ann"}

// loggedIn returns a gateway with a logged-in user and a started session.
func loggedIn(t *testing.T) (*fakeGateway, *Session) {
	t.Helper()
	gw := newFakeGateway()
	gw.SetUser(testUser)
	s := NewSession(gw, nil)
	require.NoError(t, s.Start(context.Background()))
	require.True(t, s.IsLoggedIn())
	return gw, s
}
