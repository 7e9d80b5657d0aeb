package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/models"
	"github.com/dmitrijs2005/traveldiary/internal/logging"
)

// ErrOperationInFlight rejects a second identical mutation (say, a double
// tapped delete) while the first is still waiting on the backend.
var ErrOperationInFlight = errors.New("operation already in progress")

// EntryService is the in-process view of the current user's entries.
//
// Reads return copies and never block on the network. Mutations run one at
// a time and touch the snapshot only after the backend confirmed them.
type EntryService interface {
	Refresh(ctx context.Context) error
	// Entries returns the snapshot in stored order.
	Entries() []models.TravelEntry
	// Sorted returns the snapshot newest first without reordering it.
	Sorted() []models.TravelEntry
	Lookup(id string) (models.TravelEntry, bool)

	Create(ctx context.Context, draft models.DraftEntry) (*models.TravelEntry, error)
	Update(ctx context.Context, id string, patch models.EntryPatch) (*models.TravelEntry, error)
	Remove(ctx context.Context, id string) error
	// Get fetches one entry and refreshes its snapshot copy, if any.
	Get(ctx context.Context, id string) (*models.TravelEntry, error)
}

// ImageResolver turns device-local image references into durable URLs
// before they are written to the backend.
type ImageResolver interface {
	Resolve(ctx context.Context, refs []string) ([]string, error)
}

type EntryOption func(*entryService)

func WithImageResolver(r ImageResolver) EntryOption {
	return func(s *entryService) { s.images = r }
}

func WithLogger(l logging.Logger) EntryOption {
	return func(s *entryService) { s.log = l }
}

func WithClock(now func() time.Time) EntryOption {
	return func(s *entryService) { s.now = now }
}

type entryService struct {
	gw       client.Gateway
	session  *Session
	images   ImageResolver
	log      logging.Logger
	validate *validator.Validate
	now      func() time.Time

	// slot admits one mutation at a time.
	slot chan struct{}

	flightMu sync.Mutex
	inFlight map[string]struct{}

	mu      sync.RWMutex
	owner   string
	entries []models.TravelEntry
}

func NewEntryService(gw client.Gateway, session *Session, opts ...EntryOption) EntryService {
	s := &entryService{
		gw:       gw,
		session:  session,
		log:      logging.Nop(),
		validate: newValidator(),
		now:      time.Now,
		slot:     make(chan struct{}, 1),
		inFlight: map[string]struct{}{},
		entries:  []models.TravelEntry{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *entryService) Refresh(ctx context.Context) error {

	release, err := s.begin(ctx, "refresh", "")
	if err != nil {
		return err
	}
	defer release()

	owner, err := s.currentOwner(ctx)
	if err != nil {
		return err
	}

	list, err := s.gw.ListEntriesForOwner(ctx, owner)
	if err != nil {
		return s.fail(ctx, "refresh entries", err)
	}

	s.mu.Lock()
	s.entries = models.CloneEntries(list)
	s.mu.Unlock()

	s.log.Info(ctx, "entries refreshed", "owner", owner, "count", len(list))
	return nil
}

func (s *entryService) Entries() []models.TravelEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ownsSnapshot() {
		return []models.TravelEntry{}
	}
	return models.CloneEntries(s.entries)
}

func (s *entryService) Sorted() []models.TravelEntry {
	return models.SortedByCreatedDesc(s.Entries())
}

func (s *entryService) Lookup(id string) (models.TravelEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ownsSnapshot() {
		return models.TravelEntry{}, false
	}
	i := s.indexOf(id)
	if i < 0 {
		return models.TravelEntry{}, false
	}
	return s.entries[i].Clone(), true
}

// Create validates the draft before anything else; an invalid draft never
// reaches the backend. An empty CreatedAt defaults to now.
func (s *entryService) Create(ctx context.Context, draft models.DraftEntry) (*models.TravelEntry, error) {

	draft.Images = append([]string{}, draft.Images...)
	if err := validateStruct(s.validate, draft); err != nil {
		return nil, err
	}
	if draft.CreatedAt == "" {
		draft.CreatedAt = models.FormatCreatedAt(s.now())
	}

	release, err := s.begin(ctx, "create", "")
	if err != nil {
		return nil, err
	}
	defer release()

	owner, err := s.currentOwner(ctx)
	if err != nil {
		return nil, err
	}

	if draft.Images, err = s.resolveImages(ctx, draft.Images); err != nil {
		return nil, err
	}

	created, err := s.gw.CreateEntry(ctx, owner, draft)
	if err != nil {
		return nil, s.fail(ctx, "create entry", err)
	}

	s.mu.Lock()
	s.entries = append([]models.TravelEntry{created.Clone()}, s.entries...)
	s.mu.Unlock()

	s.log.Info(ctx, "entry created", "id", created.ID)
	out := created.Clone()
	return &out, nil
}

// Update merges patch over the loaded entry and sends the full field set.
// An entry that is not loaded can only be updated with a complete patch.
func (s *entryService) Update(ctx context.Context, id string, patch models.EntryPatch) (*models.TravelEntry, error) {

	release, err := s.begin(ctx, "update", id)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.currentOwner(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	i := s.indexOf(id)
	var base models.EntryFields
	if i >= 0 {
		base = s.entries[i].Fields()
	}
	s.mu.RUnlock()

	if i < 0 && !patch.Complete() {
		return nil, fmt.Errorf("%w: entry %q is not loaded and the update does not set every field", client.ErrValidation, id)
	}

	fields := patch.Apply(base)
	if err := validateStruct(s.validate, fields); err != nil {
		return nil, err
	}

	if fields.Images, err = s.resolveImages(ctx, fields.Images); err != nil {
		return nil, err
	}

	updated, err := s.gw.UpdateEntry(ctx, id, fields)
	if err != nil {
		return nil, s.fail(ctx, "update entry", err)
	}

	s.mu.Lock()
	if j := s.indexOf(id); j >= 0 {
		s.entries[j] = updated.Clone()
	}
	s.mu.Unlock()

	s.log.Info(ctx, "entry updated", "id", id)
	out := updated.Clone()
	return &out, nil
}

func (s *entryService) Remove(ctx context.Context, id string) error {

	release, err := s.begin(ctx, "remove", id)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.currentOwner(ctx); err != nil {
		return err
	}

	if err := s.gw.DeleteEntry(ctx, id); err != nil {
		return s.fail(ctx, "delete entry", err)
	}

	s.mu.Lock()
	s.entries = slices.DeleteFunc(s.entries, func(e models.TravelEntry) bool { return e.ID == id })
	s.mu.Unlock()

	s.log.Info(ctx, "entry removed", "id", id)
	return nil
}

func (s *entryService) Get(ctx context.Context, id string) (*models.TravelEntry, error) {

	release, err := s.begin(ctx, "get", id)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.currentOwner(ctx); err != nil {
		return nil, err
	}

	e, err := s.gw.GetEntry(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get entry", err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.entries[i] = e.Clone()
	}
	s.mu.Unlock()

	out := e.Clone()
	return &out, nil
}

// begin claims the op/id pair and then waits for the mutation slot. The
// returned func releases both.
func (s *entryService) begin(ctx context.Context, op, id string) (func(), error) {
	key := op + ":" + id

	s.flightMu.Lock()
	if _, busy := s.inFlight[key]; busy {
		s.flightMu.Unlock()
		return nil, fmt.Errorf("%s %s: %w", op, id, ErrOperationInFlight)
	}
	s.inFlight[key] = struct{}{}
	s.flightMu.Unlock()

	done := func() {
		s.flightMu.Lock()
		delete(s.inFlight, key)
		s.flightMu.Unlock()
	}

	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		done()
		return nil, ctx.Err()
	}

	return func() {
		<-s.slot
		done()
	}, nil
}

// currentOwner waits for the session and returns the logged-in user id.
// A different user than the snapshot's owner starts from an empty list.
func (s *entryService) currentOwner(ctx context.Context) (string, error) {

	if err := s.session.Await(ctx); err != nil {
		return "", err
	}

	u := s.session.User()
	if u == nil {
		return "", fmt.Errorf("entries: %w", client.ErrNotAuthenticated)
	}

	s.mu.Lock()
	if s.owner != u.ID {
		s.owner = u.ID
		s.entries = []models.TravelEntry{}
	}
	s.mu.Unlock()

	return u.ID, nil
}

// ownsSnapshot must be called with mu held.
func (s *entryService) ownsSnapshot() bool {
	u := s.session.User()
	return u != nil && u.ID == s.owner
}

// indexOf must be called with mu held.
func (s *entryService) indexOf(id string) int {
	return slices.IndexFunc(s.entries, func(e models.TravelEntry) bool { return e.ID == id })
}

func (s *entryService) resolveImages(ctx context.Context, refs []string) ([]string, error) {
	if s.images == nil || !slices.ContainsFunc(refs, models.IsLocalRef) {
		return refs, nil
	}
	return s.images.Resolve(ctx, refs)
}

func (s *entryService) fail(ctx context.Context, what string, err error) error {
	if errors.Is(err, client.ErrNotAuthenticated) {
		s.session.Invalidate(ctx)
	}
	s.log.Warn(ctx, what+" failed", "error", err)
	return fmt.Errorf("%s: %w", what, err)
}
