package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/models"
	"github.com/dmitrijs2005/traveldiary/internal/logging"
)

// SessionState is where the Session is in its lifecycle.
type SessionState int

const (
	StateInitializing SessionState = iota
	StateLoggedOut
	StateLoggedIn
)

func (s SessionState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateLoggedOut:
		return "logged_out"
	case StateLoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// Session is the process-wide authentication state. It starts in
// StateInitializing, settles once into LoggedIn or LoggedOut and then only
// moves between those two.
type Session struct {
	gw  client.Gateway
	log logging.Logger

	mu    sync.RWMutex
	state SessionState
	user  *models.User

	ready     chan struct{}
	readyOnce sync.Once
}

func NewSession(gw client.Gateway, log logging.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		gw:    gw,
		log:   log,
		state: StateInitializing,
		ready: make(chan struct{}),
	}
}

// Start resolves the user behind any persisted session. No session is a
// normal outcome and returns nil; other failures leave the Session logged
// out and are returned.
func (s *Session) Start(ctx context.Context) error {

	u, err := s.gw.CurrentUser(ctx)
	switch {
	case err == nil:
		s.settle(ctx, StateLoggedIn, u)
		return nil
	case errors.Is(err, client.ErrNotAuthenticated):
		s.settle(ctx, StateLoggedOut, nil)
		return nil
	default:
		s.log.Warn(ctx, "could not resolve current user", "error", err)
		s.settle(ctx, StateLoggedOut, nil)
		return err
	}
}

// Await blocks until the Session has settled or ctx is done.
func (s *Session) Await(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {

	if _, err := s.gw.Login(ctx, email, password); err != nil {
		if s.State() == StateInitializing {
			s.settle(ctx, StateLoggedOut, nil)
		}
		return nil, err
	}

	u, err := s.gw.CurrentUser(ctx)
	if err != nil {
		s.settle(ctx, StateLoggedOut, nil)
		return nil, err
	}

	s.settle(ctx, StateLoggedIn, u)
	return s.User(), nil
}

// Register creates the account and leaves the new user logged in.
func (s *Session) Register(ctx context.Context, email, password, username string) (*models.User, error) {

	u, err := s.gw.Register(ctx, email, password, username)
	if err != nil {
		return nil, err
	}

	s.settle(ctx, StateLoggedIn, u)
	return s.User(), nil
}

// Logout ends the session. The Session is logged out afterwards whatever
// the backend answered; the backend error, if any, is still returned.
func (s *Session) Logout(ctx context.Context) error {
	err := s.gw.Logout(ctx)
	if err != nil {
		s.log.Warn(ctx, "logout call failed", "error", err)
	}
	s.settle(ctx, StateLoggedOut, nil)
	return err
}

// Invalidate drops the user after the backend rejected our credentials.
func (s *Session) Invalidate(ctx context.Context) {
	if s.State() == StateLoggedIn {
		s.log.Info(ctx, "session invalidated by backend")
	}
	s.settle(ctx, StateLoggedOut, nil)
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsLoggedIn() bool { return s.State() == StateLoggedIn }

func (s *Session) IsLoading() bool { return s.State() == StateInitializing }

// User returns a copy of the current user, nil when logged out.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) settle(ctx context.Context, state SessionState, u *models.User) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	if u != nil {
		cp := *u
		s.user = &cp
	} else {
		s.user = nil
	}
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })

	if prev != state {
		s.log.Info(ctx, "session state changed", "from", prev.String(), "to", state.String())
	}
}
