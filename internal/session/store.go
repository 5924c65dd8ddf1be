// Package session holds the signed-in user. Unlike the entity stores it
// carries a single nullable record, and a rejected session check is not an
// error: it just means nobody is signed in.
package session

import (
	"context"
	"sync"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/cache"
	"github.com/carelink/patient-portal/pkg/logging"
)

// AuthAPI is the slice of the remote API the session store depends on.
type AuthAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.User, error)
	Login(ctx context.Context, creds api.Credentials) (*api.User, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*api.User, error)
}

// Snapshot is a point-in-time read of the session state.
type Snapshot struct {
	User   *api.User
	Status cache.Status
	Err    error
}

// Store is the session state machine: idle -> loading -> succeeded|failed,
// with both settled states able to re-enter loading on a new operation.
type Store struct {
	mu     sync.RWMutex
	user   *api.User
	status cache.Status
	err    error

	api    AuthAPI
	logger *logging.Logger
}

// New returns a signed-out session store in the idle state.
func New(authAPI AuthAPI, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{status: cache.StatusIdle, api: authAPI, logger: logger}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{User: s.user, Status: s.status, Err: s.err}
}

// User returns the signed-in user, or nil.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// ClearError drops a stored failure message without touching the user.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}

// Register creates an account and signs the user in.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	s.begin()
	user, err := s.api.Register(ctx, req)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.succeed(user)
	return user, nil
}

// Login authenticates and stores the signed-in user.
func (s *Store) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	s.begin()
	user, err := s.api.Login(ctx, creds)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.succeed(user)
	return user, nil
}

// Logout invalidates the remote session and resets to signed-out.
func (s *Store) Logout(ctx context.Context) error {
	s.begin()
	if err := s.api.Logout(ctx); err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.user = nil
	s.status = cache.StatusIdle
	s.err = nil
	s.mu.Unlock()
	return nil
}

// Fetch asks the remote API who the ambient credentials belong to. A
// rejection is treated as "no session": the store resets to signed-out
// without surfacing an error.
func (s *Store) Fetch(ctx context.Context) (*api.User, error) {
	s.begin()
	user, err := s.api.Session(ctx)
	if err != nil {
		s.logger.Debug("session check rejected, treating as signed out", "error", err)
		s.mu.Lock()
		s.user = nil
		s.status = cache.StatusIdle
		s.err = nil
		s.mu.Unlock()
		return nil, err
	}
	s.succeed(user)
	return user, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.status = cache.StatusLoading
	s.err = nil
	s.mu.Unlock()
}

func (s *Store) succeed(user *api.User) {
	s.mu.Lock()
	s.user = user
	s.status = cache.StatusSucceeded
	s.err = nil
	s.mu.Unlock()
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.status = cache.StatusFailed
	s.err = err
	s.mu.Unlock()
}
