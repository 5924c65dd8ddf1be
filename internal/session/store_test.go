package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/cache"
)

type fakeAuthAPI struct {
	user       *api.User
	err        error
	logoutErr  error
	sessionErr error
}

func (f *fakeAuthAPI) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	return f.user, f.err
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	return f.user, f.err
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error { return f.logoutErr }

func (f *fakeAuthAPI) Session(ctx context.Context) (*api.User, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.user, f.err
}

func TestNewStartsSignedOut(t *testing.T) {
	s := New(&fakeAuthAPI{}, nil)

	snap := s.Snapshot()
	assert.Nil(t, snap.User)
	assert.Equal(t, cache.StatusIdle, snap.Status)
	assert.NoError(t, snap.Err)
}

func TestLoginSucceeded(t *testing.T) {
	s := New(&fakeAuthAPI{user: &api.User{ID: "u1", Name: "Pat"}}, nil)

	user, err := s.Login(context.Background(), api.Credentials{Email: "pat@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.Identifier())

	snap := s.Snapshot()
	assert.Equal(t, cache.StatusSucceeded, snap.Status)
	require.NotNil(t, snap.User)
	assert.Equal(t, "Pat", snap.User.Name)
}

func TestLoginRejected(t *testing.T) {
	boom := errors.New("invalid credentials")
	s := New(&fakeAuthAPI{err: boom}, nil)

	_, err := s.Login(context.Background(), api.Credentials{})
	assert.ErrorIs(t, err, boom)

	snap := s.Snapshot()
	assert.Equal(t, cache.StatusFailed, snap.Status)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Nil(t, snap.User)
}

func TestRegisterSucceeded(t *testing.T) {
	s := New(&fakeAuthAPI{user: &api.User{ID: "u2"}}, nil)

	_, err := s.Register(context.Background(), api.RegisterRequest{Name: "New", Email: "n@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, cache.StatusSucceeded, s.Snapshot().Status)
	assert.NotNil(t, s.User())
}

func TestLogoutResetsToSignedOut(t *testing.T) {
	auth := &fakeAuthAPI{user: &api.User{ID: "u1"}}
	s := New(auth, nil)
	_, err := s.Login(context.Background(), api.Credentials{})
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))

	snap := s.Snapshot()
	assert.Nil(t, snap.User)
	assert.Equal(t, cache.StatusIdle, snap.Status)
	assert.NoError(t, snap.Err)
}

func TestLogoutRejectedKeepsUser(t *testing.T) {
	auth := &fakeAuthAPI{user: &api.User{ID: "u1"}}
	s := New(auth, nil)
	_, err := s.Login(context.Background(), api.Credentials{})
	require.NoError(t, err)

	auth.logoutErr = errors.New("gateway timeout")
	assert.Error(t, s.Logout(context.Background()))

	snap := s.Snapshot()
	assert.NotNil(t, snap.User)
	assert.Equal(t, cache.StatusFailed, snap.Status)
}

// Fresh load with no prior credential: the session check rejects and the
// store ends signed out with no surfaced error.
func TestFetchRejectionSuppressed(t *testing.T) {
	s := New(&fakeAuthAPI{sessionErr: &api.Error{StatusCode: 401, Message: "no session"}}, nil)

	_, err := s.Fetch(context.Background())
	assert.Error(t, err) // the caller still sees its own outcome

	snap := s.Snapshot()
	assert.Nil(t, snap.User)
	assert.Equal(t, cache.StatusIdle, snap.Status)
	assert.NoError(t, snap.Err)
}

func TestFetchRecognizedSession(t *testing.T) {
	s := New(&fakeAuthAPI{user: &api.User{ID: "u1"}}, nil)

	user, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.Identifier())
	assert.Equal(t, cache.StatusSucceeded, s.Snapshot().Status)
}

func TestClearError(t *testing.T) {
	s := New(&fakeAuthAPI{err: errors.New("bad")}, nil)
	_, _ = s.Login(context.Background(), api.Credentials{})

	s.ClearError()
	assert.NoError(t, s.Snapshot().Err)
	assert.Equal(t, cache.StatusFailed, s.Snapshot().Status)
}
