package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"folio/internal/access"
	"folio/internal/auth"
	"folio/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUsers is a repository.UserRepository keyed by email.
type stubUsers struct {
	byEmail   map[string]*models.User
	upsertErr error
	lookupErr error
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: make(map[string]*models.User)}
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	u, ok := s.byEmail[email]
	if !ok {
		return nil, models.NewNotFoundError("User", email)
	}
	return u, nil
}

func (s *stubUsers) UpsertByEmail(_ context.Context, user *models.User) (*models.User, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	if existing, ok := s.byEmail[user.Email]; ok {
		existing.Name = user.Name
		existing.AvatarURL = user.AvatarURL
		return existing, nil
	}
	cp := *user
	cp.ID = uuid.New()
	s.byEmail[user.Email] = &cp
	return &cp, nil
}

func newAuthFixture(t *testing.T, withRedis bool) (*AuthService, *stubUsers) {
	t.Helper()
	users := newStubUsers()
	tokens := auth.NewTokenManager("test-secret", "folio-test", time.Hour)
	var revoker auth.Revoker
	if withRedis {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		revoker = auth.NewRedisRevoker(rdb)
	}
	svc := NewAuthService(users, tokens, revoker, access.NewAllowList([]string{"admin@example.com"}))
	return svc, users
}

func TestAuthService_SignIn(t *testing.T) {
	svc, users := newAuthFixture(t, false)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, SignInInput{Email: "admin@example.com", Name: "Admin", Provider: "github", ProviderID: "42"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.NotNil(t, res.Session.UserID)
	assert.Equal(t, users.byEmail["admin@example.com"].ID, *res.Session.UserID)
	assert.True(t, res.Session.IsAdmin)

	again, err := svc.SignIn(ctx, SignInInput{Email: "admin@example.com", Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, *res.Session.UserID, *again.Session.UserID, "second sign-in reuses the row")
	assert.Equal(t, "Renamed", again.Session.Name)
}

func TestAuthService_SignIn_Failures(t *testing.T) {
	svc, users := newAuthFixture(t, false)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, SignInInput{})
	assertValidationError(t, err)

	users.upsertErr = models.NewInternalError(errors.New("db down"))
	_, err = svc.SignIn(ctx, SignInInput{Email: "reader@example.com"})
	assertAppError(t, err, models.CodeInternal)
}

func TestAuthService_ResolveSession(t *testing.T) {
	svc, users := newAuthFixture(t, false)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, SignInInput{Email: "reader@example.com", Name: "Reader"})
	require.NoError(t, err)

	session, err := svc.ResolveSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", session.Email)
	require.NotNil(t, session.UserID)
	assert.Equal(t, *res.Session.UserID, *session.UserID)
	assert.False(t, session.IsAdmin)

	users.lookupErr = errors.New("db down")
	session, err = svc.ResolveSession(ctx, res.Token)
	require.NoError(t, err, "lookup failures do not fail the session")
	assert.Nil(t, session.UserID)
	assert.Equal(t, "reader@example.com", session.Email)

	_, err = svc.ResolveSession(ctx, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_SignOut(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, SignInInput{Email: "reader@example.com"})
	require.NoError(t, err)

	session, err := svc.ResolveSession(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, session))

	_, err = svc.ResolveSession(ctx, res.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	assertAppError(t, svc.SignOut(ctx, nil), models.CodeAuthRequired)
}

func TestAuthService_SignOutWithoutStore(t *testing.T) {
	svc, _ := newAuthFixture(t, false)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, SignInInput{Email: "reader@example.com"})
	require.NoError(t, err)

	err = svc.SignOut(ctx, res.Session)
	assert.ErrorIs(t, err, auth.ErrRevocationUnavailable)

	_, err = svc.ResolveSession(ctx, res.Token)
	assert.NoError(t, err, "token stays valid until expiry")
}
