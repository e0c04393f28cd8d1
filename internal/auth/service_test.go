package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/servify/servify-dashboard/internal/shared"
)

type stubRepo struct {
	users map[string]*User
	err   error
	calls int
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func newStubRepo(t *testing.T, email, password string) *stubRepo {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &stubRepo{users: map[string]*User{
		email: {ID: 3, Email: email, PasswordHash: string(hashed)},
	}}
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo(t, "ana@example.com", "correct horse")
	tokens := NewTokenIssuer(testSecret)
	svc := NewService(repo, tokens)

	result, err := svc.Login(context.Background(), "ana@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, PublicUser{ID: 3, Email: "ana@example.com"}, result.User)

	id, err := tokens.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id.UserID)
}

func TestLoginInvalidCredentialsAreIndistinguishable(t *testing.T) {
	repo := newStubRepo(t, "ana@example.com", "correct horse")
	svc := NewService(repo, NewTokenIssuer(testSecret))

	_, wrongPassword := svc.Login(context.Background(), "ana@example.com", "nope")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "nope")

	assert.ErrorIs(t, wrongPassword, shared.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, shared.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginMissingFields(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, NewTokenIssuer(testSecret))

	_, err := svc.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, shared.ErrBadRequest)
	_, err = svc.Login(context.Background(), "a@b.co", "")
	assert.ErrorIs(t, err, shared.ErrBadRequest)
	assert.Zero(t, repo.calls)
}

func TestLoginDatastoreFailure(t *testing.T) {
	repo := &stubRepo{err: errors.Join(shared.ErrDependency, errors.New("connection reset"))}
	svc := NewService(repo, NewTokenIssuer(testSecret))

	_, err := svc.Login(context.Background(), "a@b.co", "secret")
	assert.ErrorIs(t, err, shared.ErrDependency)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}
