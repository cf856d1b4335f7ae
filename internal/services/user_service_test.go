package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lectorium/lectorium/internal/database/testutil"
	apperrors "github.com/lectorium/lectorium/pkg/errors"
)

func TestUserCreateAndAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()
	user, err := svc.Create(ctx, CreateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "secret123", user.Password) // stored hashed

	authed, err := svc.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Create(ctx, CreateUserInput{Email: "a@example.com", Password: "x"})
	requireBadRequest(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Username: "a", Email: "a@example.com"})
	requireBadRequest(t, err)
}

func TestUserEnsureBootstrapUserIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()
	input := CreateUserInput{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "secret123",
	}

	first, err := svc.EnsureBootstrapUser(ctx, input)
	require.NoError(t, err)

	second, err := svc.EnsureBootstrapUser(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	_, err = svc.EnsureBootstrapUser(ctx, CreateUserInput{})
	requireBadRequest(t, err)
}

func TestUserGetByID(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()
	user, err := svc.Create(ctx, CreateUserInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	loaded, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "bob", loaded.Username)

	_, err = svc.GetByID(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
