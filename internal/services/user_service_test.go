package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/danielroh/hackmate/pkg/errors"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	user, err := svc.users.Register(ctx, RegisterInput{
		Username:    "alice",
		Email:       "Alice@Example.COM",
		Password:    "correct horse",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEqual(t, "correct horse", user.Password)

	authed, err := svc.users.Authenticate(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)
	require.NotNil(t, authed.LastLoginAt)

	_, err = svc.users.Authenticate(ctx, "alice@example.com", "wrong password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.users.Authenticate(ctx, "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	_, err := svc.users.Register(ctx, RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.ErrorContains(t, err, "username is required")

	_, err = svc.users.Register(ctx, RegisterInput{Username: "alice", Password: "longenough"})
	require.ErrorContains(t, err, "email is required")

	_, err = svc.users.Register(ctx, RegisterInput{Username: "alice", Email: "a@b.com", Password: "short"})
	require.ErrorContains(t, err, "at least 8 characters")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	_, err := svc.users.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.users.Register(ctx, RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrUserExists)

	_, err = svc.users.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice2@example.com",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestAuthenticateRejectsInactive(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	user, err := svc.users.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = svc.users.Authenticate(ctx, "alice@example.com", "correct horse")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestGetUserLookups(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")

	byID, err := svc.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, byID.Email)

	byEmail, err := svc.users.GetByEmail(ctx, "  "+user.Email+"  ")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = svc.users.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.users.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}
