package service

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/dashboard-backend/internal/auth"
	"github.com/Tomlord1122/dashboard-backend/internal/config"
	"github.com/Tomlord1122/dashboard-backend/internal/logging"
	"github.com/Tomlord1122/dashboard-backend/internal/repository"
)

func newUserService(t *testing.T) (UserService, *auth.Issuer) {
	t.Helper()
	issuer, err := auth.NewIssuer(base64.StdEncoding.EncodeToString([]byte("test-secret")), time.Hour)
	require.NoError(t, err)
	return NewUserService(repository.NewMemoryUserRepository(), issuer, 0, logging.Discard().Logger), issuer
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, config.AdminConfig{})
	require.NoError(t, err)
	assert.False(t, created)

	admin := config.AdminConfig{Username: "root", Password: "pw", DisplayName: "Root"}
	created, err = svc.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLogin(t *testing.T) {
	svc, issuer := newUserService(t)
	ctx := context.Background()
	_, err := svc.EnsureAdmin(ctx, config.AdminConfig{Username: "Root", Password: "pw", DisplayName: "Root"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Username: "root", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, resp.User.Admin)
	assert.Equal(t, "Root", resp.User.Username)

	claims, err := issuer.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.True(t, claims.Admin)

	_, err = svc.Login(ctx, LoginRequest{Username: "root", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "pw"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterAndMe(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.DisplayName)
	assert.False(t, user.Admin)

	_, err = svc.Register(ctx, RegisterRequest{Username: "ALICE", Password: "pw"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(ctx, RegisterRequest{Username: "  ", Password: "pw"})
	assert.ErrorIs(t, err, ErrValidation)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, *user, *me)

	_, err = svc.Me(ctx, 999)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
