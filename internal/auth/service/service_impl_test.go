package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sahayog-foundation/sahayog/internal/auth/domain"
	"github.com/sahayog-foundation/sahayog/internal/auth/repository"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, clk
}

func createStaff(t *testing.T, svc domain.Service, email string) domain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    email,
		Password: "correct-horse-battery",
		Role:     domain.RoleStaff,
	})
	require.NoError(t, err)
	return user
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	user := createStaff(t, svc, "staff@sahayog.org")

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "Staff@Sahayog.org",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	authed, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	createStaff(t, svc, "staff@sahayog.org")

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "staff@sahayog.org",
		Password: "wrong",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@sahayog.org",
		Password: "whatever",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSessionExpiry(t *testing.T) {
	svc, clk := newTestService(t)
	createStaff(t, svc, "staff@sahayog.org")

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "staff@sahayog.org",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	clk.Advance(13 * time.Hour)

	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestDisabledUserCannotAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	user := createStaff(t, svc, "staff@sahayog.org")

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "staff@sahayog.org",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	status := domain.StatusDisabled
	_, err = svc.UpdateUser(context.Background(), domain.UpdateUserRequest{
		ID:     user.ID.String(),
		Status: &status,
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.ErrorIs(t, err, domain.ErrUserDisabled)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	createStaff(t, svc, "staff@sahayog.org")

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "staff@sahayog.org",
		Password: "another-password",
		Role:     domain.RoleAdmin,
	})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, _ := newTestService(t)
	createStaff(t, svc, "staff@sahayog.org")

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "staff@sahayog.org",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), resp.Token))

	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
}
