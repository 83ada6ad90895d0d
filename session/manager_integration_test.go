package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/vinnote-client/api"
	"github.com/jrsteele09/vinnote-client/api/fakeapi"
	"github.com/jrsteele09/vinnote-client/credentials"
	"github.com/jrsteele09/vinnote-client/credentials/repofake"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/session"
	"github.com/jrsteele09/vinnote-client/users"
	"github.com/stretchr/testify/require"
)

func setupAgainstFakeAPI(t *testing.T) (*fakeapi.Server, *credentials.Credentials, *session.Manager) {
	t.Helper()

	server := fakeapi.New(true)
	t.Cleanup(server.Close)
	server.AddUser(testEmail, testPassword, users.Profile{Name: "Ana", UserType: users.Sommelier})

	creds := credentials.New(repofake.NewFakeStore())
	client, err := api.New(server.URL, creds)
	require.NoError(t, err)
	m, err := session.New(client, creds)
	require.NoError(t, err)
	return server, creds, m
}

func TestIntegration_LoginRestoreLogout(t *testing.T) {
	ctx := context.Background()
	server, creds, m := setupAgainstFakeAPI(t)

	res := m.Login(ctx, testEmail, testPassword)
	require.True(t, res.Success, res.Message)
	require.Equal(t, "Ana", res.User.Name)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), m.State().TokenExpiry, time.Minute)

	// A fresh process restores from the same store.
	client, err := api.New(server.URL, creds)
	require.NoError(t, err)
	restarted, err := session.New(client, creds)
	require.NoError(t, err)
	require.True(t, restarted.RestoreSession(ctx))
	require.Equal(t, testEmail, restarted.State().User.Email)
	require.False(t, restarted.State().TokenExpiry.IsZero(), "expiry read from the stored JWT")

	refresh, err := creds.RefreshToken(ctx)
	require.NoError(t, err)
	restarted.Logout(ctx)
	require.False(t, server.RefreshTokenValid(refresh))

	access, err := creds.AccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, access)
}

func TestIntegration_RestoreAfterAccessTokenExpiry(t *testing.T) {
	ctx := context.Background()
	server, _, m := setupAgainstFakeAPI(t)

	require.True(t, m.Login(ctx, testEmail, testPassword).Success)
	server.RevokeAccessTokens()

	require.True(t, m.RestoreSession(ctx))
	require.Equal(t, 3, server.Calls(fakeapi.RouteMe), "login fetch, rejected fetch, retried fetch")
	require.Equal(t, 1, server.Calls(fakeapi.RouteRefresh))
}

func TestIntegration_RegisterConflict(t *testing.T) {
	ctx := context.Background()
	server, _, m := setupAgainstFakeAPI(t)
	server.FailNext(fakeapi.RouteRegister, http.StatusConflict, `{"message":"Email already registered"}`)

	res := m.Register(ctx, "new@example.com", "secret1", "New", users.Enthusiast)
	require.False(t, res.Success)
	require.Equal(t, "Email already registered", res.Message)
	require.Equal(t, "Email already registered", m.State().Error)
}

func TestIntegration_RegisterSommelierIsPendingVerification(t *testing.T) {
	ctx := context.Background()
	_, _, m := setupAgainstFakeAPI(t)

	res := m.Register(ctx, "sommelier@example.com", "secret1", "Sam", users.Sommelier)
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.User.VerificationStatus)
	require.Equal(t, users.VerificationPending, *res.User.VerificationStatus)
	require.False(t, res.User.IsVerified())

	res = m.Register(ctx, "fan@example.com", "secret1", "Fan", users.Enthusiast)
	require.True(t, res.Success, res.Message)
	require.Nil(t, res.User.VerificationStatus)
}

func TestIntegration_MalformedLoginResponse(t *testing.T) {
	server, _, m := setupAgainstFakeAPI(t)
	server.FailNext(fakeapi.RouteLogin, http.StatusOK, `{"data":`)

	res := m.Login(context.Background(), testEmail, testPassword)
	require.False(t, res.Success)
	require.Equal(t, errors.UnexpectedMessage, res.Message)
	require.Equal(t, errors.UnexpectedMessage, m.State().Error)
}
