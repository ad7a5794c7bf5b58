package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    64,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

var testSessionConfig = config.SessionConfig{
	Secret:   "test-secret",
	Issuer:   "storefront-test",
	AdminTTL: 24 * time.Hour,
}

type authFixture struct {
	svc Service
	mr  *miniredis.Miniredis
}

func newAuthFixture(t *testing.T, allowSetup string) authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redisclient.Wrap(redislib.NewClient(&redislib.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	mgr, err := session.NewManager(client, testSessionConfig)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Admins:         NewAdminRepository(setupAdminsTestDB(t)),
		SessionManager: mgr,
		App:            config.AppConfig{AllowAdminSetup: allowSetup},
		Session:        testSessionConfig,
		Password:       testPasswordConfig,
	})
	require.NoError(t, err)
	return authFixture{svc: svc, mr: mr}
}

func TestSetupAdminDisabled(t *testing.T) {
	for _, flag := range []string{"", "false", "TRUE", "1"} {
		f := newAuthFixture(t, flag)
		err := f.svc.SetupAdmin(context.Background(), Credentials{Username: "root", Password: "password1"})
		require.Error(t, err, flag)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
		assert.Equal(t, msgSetupNotAllowed, pkgerrors.As(err).Message())
	}
}

func TestSetupAdminOnlyOnce(t *testing.T) {
	f := newAuthFixture(t, "true")
	ctx := context.Background()

	require.NoError(t, f.svc.SetupAdmin(ctx, Credentials{Username: "root", Password: "password1"}))

	err := f.svc.SetupAdmin(ctx, Credentials{Username: "other", Password: "password2"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.Equal(t, msgAdminExists, pkgerrors.As(err).Message())
}

func TestLoginAuthenticateLogout(t *testing.T) {
	f := newAuthFixture(t, "true")
	ctx := context.Background()
	require.NoError(t, f.svc.SetupAdmin(ctx, Credentials{Username: "root", Password: "password1"}))

	res, err := f.svc.Login(ctx, Credentials{Username: "root", Password: "password1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, time.Minute)

	ident, err := f.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "root", ident.Username)
	assert.True(t, f.mr.Exists("shop:session:"+ident.SessionID))

	require.NoError(t, f.svc.Logout(ctx, res.Token))
	assert.False(t, f.mr.Exists("shop:session:"+ident.SessionID))

	_, err = f.svc.Authenticate(ctx, res.Token)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t, "true")
	ctx := context.Background()
	require.NoError(t, f.svc.SetupAdmin(ctx, Credentials{Username: "root", Password: "password1"}))

	cases := []Credentials{
		{Username: "root", Password: "wrong-password"},
		{Username: "nobody", Password: "password1"},
	}
	for _, creds := range cases {
		_, err := f.svc.Login(ctx, creds)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
		assert.Equal(t, msgInvalidCredentials, pkgerrors.As(err).Message())
	}
	assert.Empty(t, f.mr.Keys())
}

func TestAuthenticateRejectsForgedOrEmptyTokens(t *testing.T) {
	f := newAuthFixture(t, "true")
	ctx := context.Background()

	_, err := f.svc.Authenticate(ctx, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = f.svc.Authenticate(ctx, "not-a-jwt")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestAuthenticateRequiresLiveSession(t *testing.T) {
	f := newAuthFixture(t, "true")
	ctx := context.Background()
	require.NoError(t, f.svc.SetupAdmin(ctx, Credentials{Username: "root", Password: "password1"}))

	res, err := f.svc.Login(ctx, Credentials{Username: "root", Password: "password1"})
	require.NoError(t, err)

	f.mr.FlushAll()

	_, err = f.svc.Authenticate(ctx, res.Token)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutIgnoresGarbage(t *testing.T) {
	f := newAuthFixture(t, "true")
	assert.NoError(t, f.svc.Logout(context.Background(), ""))
	assert.NoError(t, f.svc.Logout(context.Background(), "garbage"))
}
