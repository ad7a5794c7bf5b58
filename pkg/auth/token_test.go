package auth

import (
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:   "secret",
		Issuer:   "storefront",
		AdminTTL: 24 * time.Hour,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := testSessionConfig()
	now := time.Now().UTC()

	token, minted, err := MintAdminToken(cfg, now, AdminTokenPayload{Username: "root", JTI: "jti-1"})
	require.NoError(t, err)
	assert.Equal(t, "jti-1", minted.ID)

	claims, err := ParseAdminToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, "jti-1", claims.ID)
	assert.Equal(t, "storefront", claims.Issuer)
	assert.WithinDuration(t, now.Add(24*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestMintAdminTokenGeneratesJTI(t *testing.T) {
	_, claims, err := MintAdminToken(testSessionConfig(), time.Now(), AdminTokenPayload{Username: "root"})
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

func TestMintAdminTokenValidation(t *testing.T) {
	now := time.Now()
	cfg := testSessionConfig()

	_, _, err := MintAdminToken(config.SessionConfig{Issuer: "x", AdminTTL: time.Hour}, now, AdminTokenPayload{Username: "root"})
	assert.Error(t, err, "secret required")

	_, _, err = MintAdminToken(cfg, now, AdminTokenPayload{Username: "  "})
	assert.Error(t, err, "username required")

	noTTL := cfg
	noTTL.AdminTTL = 0
	_, _, err = MintAdminToken(noTTL, now, AdminTokenPayload{Username: "root"})
	assert.Error(t, err)
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	cfg := testSessionConfig()
	token, _, err := MintAdminToken(cfg, time.Now().Add(-48*time.Hour), AdminTokenPayload{Username: "root"})
	require.NoError(t, err)

	_, err = ParseAdminToken(cfg, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseAdminTokenRejectsWrongSecretAndIssuer(t *testing.T) {
	cfg := testSessionConfig()
	token, _, err := MintAdminToken(cfg, time.Now(), AdminTokenPayload{Username: "root"})
	require.NoError(t, err)

	other := cfg
	other.Secret = "other"
	_, err = ParseAdminToken(other, token)
	assert.Error(t, err)

	other = cfg
	other.Issuer = "someone-else"
	_, err = ParseAdminToken(other, token)
	assert.Error(t, err)
}

func TestParseAdminTokenRejectsOtherAlgorithms(t *testing.T) {
	cfg := testSessionConfig()
	claims := AdminClaims{
		Username: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAdminToken(cfg, token)
	assert.Error(t, err)
}
