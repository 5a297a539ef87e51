package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questdeck_backend/internals/configs"
	"questdeck_backend/internals/testutil"
)

func init() {
	configs.JWTSecret = "test-access-secret"
	configs.JWTRefreshSecret = "test-refresh-secret"
}

func TestHashTokenStable(t *testing.T) {
	a := HashToken("some-token")
	b := HashToken("some-token")
	c := HashToken("other-token")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // sha256 hex
}

func TestAccessTokenCarriesIdentity(t *testing.T) {
	userID := uuid.New()
	raw, err := SignAccessToken(userID, "admin")
	require.NoError(t, err)

	tok, err := jwt.Parse(raw, func(tk *jwt.Token) (any, error) {
		return []byte(configs.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, userID.String(), claims["id"])
	assert.Equal(t, "admin", claims["role"])
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	db := testutil.OpenTestDB(t)
	userID := uuid.New()

	raw, err := SignRefreshToken(db, userID)
	require.NoError(t, err)

	got, err := VerifyRefreshToken(db, raw)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	// revocation invalidates the stored hash
	require.NoError(t, RevokeRefreshToken(db, raw))
	_, err = VerifyRefreshToken(db, raw)
	assert.Error(t, err)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	db := testutil.OpenTestDB(t)
	raw, err := SignAccessToken(uuid.New(), "user")
	require.NoError(t, err)

	_, err = VerifyRefreshToken(db, raw)
	assert.Error(t, err)
}

func TestBlacklistAccessToken(t *testing.T) {
	db := testutil.OpenTestDB(t)
	raw, err := SignAccessToken(uuid.New(), "user")
	require.NoError(t, err)

	check := IsBlacklisted(db)
	black, err := check(raw)
	require.NoError(t, err)
	assert.False(t, black)

	require.NoError(t, BlacklistAccessToken(db, raw))
	// blacklisting twice is a no-op, not an error
	require.NoError(t, BlacklistAccessToken(db, raw))

	black, err = check(raw)
	require.NoError(t, err)
	assert.True(t, black)
}
