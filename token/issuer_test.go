package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/communityhq/community-api/token"
	"github.com/communityhq/community-api/users"
)

func newTestUser(t *testing.T) *users.User {
	t.Helper()

	passwordHash, err := users.HashPassword("password123")
	require.NoError(t, err)

	user, err := users.New("johndoe", "john.doe@example.com", passwordHash)
	require.NoError(t, err)
	user.ID = testUserID
	return user
}

func TestNewIssuerValidation(t *testing.T) {
	codec := token.NewCodec()

	_, err := token.NewIssuer(nil, accessSecretStr, refreshSecretStr)
	require.Error(t, err)

	_, err = token.NewIssuer(codec, "", refreshSecretStr)
	require.Error(t, err)

	_, err = token.NewIssuer(codec, accessSecretStr, "")
	require.Error(t, err)

	_, err = token.NewIssuer(codec, accessSecretStr, accessSecretStr)
	require.Error(t, err)

	_, err = token.NewIssuer(codec, accessSecretStr, refreshSecretStr)
	require.NoError(t, err)
}

func TestIssuePairVerifiesBothWays(t *testing.T) {
	issuer, err := token.NewIssuer(token.NewCodec(), accessSecretStr, refreshSecretStr)
	require.NoError(t, err)

	user := newTestUser(t)
	user.TokenVersion = 2

	pair, err := issuer.IssuePair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	accessClaims, err := issuer.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, accessClaims.UserID)

	refreshClaims, err := issuer.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, refreshClaims.UserID)
	require.Equal(t, 2, refreshClaims.TokenVersion)
}

func TestAccessTokenDoesNotVerifyAsRefresh(t *testing.T) {
	issuer, err := token.NewIssuer(token.NewCodec(), accessSecretStr, refreshSecretStr)
	require.NoError(t, err)

	accessToken, err := issuer.IssueAccessToken(newTestUser(t))
	require.NoError(t, err)

	_, err = issuer.VerifyRefreshToken(accessToken)
	require.Error(t, err)
}

func TestWithTokenExpiry(t *testing.T) {
	now := time.Now()
	codec := token.NewCodec(token.WithNowFunc(func() time.Time { return now }))

	issuer, err := token.NewIssuer(codec, accessSecretStr, refreshSecretStr,
		token.WithTokenExpiry(time.Minute, time.Hour))
	require.NoError(t, err)
	require.Equal(t, time.Hour, issuer.RefreshExpiry())

	accessToken, err := issuer.IssueAccessToken(newTestUser(t))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = issuer.VerifyAccessToken(accessToken)
	require.Error(t, err)
}
