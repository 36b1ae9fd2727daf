package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalasetu/artist-tracker/internal/common"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestTokenIssueVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	tok, err := issuer.Issue(Claims{UserID: "u1", Username: "meera", Role: "admin"})
	require.NoError(t, err)

	got, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "meera", got.Username)
	assert.Equal(t, "admin", got.Role)
}

func TestTokenVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer("secret-a", time.Hour).Issue(Claims{UserID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	tok, err := issuer.Issue(Claims{UserID: "u1"})
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
}

func TestTokenIssuerDefaultsZeroTTL(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	tok, err := issuer.Issue(Claims{UserID: "u1"})
	require.NoError(t, err)

	got, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
}

func TestTokenVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokenIssuer("test-secret", time.Hour).Verify("not.a.token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
}
