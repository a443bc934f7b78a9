package auth

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
)

var secret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func TestSignAndParse(t *testing.T) {
	issuer, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)

	token, expires, err := issuer.Sign(domain.User{ID: 7, Username: "alice", Admin: true})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.Admin)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejectsExpired(t *testing.T) {
	issuer, err := NewIssuer(secret, time.Minute)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Sign(domain.User{ID: 1, Username: "bob"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherKeysAndAlgorithms(t *testing.T) {
	issuer, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)

	other, err := NewIssuer(base64.StdEncoding.EncodeToString([]byte("another-secret")), time.Hour)
	require.NoError(t, err)
	token, _, err := other.Sign(domain.User{ID: 1})
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.key)
	require.NoError(t, err)
	_, err = issuer.Parse(hs256)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuerValidation(t *testing.T) {
	_, err := NewIssuer("%%%", time.Hour)
	assert.Error(t, err)
	_, err = NewIssuer("", time.Hour)
	assert.Error(t, err)
	_, err = NewIssuer(secret, 0)
	assert.Error(t, err)
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFrom(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{UserID: 3})
	claims, ok := ClaimsFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(3), claims.UserID)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter2", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("", "hunter2"))
}

func TestPlaceholderHashIsFullCost(t *testing.T) {
	cost, err := bcrypt.Cost(placeholderHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	// The unknown-user path must reach a real comparison, not fail on a malformed hash.
	err = bcrypt.CompareHashAndPassword(placeholderHash, []byte("hunter2"))
	assert.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)
}
