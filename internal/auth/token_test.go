package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m, err := NewTokenManager("secret", "HS256", time.Hour)
	require.NoError(t, err)

	id := uuid.New()
	token, err := m.Issue(id)
	require.NoError(t, err)

	parsed, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("secret", "HS256", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenManager("other", "HS256", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m, err := NewTokenManager("secret", "HS256", time.Minute)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue(uuid.New())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherAlgorithm(t *testing.T) {
	m, err := NewTokenManager("secret", "HS256", time.Hour)
	require.NoError(t, err)

	claims := Claims{UserID: uuid.NewString()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseMissingOrMalformedUser(t *testing.T) {
	m, err := NewTokenManager("secret", "HS256", time.Hour)
	require.NoError(t, err)

	empty, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Parse(empty)
	assert.ErrorIs(t, err, ErrMissingUser)

	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "42"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Parse(bad)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManagerValidation(t *testing.T) {
	_, err := NewTokenManager("secret", "RS256", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("", "HS256", time.Hour)
	assert.Error(t, err)
}
