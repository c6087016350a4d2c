package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suivipro/platform/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       "u-1",
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []domain.Role{{Name: domain.RoleAdmin}, {Name: domain.RoleUser}},
	}
}

func TestManager_RoundTrip(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	signed, err := m.Issue(testUser())
	require.NoError(t, err)

	p, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.ID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, []string{"admin", "user"}, p.Roles)
}

func TestManager_Expired(t *testing.T) {
	m, err := NewManager("secret", time.Minute)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestManager_WrongSecret(t *testing.T) {
	issuer, err := NewManager("secret", time.Hour)
	require.NoError(t, err)
	verifier, err := NewManager("other", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestManager_RejectsOtherAlgorithms(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	claims := Claims{
		ID:               "u-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Verify(hs512)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(none)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestManager_RequiresExpiry(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: "u-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestNewManager_EmptySecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)
}
