// Package token signs and verifies HS256 bearer tokens carrying the user's
// identity and role names.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/suivipro/platform/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// Claims is the JWT payload.
type Claims struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	Roles              []string `json:"roles"`
	MustChangePassword bool     `json:"mustChangePassword,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies tokens with a single shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager. The secret must be non-empty; ttl <= 0 falls
// back to 24h.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (m *Manager) Issue(user *domain.User) (string, error) {
	now := m.now()
	claims := Claims{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		Roles:              user.RoleNames(),
		MustChangePassword: user.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported as
// domain.ErrInvalidToken.
func (m *Manager) Verify(raw string) (*domain.Principal, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	return &domain.Principal{
		ID:                 claims.ID,
		Username:           claims.Username,
		Email:              claims.Email,
		Roles:              roles,
		MustChangePassword: claims.MustChangePassword,
	}, nil
}
