package ports

import "github.com/suivipro/platform/internal/core/domain"

type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier decodes a bearer token. Failures are domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}
