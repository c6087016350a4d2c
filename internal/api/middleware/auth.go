package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/suivipro/platform/internal/api/handler"
	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

// Auth validates the bearer token and injects the decoded principal into the
// context under handler.PrincipalKey.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrInvalidToken
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrInvalidToken
			}

			p, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return domain.ErrInvalidToken
			}

			c.Set(handler.PrincipalKey, p)
			return next(c)
		}
	}
}
