package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/suivipro/platform/internal/api/handler"
	"github.com/suivipro/platform/internal/core/domain"
)

// RequireRoles passes when the caller's token carries at least one of roles.
// It must run after Auth. Role claims are read from the token as issued, so
// a role change only takes effect once the holder gets a new token.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	required := append([]string(nil), roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := c.Get(handler.PrincipalKey).(*domain.Principal)
			if !ok || p == nil {
				return domain.ErrInvalidToken
			}
			if !domain.HasAnyRole(p.Roles, required) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
