package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/suivipro/platform/internal/core/domain"
)

// PrincipalKey is the echo.Context key the Auth middleware stores the
// verified principal under.
const PrincipalKey = "principal"

// principal returns the identity injected by the Auth middleware. Its absence
// means the route was registered without the middleware, which callers treat
// as an invalid token.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get(PrincipalKey).(*domain.Principal)
	if !ok || p == nil || p.ID == "" {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	return *p, nil
}
