package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/suivipro/platform/internal/api/handler"
	"github.com/suivipro/platform/internal/core/domain"
)

func newRBACContext(p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set(handler.PrincipalKey, p)
	}
	return c, rec
}

func TestRequireRoles_Allows(t *testing.T) {
	c, rec := newRBACContext(&domain.Principal{ID: "u", Roles: []string{"user", "manager"}})

	called := false
	h := RequireRoles("admin", "manager")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	c, _ := newRBACContext(&domain.Principal{ID: "u", Roles: []string{"guest"}})

	h := RequireRoles("admin")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := h(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRoles_NoRolesHeld(t *testing.T) {
	c, _ := newRBACContext(&domain.Principal{ID: "u"})
	h := RequireRoles("admin")(func(c echo.Context) error { return nil })
	if err := h(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	c, _ := newRBACContext(nil)
	h := RequireRoles("admin")(func(c echo.Context) error { return nil })
	if err := h(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
