package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/suivipro/platform/internal/core/ports"
)

type PasswordHandler struct {
	authService ports.AuthService
}

func NewPasswordHandler(authService ports.AuthService) *PasswordHandler {
	return &PasswordHandler{authService: authService}
}

// Change replaces the caller's password and clears the must-change flag.
//
// @Summary      Change password
// @Tags         password
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/password/change-password [post]
func (h *PasswordHandler) Change(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password changed successfully"})
}
