package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/suivipro/platform/internal/api/metrics"
	"github.com/suivipro/platform/internal/core/ports"
)

const tempCredentialsWarning = "The welcome email could not be sent. Share these credentials with the user over a secure channel; they must change the password at first login."

// AdminHandler serves user and role management. Routes are expected to sit
// behind Auth and RequireRoles("admin").
type AdminHandler struct {
	adminService ports.AdminService
}

func NewAdminHandler(adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// CreateUser provisions an account with a temporary password.
//
// @Summary      Create a user
// @Description  The temporary password is emailed to the user. When the email cannot be sent it is returned in temporaryCredentials instead.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.adminService.CreateUser(c.Request().Context(), actor, ports.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleNames: req.RoleNames,
	})
	if err != nil {
		return err
	}
	metrics.UsersProvisionedTotal.WithLabelValues(strconv.FormatBool(res.EmailSent)).Inc()

	resp := createUserResponse{
		Message:   "user created successfully",
		User:      toProfileView(res.User),
		EmailSent: res.EmailSent,
	}
	if !res.EmailSent {
		resp.Message = "user created, welcome email not sent"
		resp.TemporaryCredentials = &temporaryCredentials{
			Username: res.User.Username,
			Password: res.TemporaryPassword,
			Warning:  tempCredentialsWarning,
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListUsers returns every account, newest first.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.adminService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]profileView, 0, len(users))
	for i := range users {
		out = append(out, toProfileView(&users[i]))
	}
	return c.JSON(http.StatusOK, listUsersResponse{Users: out})
}

// DeleteUser hard-deletes an account. Admins cannot delete themselves.
//
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.adminService.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted successfully"})
}

// UpdateUserRoles replaces the user's role set.
//
// @Summary      Replace a user's roles
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "User id"
// @Param        body  body      updateRolesRequest  true  "New role names"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/admin/users/{id}/roles [put]
func (h *AdminHandler) UpdateUserRoles(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	var req updateRolesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.adminService.UpdateUserRoles(c.Request().Context(), actor, c.Param("id"), req.RoleNames)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Message: "user roles updated successfully", User: toProfileView(user)})
}

// ListRoles returns the roles with their permission maps.
//
// @Summary      List roles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listRolesResponse
// @Router       /api/admin/roles [get]
func (h *AdminHandler) ListRoles(c echo.Context) error {
	roles, err := h.adminService.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]roleView, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleView(r))
	}
	return c.JSON(http.StatusOK, listRolesResponse{Roles: out})
}

// UpdateRolePermissions replaces a role's permission map.
//
// @Summary      Replace a role's permissions
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Role id"
// @Param        body  body      updatePermissionsRequest  true  "Permission map"
// @Success      200   {object}  roleResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/admin/roles/{id}/permissions [put]
func (h *AdminHandler) UpdateRolePermissions(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	var req updatePermissionsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.adminService.UpdateRolePermissions(c.Request().Context(), actor, c.Param("id"), *req.Permissions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{Message: "role permissions updated successfully", Role: toRoleView(*role)})
}
