package handler

import (
	"strings"
	"time"

	"github.com/suivipro/platform/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the central error
// handler.
type errorResponse struct {
	Error   string   `json:"error"              example:"validation_failed"`
	Message string   `json:"message"            example:"request validation failed"`
	Details []string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Requests ---

type registerRequest struct {
	Username  string `json:"username"  validate:"required,username"     example:"jdoe"`
	Email     string `json:"email"     validate:"required,email,max=255" example:"jdoe@example.com"`
	Password  string `json:"password"  validate:"required,password"     example:"Goodpass1!"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
}

func (r *registerRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

// loginRequest accepts either the username or the email in Username.
type loginRequest struct {
	Username string `json:"username" validate:"required" example:"jdoe"`
	Password string `json:"password" validate:"required" example:"Goodpass1!"`
}

func (r *loginRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,password"`
}

type createUserRequest struct {
	Username  string   `json:"username"  validate:"required,username"`
	Email     string   `json:"email"     validate:"required,email,max=255"`
	FirstName string   `json:"firstName" validate:"max=100"`
	LastName  string   `json:"lastName"  validate:"max=100"`
	RoleNames []string `json:"roleNames" example:"user,manager"`
}

func (r *createUserRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

// updateRolesRequest replaces the role set. An empty list clears it; a
// missing field is rejected.
type updateRolesRequest struct {
	RoleNames []string `json:"roleNames" validate:"required"`
}

type updatePermissionsRequest struct {
	Permissions *domain.Permissions `json:"permissions" validate:"required" swaggertype:"object"`
}

// --- Responses ---

// userView is the public projection of an account. It never carries the
// password hash.
type userView struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	FirstName          string   `json:"firstName,omitempty"`
	LastName           string   `json:"lastName,omitempty"`
	Roles              []string `json:"roles"`
	MustChangePassword bool     `json:"mustChangePassword"`
}

type roleView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Permissions domain.Permissions `json:"permissions" swaggertype:"object"`
}

// profileView is the full account view returned to its owner and to admins.
type profileView struct {
	userView
	IsActive  bool       `json:"isActive"`
	CreatedBy string     `json:"createdBy,omitempty"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	RoleSet   []roleView `json:"roleDetails"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type authResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    userView `json:"user"`
}

type profileResponse struct {
	User profileView `json:"user"`
}

type verifyResponse struct {
	Valid bool          `json:"valid"`
	User  principalView `json:"user"`
}

type principalView struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	Roles              []string `json:"roles"`
	MustChangePassword bool     `json:"mustChangePassword"`
}

type temporaryCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Warning  string `json:"warning"`
}

type createUserResponse struct {
	Message              string                `json:"message"`
	User                 profileView           `json:"user"`
	EmailSent            bool                  `json:"emailSent"`
	TemporaryCredentials *temporaryCredentials `json:"temporaryCredentials,omitempty"`
}

type listUsersResponse struct {
	Users []profileView `json:"users"`
}

type userResponse struct {
	Message string      `json:"message"`
	User    profileView `json:"user"`
}

type listRolesResponse struct {
	Roles []roleView `json:"roles"`
}

type roleResponse struct {
	Message string   `json:"message"`
	Role    roleView `json:"role"`
}
