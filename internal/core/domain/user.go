package domain

import "time"

// User models an account owned by the identity service.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	FirstName          string     `json:"firstName,omitempty"`
	LastName           string     `json:"lastName,omitempty"`
	IsActive           bool       `json:"isActive"`
	MustChangePassword bool       `json:"mustChangePassword"`
	CreatedBy          string     `json:"createdBy,omitempty"`
	LastLogin          *time.Time `json:"lastLogin,omitempty"`
	Roles              []Role     `json:"roles"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// RoleNames returns the names of the roles held by u, in stored order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Principal is the identity decoded from a verified bearer token.
type Principal struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	Roles              []string `json:"roles"`
	MustChangePassword bool     `json:"mustChangePassword,omitempty"`
}

// HasAnyRole reports whether held and required share at least one role name.
// An empty required set never passes.
func HasAnyRole(held, required []string) bool {
	for _, r := range required {
		for _, h := range held {
			if r == h {
				return true
			}
		}
	}
	return false
}
