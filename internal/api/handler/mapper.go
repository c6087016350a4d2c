package handler

import "github.com/suivipro/platform/internal/core/domain"

// --- Domain → Response ---

func toUserView(u *domain.User) userView {
	roles := u.RoleNames()
	if roles == nil {
		roles = []string{}
	}
	return userView{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Roles:              roles,
		MustChangePassword: u.MustChangePassword,
	}
}

func toRoleView(r domain.Role) roleView {
	return roleView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
	}
}

func toProfileView(u *domain.User) profileView {
	roles := make([]roleView, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, toRoleView(r))
	}
	return profileView{
		userView:  toUserView(u),
		IsActive:  u.IsActive,
		CreatedBy: u.CreatedBy,
		LastLogin: u.LastLogin,
		RoleSet:   roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toPrincipalView(p domain.Principal) principalView {
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return principalView{
		ID:                 p.ID,
		Username:           p.Username,
		Email:              p.Email,
		Roles:              roles,
		MustChangePassword: p.MustChangePassword,
	}
}
