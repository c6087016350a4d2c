package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RoleManager = "manager"
	RoleGuest   = "guest"
)

// KnownRoles lists the role names the store accepts, in seed order.
var KnownRoles = []string{RoleAdmin, RoleUser, RoleManager, RoleGuest}

// IsKnownRole reports whether name is one of KnownRoles.
func IsKnownRole(name string) bool {
	for _, r := range KnownRoles {
		if r == name {
			return true
		}
	}
	return false
}

// Role groups a permission map under a unique name.
type Role struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Permissions Permissions `json:"permissions"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Action is an operation a permission map can grant on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// actionOrder is the closed action vocabulary in canonical order.
var actionOrder = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

func (a Action) valid() bool {
	for _, known := range actionOrder {
		if a == known {
			return true
		}
	}
	return false
}

const allKey = "all"

var resourceKeyRE = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Permissions maps resource keys to granted actions. All is a blanket grant.
//
// The JSON form is a flat object: {"users":["create","read"],"all":true}.
type Permissions struct {
	Resources map[string][]Action
	All       bool
}

// NewPermissions builds a normalised permission map. It panics on invalid
// input and is meant for static seed data.
func NewPermissions(all bool, resources map[string][]Action) Permissions {
	p := Permissions{Resources: resources, All: all}
	if err := p.Validate(); err != nil {
		panic(err)
	}
	return p.normalized()
}

// Validate checks resource keys and actions against the known vocabulary.
func (p Permissions) Validate() error {
	var problems []string
	for res, actions := range p.Resources {
		if res == allKey || !resourceKeyRE.MatchString(res) {
			problems = append(problems, fmt.Sprintf("permissions: invalid resource key %q", res))
			continue
		}
		for _, a := range actions {
			if !a.valid() {
				problems = append(problems, fmt.Sprintf("permissions.%s: unknown action %q", res, a))
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return NewValidationError(problems...)
	}
	return nil
}

// normalized de-duplicates actions and orders them by vocabulary.
func (p Permissions) normalized() Permissions {
	out := Permissions{All: p.All, Resources: make(map[string][]Action, len(p.Resources))}
	for res, actions := range p.Resources {
		seen := make(map[Action]bool, len(actions))
		for _, a := range actions {
			seen[a] = true
		}
		list := make([]Action, 0, len(seen))
		for _, a := range actionOrder {
			if seen[a] {
				list = append(list, a)
			}
		}
		out.Resources[res] = list
	}
	return out
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(p.Resources)+1)
	for res, actions := range p.Resources {
		if actions == nil {
			actions = []Action{}
		}
		flat[res] = actions
	}
	if p.All {
		flat[allKey] = true
	}
	return json.Marshal(flat)
}

func (p *Permissions) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Permissions{Resources: map[string][]Action{}}
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewValidationError("permissions must be an object")
	}
	out := Permissions{Resources: make(map[string][]Action, len(raw))}
	for key, val := range raw {
		if key == allKey {
			if err := json.Unmarshal(val, &out.All); err != nil {
				return NewValidationError("permissions.all must be a boolean")
			}
			continue
		}
		var actions []Action
		if err := json.Unmarshal(val, &actions); err != nil {
			return NewValidationError(fmt.Sprintf("permissions.%s must be an array of actions", key))
		}
		out.Resources[key] = actions
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*p = out.normalized()
	return nil
}

// DefaultRoles is the seed set written on startup when absent.
func DefaultRoles() []Role {
	crud := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	return []Role{
		{
			Name:        RoleAdmin,
			Description: "Administrator with full access",
			Permissions: NewPermissions(true, map[string][]Action{"users": crud, "roles": crud}),
		},
		{
			Name:        RoleUser,
			Description: "Standard user",
			Permissions: NewPermissions(false, map[string][]Action{"profile": {ActionRead, ActionUpdate}}),
		},
		{
			Name:        RoleManager,
			Description: "Manager with user and report access",
			Permissions: NewPermissions(false, map[string][]Action{
				"users":   {ActionCreate, ActionRead, ActionUpdate},
				"reports": {ActionCreate, ActionRead},
			}),
		},
		{
			Name:        RoleGuest,
			Description: "Read-only guest",
			Permissions: NewPermissions(false, map[string][]Action{"profile": {ActionRead}}),
		},
	}
}
