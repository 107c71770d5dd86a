package models

// Permission is a bit in a Role's permission mask.
type Permission int

const (
	PermCRUDOwned Permission = 1 << iota
	PermCRUDUsers
	PermAdmin
)

const (
	RoleUser          = "User"
	RoleUsermanager   = "Usermanager"
	RoleAdministrator = "Administrator"
)

type Role struct {
	ID          int64
	Name        string
	Default     bool
	Permissions Permission
}

// HasPermission reports whether every bit of perm is granted.
func (r Role) HasPermission(perm Permission) bool {
	return r.Permissions&perm == perm
}

func (r *Role) AddPermission(perm Permission) {
	r.Permissions |= perm
}

func (r *Role) RemovePermission(perm Permission) {
	r.Permissions &^= perm
}

func (r *Role) ResetPermissions() {
	r.Permissions = 0
}

// RoleDefinition describes a seeded role.
type RoleDefinition struct {
	Name        string
	Permissions []Permission
	Default     bool
}

// DefaultRoles is the fixed role table written by the seed routine.
var DefaultRoles = []RoleDefinition{
	{Name: RoleUser, Permissions: []Permission{PermCRUDOwned}, Default: true},
	{Name: RoleUsermanager, Permissions: []Permission{PermCRUDOwned, PermCRUDUsers}},
	{Name: RoleAdministrator, Permissions: []Permission{PermCRUDOwned, PermCRUDUsers, PermAdmin}},
}
