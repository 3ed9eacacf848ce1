package domain

// Role is the fixed authorization class of a user, carried in token claims.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStoreOwner Role = "store_owner"
	RoleNormalUser Role = "normaluser"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleStoreOwner, RoleNormalUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStoreOwner, RoleNormalUser:
		return true
	}
	return false
}
