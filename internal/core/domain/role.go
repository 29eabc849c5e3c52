package domain

// Role is both a permanent grant and an operating mode.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts only the two known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// RolePair holds the granted role and the active role of a user.
//
// The zero value is not a valid pair; build one with NewRolePair or
// UserRoles. The only way to change the active role is SwitchActiveRole,
// which keeps active == admin implying granted == admin.
type RolePair struct {
	granted Role
	active  Role
}

// UserRoles is the pair every account starts with.
func UserRoles() RolePair {
	return RolePair{granted: RoleUser, active: RoleUser}
}

// NewRolePair validates a persisted (role, active_role) pair.
func NewRolePair(granted, active Role) (RolePair, error) {
	if _, err := ParseRole(string(granted)); err != nil {
		return RolePair{}, err
	}
	if _, err := ParseRole(string(active)); err != nil {
		return RolePair{}, err
	}
	if active == RoleAdmin && granted != RoleAdmin {
		return RolePair{}, ErrInvalidRoleTransition
	}
	return RolePair{granted: granted, active: active}, nil
}

func (p RolePair) Granted() Role { return p.granted }
func (p RolePair) Active() Role  { return p.active }

// IsZero reports whether the pair was never initialised.
func (p RolePair) IsZero() bool { return p.granted == "" }

// CanAdminister reports whether the user may operate in admin mode at all.
func (p RolePair) CanAdminister() bool { return p.granted == RoleAdmin }

// SwitchActiveRole returns the pair with target as the active role.
// Switching to the role already active is a no-op.
func (p RolePair) SwitchActiveRole(target Role) (RolePair, error) {
	if p.IsZero() {
		return RolePair{}, ErrInvalidRole
	}
	if _, err := ParseRole(string(target)); err != nil {
		return p, err
	}
	if target == RoleAdmin && !p.CanAdminister() {
		return p, ErrInvalidRoleTransition
	}
	return RolePair{granted: p.granted, active: target}, nil
}
