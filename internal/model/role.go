package model // package model defines domain types shared across handlers and repositories

import "fmt"

// Role is the privilege level assigned to a user. Lower values carry more
// privilege: Admin outranks Moderator, which outranks a regular User. The
// numeric values match the seeded rows of the role table, so a Role can be
// stored and scanned directly as the user.role column.
type Role uint8

const (
	RoleAdmin     Role = 1
	RoleModerator Role = 2
	RoleUser      Role = 3
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r >= RoleAdmin && r <= RoleUser
}

// Allows reports whether a caller holding r may access a route that
// requires at most the given role. Privilege grows as the numeric value
// shrinks, so Admin (1) passes every check while User (3) passes only
// checks requiring RoleUser.
func (r Role) Allows(required Role) bool {
	return r.Valid() && r <= required
}

// String returns the lowercase role name used in JWT claims and in the
// seeded role table.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleModerator:
		return "moderator"
	case RoleUser:
		return "user"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// RoleFromName maps a role name from a JWT claim back to its numeric form.
// Unknown names return an error so callers can reject tampered tokens.
func RoleFromName(name string) (Role, error) {
	switch name {
	case "admin":
		return RoleAdmin, nil
	case "moderator":
		return RoleModerator, nil
	case "user":
		return RoleUser, nil
	}
	return 0, fmt.Errorf("unknown role %q", name)
}
