package domain

import (
	"errors"
	"fmt"
	"time"
)

// Role is the closed set of account roles. Scope derivation is an exhaustive
// mapping over this set; see internal/authz.
type Role string

const (
	// RoleAdmin has unrestricted access to every resource and district.
	RoleAdmin Role = "ADMIN"
	// RoleOffice has unrestricted read/write access but no admin operations.
	RoleOffice Role = "OFFICE"
	// RoleDistrictSupervisor sees only the districts of the namhattas they supervise.
	RoleDistrictSupervisor Role = "DISTRICT_SUPERVISOR"
)

// ParseRole returns the Role for s, or an error if s is not a known role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOffice, RoleDistrictSupervisor:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is an account under authentication. The auth core only reads users;
// creation and deactivation happen through administration.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks invariants on the user record.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	return nil
}
