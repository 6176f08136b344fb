package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The zero value is not a valid role.
type Role uint8

const (
	RoleStudent Role = iota + 1
	RoleTeacher
	RoleAdmin
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin}
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleTeacher:
		return "teacher"
	case RoleAdmin:
		return "admin"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// ParseRole converts the wire/database name of a role into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "teacher":
		return RoleTeacher, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanAuthor reports whether the role may create questions and quizzes.
func (r Role) CanAuthor() bool {
	switch r {
	case RoleTeacher, RoleAdmin:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// BypassesOwnership reports whether the role may mutate content it does not own.
func (r Role) BypassesOwnership() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStudent, RoleTeacher:
		return false
	}
	return false
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role by name.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("cannot store invalid role %d", uint8(r))
	}
	return r.String(), nil
}

func (r *Role) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	case nil:
		return fmt.Errorf("role cannot be null")
	}
	return fmt.Errorf("unsupported role type %T", value)
}
