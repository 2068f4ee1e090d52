package domain

import "fmt"

// Role is an account's privilege level. Each level implies every lower one.
type Role string

const (
	RoleNone   Role = "none"
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Roles lists every role from least to most privileged.
var Roles = []Role{RoleNone, RoleReader, RoleWriter, RoleEditor, RoleAdmin}

// RoleNames is Roles as strings, for validation and query schemas.
func RoleNames() []string {
	out := make([]string, len(Roles))
	for i, r := range Roles {
		out[i] = string(r)
	}
	return out
}

// ParseRole validates s as a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r.Rank() < 0 {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Rank orders roles; unknown roles rank -1.
func (r Role) Rank() int {
	switch r {
	case RoleNone:
		return 0
	case RoleReader:
		return 1
	case RoleWriter:
		return 2
	case RoleEditor:
		return 3
	case RoleAdmin:
		return 4
	default:
		return -1
	}
}

// AtLeast reports whether r grants everything min does.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank() && r.Rank() >= 0
}

func (r Role) CanLogin() bool { return r.AtLeast(RoleReader) }
func (r Role) CanRead() bool  { return r.AtLeast(RoleReader) }
func (r Role) CanWrite() bool { return r.AtLeast(RoleWriter) }
func (r Role) CanEdit() bool  { return r.AtLeast(RoleEditor) }
func (r Role) CanAdmin() bool { return r.AtLeast(RoleAdmin) }

func (r Role) String() string { return string(r) }
