package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// Role represents the available roles for the access-control system.
// Roles are disjoint grants, not an ordered hierarchy.
type Role string

const (
	RoleSuperAdmin         Role = "SUPER_ADMIN"
	RoleProgramAdmin       Role = "PROGRAM_ADMIN"
	RoleProgramCoordinator Role = "PROGRAM_COORDINATOR"
	RoleInstructor         Role = "INSTRUCTOR"
	RoleParent             Role = "PARENT"
	RoleStudent            Role = "STUDENT"
)

// Valid reports whether the role is a known member of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleProgramAdmin, RoleProgramCoordinator, RoleInstructor, RoleParent, RoleStudent:
		return true
	}
	return false
}

// ProgramScoped reports whether the role's data access is restricted to
// assigned programs. SUPER_ADMIN is the only exempt role.
func (r Role) ProgramScoped() bool {
	return r != RoleSuperAdmin
}

// RoleList is an ordered set of roles stored as a Postgres text array.
type RoleList []Role

// Value implements driver.Valuer.
func (l RoleList) Value() (driver.Value, error) {
	arr := make(pq.StringArray, len(l))
	for i, r := range l {
		arr[i] = string(r)
	}
	return arr.Value()
}

// Scan implements sql.Scanner.
func (l *RoleList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	out := make(RoleList, len(arr))
	for i, s := range arr {
		out[i] = Role(s)
	}
	*l = out
	return nil
}

// HasAny reports whether any of the allowed roles is held. SUPER_ADMIN
// satisfies every check as an explicit short-circuit; callers must not add
// it to allowed sets.
func (l RoleList) HasAny(allowed ...Role) bool {
	for _, held := range l {
		if held == RoleSuperAdmin {
			return true
		}
		for _, a := range allowed {
			if held == a {
				return true
			}
		}
	}
	return false
}

// User represents an authenticated principal stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Roles        RoleList   `db:"roles" json:"roles"`
	PrimaryRole  Role       `db:"primary_role" json:"primary_role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *Role
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
