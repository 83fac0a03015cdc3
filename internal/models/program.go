package models

import "time"

// Program is the top-level tenant unit. Every course, curriculum entity,
// and program-scoped request resolves back to exactly one program.
type Program struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramAssignment relates a user to a program they may act within.
// At most one assignment per user carries the default flag.
type ProgramAssignment struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	ProgramID     string    `db:"program_id" json:"program_id"`
	RoleInProgram Role      `db:"role_in_program" json:"role_in_program"`
	IsDefault     bool      `db:"is_default" json:"is_default"`
	AssignedBy    string    `db:"assigned_by" json:"assigned_by"`
	AssignedAt    time.Time `db:"assigned_at" json:"assigned_at"`
}

// ProgramAssignmentDetail joins assignment rows with user and program names
// for listing endpoints.
type ProgramAssignmentDetail struct {
	ProgramAssignment
	UserName    string `db:"user_name" json:"user_name"`
	UserEmail   string `db:"user_email" json:"user_email"`
	ProgramName string `db:"program_name" json:"program_name"`
}
