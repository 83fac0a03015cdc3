package dto

import "github.com/noah-isme/academy-admin-api/internal/models"

// CreateProgramRequest creates a new program.
type CreateProgramRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description,omitempty"`
}

// UpdateProgramRequest changes mutable fields of a program.
type UpdateProgramRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// AssignUserRequest grants a user a role within a program.
type AssignUserRequest struct {
	UserID        string      `json:"user_id" validate:"required"`
	RoleInProgram models.Role `json:"role_in_program" validate:"required"`
	IsDefault     bool        `json:"is_default"`
}
