package models

import "time"

// ModuleStatus represents publication state of curriculum entities.
type ModuleStatus string

const (
	ModuleStatusDraft     ModuleStatus = "DRAFT"
	ModuleStatusPublished ModuleStatus = "PUBLISHED"
	ModuleStatusArchived  ModuleStatus = "ARCHIVED"
)

// Valid reports whether the status is a known member.
func (s ModuleStatus) Valid() bool {
	switch s {
	case ModuleStatusDraft, ModuleStatusPublished, ModuleStatusArchived:
		return true
	}
	return false
}

// Level groups modules inside a course. Sequence orders siblings.
type Level struct {
	ID        string       `db:"id" json:"id"`
	CourseID  string       `db:"course_id" json:"course_id"`
	Name      string       `db:"name" json:"name"`
	Sequence  int          `db:"sequence" json:"sequence"`
	Status    ModuleStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Module is an ordered unit of curriculum under a level.
type Module struct {
	ID        string       `db:"id" json:"id"`
	LevelID   string       `db:"level_id" json:"level_id"`
	Name      string       `db:"name" json:"name"`
	Sequence  int          `db:"sequence" json:"sequence"`
	Status    ModuleStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}
